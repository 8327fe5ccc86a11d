package api

import (
	"net/http"
	"strconv"
	"time"

	"godesign/app"
	"godesign/domain/core"
	"godesign/internal/design"
	apperrors "godesign/internal/errors"
	"godesign/ports"

	"github.com/gin-gonic/gin"
)

// DrawHandler serves draws of design documents over HTTP
type DrawHandler struct {
	designs *app.DesignService
	dataDir string
}

// NewDrawHandler creates a new draw handler. Population tables named by
// posted designs are resolved inside dataDir; an empty dataDir rejects them.
func NewDrawHandler(designs *app.DesignService, dataDir string) *DrawHandler {
	return &DrawHandler{designs: designs, dataDir: dataDir}
}

// DrawRequestBody is the body of POST /api/draws.
type DrawRequestBody struct {
	Design     design.Design `json:"design"`
	N          *int          `json:"n,omitempty"`
	Frac       *float64      `json:"frac,omitempty"`
	Seed       *int64        `json:"seed,omitempty"`
	Replicates int           `json:"replicates,omitempty"`
	Store      bool          `json:"store,omitempty"`
}

// DrawView is the JSON form of one draw.
type DrawView struct {
	ID        core.DrawID      `json:"id"`
	Design    string           `json:"design"`
	Replicate int              `json:"replicate"`
	Seed      int64            `json:"seed"`
	N         *int             `json:"n,omitempty"`
	Frac      *float64         `json:"frac,omitempty"`
	Rows      int              `json:"rows"`
	Columns   []string         `json:"columns"`
	Index     []int            `json:"index,omitempty"`
	Data      []map[string]any `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewDrawView converts a record; rows are included when it carries a table.
func NewDrawView(rec *ports.DrawRecord) DrawView {
	v := DrawView{
		ID:        rec.ID,
		Design:    rec.Design,
		Replicate: rec.Replicate,
		Seed:      rec.Seed,
		N:         rec.N,
		Frac:      rec.Frac,
		Rows:      rec.Rows,
		Columns:   rec.Columns,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Table != nil {
		v.Index = rec.Table.Index()
		v.Data = rec.Table.JSONRecords()
	}
	return v
}

// CreateDraw draws a design posted in the request body
func (h *DrawHandler) CreateDraw(c *gin.Context) {
	var body DrawRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := body.Design.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := body.Design.Confine(h.dataDir); err != nil {
		respondError(c, err)
		return
	}

	opts := app.DrawOptions{Seed: body.Seed, Replicates: body.Replicates, Store: body.Store}
	if body.N != nil || body.Frac != nil {
		opts.Request = &app.DrawRequest{N: body.N, Frac: body.Frac}
	}

	records, err := h.designs.Draw(c.Request.Context(), &body.Design, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]DrawView, len(records))
	for i, rec := range records {
		views[i] = NewDrawView(rec)
	}
	c.JSON(http.StatusCreated, gin.H{"draws": views})
}

// GetDraw returns a stored draw with its rows
func (h *DrawHandler) GetDraw(c *gin.Context) {
	id, err := core.ParseDrawID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draw ID"})
		return
	}

	rec, err := h.designs.GetDraw(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDrawView(rec))
}

// ListDraws lists stored draws, optionally for one design
func (h *DrawHandler) ListDraws(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.designs.ListDraws(c.Request.Context(), c.Query("design"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]DrawView, len(records))
	for i, rec := range records {
		views[i] = NewDrawView(rec)
	}
	c.JSON(http.StatusOK, gin.H{"draws": views})
}

// ValidateDesign checks a posted design without returning any rows
func (h *DrawHandler) ValidateDesign(c *gin.Context) {
	var d design.Design
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := d.Validate(); err != nil {
		respondError(c, err)
		return
	}
	if err := d.Confine(h.dataDir); err != nil {
		respondError(c, err)
		return
	}
	if err := h.designs.Validate(c.Request.Context(), &d); err != nil {
		respondError(c, err)
		return
	}
	vars, err := h.designs.Variables(c.Request.Context(), &d)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "variables": vars, "outcomes": d.Outcomes()})
}

// respondError maps error codes onto HTTP statuses. Errors without a code
// come from user formulas or generators and are reported as unprocessable.
func respondError(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	switch apperrors.GetCode(err) {
	case apperrors.CodeValidationError, apperrors.CodeTypeError, apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeConfigInvalid:
		status = http.StatusServiceUnavailable
	case apperrors.CodeDatabaseError, apperrors.CodeInternalError:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}
