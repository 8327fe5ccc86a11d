package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"godesign/domain/core"
	"godesign/domain/table"
	apperrors "godesign/internal/errors"
	"godesign/ports"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

// drawRepository implements ports.DrawRepository
type drawRepository struct {
	db *sqlx.DB
}

// NewDrawRepository creates a draw repository on an open, migrated database.
func NewDrawRepository(db *sqlx.DB) ports.DrawRepository {
	return &drawRepository{db: db}
}

// drawRow is the stored form of a draw; columns and data are JSON.
type drawRow struct {
	ID        string    `db:"id"`
	Design    string    `db:"design"`
	Replicate int       `db:"replicate"`
	Seed      int64     `db:"seed"`
	N         *int      `db:"n"`
	Frac      *float64  `db:"frac"`
	RowCount  int       `db:"row_count"`
	Columns   string    `db:"columns"`
	Data      string    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

// tableData is the JSON encoding of a table. Non-finite numbers are stored
// as null.
type tableData struct {
	Index   []int        `json:"index"`
	Columns []columnData `json:"columns"`
}

type columnData struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

func encodeTable(t *table.Table) (string, error) {
	data := tableData{Index: t.Index(), Columns: make([]columnData, 0, t.NCols())}
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		data.Columns = append(data.Columns, columnData{Name: name, Values: table.JSONValues(col.Values)})
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeTable(s string) (*table.Table, error) {
	var data tableData
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, err
	}
	t := table.New(data.Index)
	for _, c := range data.Columns {
		if err := t.SetColumn(table.NewColumn(c.Name, c.Values)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Save inserts a draw. Records without a table are rejected.
func (r *drawRepository) Save(ctx context.Context, rec *ports.DrawRecord) error {
	if rec.Table == nil {
		return apperrors.ValidationError("draw record has no table")
	}
	if rec.ID == "" {
		rec.ID = core.NewDrawID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := encodeTable(rec.Table)
	if err != nil {
		return fmt.Errorf("failed to encode draw table: %w", err)
	}
	columns, err := json.Marshal(rec.Table.Columns())
	if err != nil {
		return fmt.Errorf("failed to encode draw columns: %w", err)
	}

	row := drawRow{
		ID:        rec.ID.String(),
		Design:    rec.Design,
		Replicate: rec.Replicate,
		Seed:      rec.Seed,
		N:         rec.N,
		Frac:      rec.Frac,
		RowCount:  rec.Table.NRows(),
		Columns:   string(columns),
		Data:      data,
		CreatedAt: rec.CreatedAt,
	}

	query := `INSERT INTO draws (
		id, design, replicate, seed, n, frac, row_count, columns, data, created_at
	) VALUES (
		:id, :design, :replicate, :seed, :n, :frac, :row_count, :columns, :data, :created_at
	)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to save draw")
	}
	return nil
}

// Get retrieves a draw and its table by ID
func (r *drawRepository) Get(ctx context.Context, id core.DrawID) (*ports.DrawRecord, error) {
	query := r.db.Rebind(`SELECT
		id, design, replicate, seed, n, frac, row_count, columns, data, created_at
	FROM draws WHERE id = ?`)

	var row drawRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(fmt.Sprintf("draw %s", id))
		}
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to get draw")
	}

	rec, err := row.record()
	if err != nil {
		return nil, err
	}
	if rec.Table, err = decodeTable(row.Data); err != nil {
		return nil, fmt.Errorf("failed to decode draw %s: %w", id, err)
	}
	return rec, nil
}

// List returns draw metadata newest first, without tables. An empty design
// matches every design; a non-positive limit means 100.
func (r *drawRepository) List(ctx context.Context, design string, limit int) ([]*ports.DrawRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT
		id, design, replicate, seed, n, frac, row_count, columns, '' AS data, created_at
	FROM draws`
	args := []any{}
	if design != "" {
		query += ` WHERE design = ?`
		args = append(args, design)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	var rows []drawRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, apperrors.Wrap(apperrors.DatabaseError(err.Error()), "failed to list draws")
	}

	out := make([]*ports.DrawRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (row drawRow) record() (*ports.DrawRecord, error) {
	id, err := core.ParseDrawID(row.ID)
	if err != nil {
		return nil, err
	}
	rec := &ports.DrawRecord{
		ID:        id,
		Design:    row.Design,
		Replicate: row.Replicate,
		Seed:      row.Seed,
		N:         row.N,
		Frac:      row.Frac,
		Rows:      row.RowCount,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.Columns), &rec.Columns); err != nil {
		return nil, fmt.Errorf("failed to decode draw columns: %w", err)
	}
	return rec, nil
}
