package api

import (
	"net/http"
	"time"

	"godesign/internal"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP API around a draw handler.
func NewRouter(h *DrawHandler, logger *internal.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/draws", h.CreateDraw)
		api.GET("/draws", h.ListDraws)
		api.GET("/draws/:id", h.GetDraw)
		api.POST("/designs/validate", h.ValidateDesign)
	}
	return router
}

func requestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
