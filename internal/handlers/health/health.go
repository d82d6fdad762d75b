// Package health serves the liveness and readiness probes.
package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/charleshuang3/posterboard/internal/gormw"
)

var (
	logger = log.With().Str("component", "health").Logger()
)

type Handlers struct {
	db *gormw.DB
}

func NewHandlers(db *gormw.DB) *Handlers {
	return &Handlers{db: db}
}

func (h *Handlers) RegisterHandlers(rg *gin.RouterGroup) {
	rg.GET("/health", h.handleHealth)
	rg.GET("/readiness", h.handleReadiness)
}

// handleHealth answers 200 whenever the process is up (liveness probe).
func (h *Handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Application is running",
	})
}

// handleReadiness additionally checks the database (readiness probe).
func (h *Handlers) handleReadiness(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		logger.Error().Err(err).Msg("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"message":  "Application is not ready",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"message":  "Application is ready to serve traffic",
		"database": "connected",
	})
}
