package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mycrochip/trivia-api/internal/logging"
)

// Pinger проверяет доступность хранилища (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler отвечает на проверки живости
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler создает обработчик проверок живости
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz пингует PostgreSQL
// GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		reqLogger := logging.FromContext(c.Request.Context())
		reqLogger.Error().Err(err).Msg("health check: database unavailable")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"status":  "unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
