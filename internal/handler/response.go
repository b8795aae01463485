package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mycrochip/trivia-api/internal/handler/dto"
	"github.com/mycrochip/trivia-api/internal/logging"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
)

// respondError прерывает обработку и отдаёт ошибку в едином формате
func respondError(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(status))
}

// handleError сопоставляет ошибку сервиса со статусом ответа.
// Неизвестные ошибки логируются и отдаются как 500 без подробностей.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound)
	case errors.Is(err, apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrUnprocessable):
		reqLogger := logging.FromContext(c.Request.Context())
		reqLogger.Info().Err(err).Msg("request rejected")
		respondError(c, http.StatusUnprocessableEntity)
	default:
		reqLogger := logging.FromContext(c.Request.Context())
		reqLogger.Error().Err(err).
			Str("route", c.FullPath()).
			Msg("unhandled error")
		respondError(c, http.StatusInternalServerError)
	}
}

// NoRoute отвечает 404 на неизвестные пути
func NoRoute(c *gin.Context) {
	respondError(c, http.StatusNotFound)
}

// NoMethod отвечает 405 на неподдерживаемый метод известного пути
func NoMethod(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed)
}

// Recovery отдаёт 500 в едином формате после паники в обработчике
func Recovery(c *gin.Context, recovered any) {
	reqLogger := logging.FromContext(c.Request.Context())
	reqLogger.Error().
		Interface("panic", recovered).
		Str("path", c.Request.URL.Path).
		Msg("panic recovered")
	respondError(c, http.StatusInternalServerError)
}
