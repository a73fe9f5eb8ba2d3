package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/survey-backend/internal/http/response"
	"github.com/yungbote/survey-backend/internal/platform/logger"
	"github.com/yungbote/survey-backend/internal/services"
)

type HealthHandler struct {
	log    *logger.Logger
	survey services.SurveyService
}

func NewHealthHandler(log *logger.Logger, svc services.SurveyService) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), survey: svc}
}

// HealthCheck passes only when the stored summary still matches the stored responses.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.survey.Health(ctx); err != nil {
		h.log.Warn("Health check failed", "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "unhealthy", err)
		return
	}
	c.String(http.StatusOK, "ok")
}
