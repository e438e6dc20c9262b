package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldir/internal/app/models/dto"
	"github.com/yigit/schooldir/internal/middleware"
	"github.com/yigit/schooldir/internal/pkg/logger"
)

// DatabaseChecker is the part of the connection pool the health check uses.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() map[string]int32
}

// HealthController reports whether the API can reach its database
type HealthController struct {
	db DatabaseChecker
}

// NewHealthController creates a new HealthController
func NewHealthController(db DatabaseChecker) *HealthController {
	return &HealthController{db: db}
}

// Health pings the database
// @Summary Health check
// @Description Reports service status and connection pool usage
// @Tags health
// @Produce json
// @Success 200 {object} dto.StructuredResponse{data=dto.HealthData} "Service is up"
// @Failure 503 {object} dto.ErrorResponse "Database unreachable"
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	if err := h.db.Ping(ctx.Request.Context()); err != nil {
		logger.Error().Err(err).Str("request_id", middleware.GetRequestID(ctx)).Msg("Health check failed")
		detail := dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "database unreachable").
			WithSeverity(dto.ErrorSeverityCritical).
			WithDetails(dto.HealthData{Status: "down", Database: "down"})
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewStructuredResponse(dto.HealthData{
		Status:   "up",
		Database: "up",
		Pool:     h.db.Stats(),
	}, ""))
}
