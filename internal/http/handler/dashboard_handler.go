package handler

import (
	"net/http"

	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for the dashboard
type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetMetrics godoc
// @Summary Dashboard metrics
// @Description Get the agency's operational counters and, when the finance warehouse is reachable, recognized revenue
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardMetrics
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard/metrics [get]
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.GetMetrics(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard metrics", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}
