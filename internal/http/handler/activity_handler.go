package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// ActivityHandler handles HTTP requests for the activity feed
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// ListRecentActivities godoc
// @Summary Recent activity
// @Description Get the agency-wide activity feed, newest first
// @Tags Activities
// @Produce json
// @Param limit query int false "Max entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Router /activities [get]
func (h *ActivityHandler) ListRecentActivities(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// ListTargetActivities godoc
// @Summary Activity for a target
// @Description Get the activity log for one quote, booking, or commission
// @Tags Activities
// @Produce json
// @Param targetType path string true "Target type" Enums(Quote, Booking, Payment, Commission, Invoice, Task)
// @Param targetId path string true "Target ID"
// @Param limit query int false "Max entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /activities/{targetType}/{targetId} [get]
func (h *ActivityHandler) ListTargetActivities(w http.ResponseWriter, r *http.Request) {
	targetType := domain.ActivityTargetType(chi.URLParam(r, "targetType"))
	if !targetType.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid target type")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "targetId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid target ID: must be a valid UUID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.ListByTarget(r.Context(), targetType, targetID, limit)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, activities)
}
