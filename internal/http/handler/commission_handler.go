package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// CommissionHandler handles HTTP requests for commissions
type CommissionHandler struct {
	commissionService *service.CommissionService
	logger            *zap.Logger
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(commissionService *service.CommissionService, logger *zap.Logger) *CommissionHandler {
	return &CommissionHandler{
		commissionService: commissionService,
		logger:            logger,
	}
}

// ListCommissions godoc
// @Summary List commissions
// @Description Get paginated list of commissions with optional filters
// @Tags Commissions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(pending, approved, paid, released, clawed_back, disputed)
// @Param agentId query string false "Filter by agent ID"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /commissions [get]
func (h *CommissionHandler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.CommissionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		cs := domain.CommissionStatus(s)
		if !cs.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &cs
	}

	result, err := h.commissionService.List(r.Context(), page, pageSize, status, r.URL.Query().Get("agentId"))
	if err != nil {
		h.logger.Error("failed to list commissions", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetCommission godoc
// @Summary Get commission
// @Description Get a commission by ID
// @Tags Commissions
// @Produce json
// @Param id path string true "Commission ID"
// @Success 200 {object} domain.CommissionDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /commissions/{id} [get]
func (h *CommissionHandler) GetCommission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid commission ID: must be a valid UUID")
		return
	}

	commission, err := h.commissionService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, commission)
}

// ApproveCommission godoc
// @Summary Approve commission
// @Description Approve a pending commission for payout
// @Tags Commissions
// @Accept json
// @Produce json
// @Param id path string true "Commission ID"
// @Param request body domain.CommissionNoteRequest false "Approval note"
// @Success 200 {object} domain.CommissionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /commissions/{id}/approve [post]
func (h *CommissionHandler) ApproveCommission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.commissionService.Approve)
}

// PayCommission godoc
// @Summary Mark commission paid
// @Description Mark an approved commission as paid out to the agent
// @Tags Commissions
// @Accept json
// @Produce json
// @Param id path string true "Commission ID"
// @Param request body domain.CommissionNoteRequest false "Payout note"
// @Success 200 {object} domain.CommissionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /commissions/{id}/pay [post]
func (h *CommissionHandler) PayCommission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.commissionService.MarkPaid)
}

// DisputeCommission godoc
// @Summary Dispute commission
// @Description Flag a commission as disputed, freezing it from clawback and payout
// @Tags Commissions
// @Accept json
// @Produce json
// @Param id path string true "Commission ID"
// @Param request body domain.CommissionNoteRequest false "Dispute note"
// @Success 200 {object} domain.CommissionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /commissions/{id}/dispute [post]
func (h *CommissionHandler) DisputeCommission(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.commissionService.Dispute)
}

func (h *CommissionHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID, notes string) (*domain.CommissionDTO, error),
) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid commission ID: must be a valid UUID")
		return
	}

	req := domain.CommissionNoteRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	commission, err := fn(r.Context(), id, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, commission)
}
