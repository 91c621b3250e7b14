package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// ExpenseHandler handles HTTP requests for supplier expenses
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// ListExpenses godoc
// @Summary List expenses
// @Description Get paginated list of supplier expenses with optional filters
// @Tags Expenses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(pending, booked, cancelled)
// @Param quoteId query string false "Filter by quote ID"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.ExpenseStatus
	if s := r.URL.Query().Get("status"); s != "" {
		es := domain.ExpenseStatus(s)
		if !es.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &es
	}

	var quoteID *uuid.UUID
	if q := r.URL.Query().Get("quoteId"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid quoteId: must be a valid UUID")
			return
		}
		quoteID = &id
	}

	result, err := h.expenseService.List(r.Context(), page, pageSize, status, quoteID)
	if err != nil {
		h.logger.Error("failed to list expenses", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetExpense godoc
// @Summary Get expense
// @Description Get an expense by ID
// @Tags Expenses
// @Produce json
// @Param id path string true "Expense ID"
// @Success 200 {object} domain.ExpenseDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense ID: must be a valid UUID")
		return
	}

	expense, err := h.expenseService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, expense)
}

// UpdateExpenseStatus godoc
// @Summary Update expense status
// @Description Manually set an expense's status
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body domain.UpdateExpenseStatusRequest true "New status"
// @Success 200 {object} domain.ExpenseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /expenses/{id}/status [put]
func (h *ExpenseHandler) UpdateExpenseStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense ID: must be a valid UUID")
		return
	}

	var req domain.UpdateExpenseStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	expense, err := h.expenseService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, expense)
}
