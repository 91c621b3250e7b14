package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// QuoteHandler handles HTTP requests for quotes
type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// ListQuotes godoc
// @Summary List quotes
// @Description Get paginated list of quotes with optional filters
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, rejected, expired, booked, cancelled)
// @Param contactId query string false "Filter by contact ID"
// @Param agentId query string false "Filter by agent ID"
// @Param sortBy query string false "Sort field" Enums(created_at, updated_at, total_cost, valid_until)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.QuoteStatus
	if s := r.URL.Query().Get("status"); s != "" {
		qs := domain.QuoteStatus(s)
		if !qs.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &qs
	}

	var contactID *uuid.UUID
	if c := r.URL.Query().Get("contactId"); c != "" {
		id, err := uuid.Parse(c)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid contactId: must be a valid UUID")
			return
		}
		contactID = &id
	}

	sort := repository.DefaultSortConfig()
	if sb := r.URL.Query().Get("sortBy"); sb != "" {
		sort.Field = sb
	}
	sort.Order = repository.ParseSortOrder(r.URL.Query().Get("sortOrder"))

	result, err := h.quoteService.List(r.Context(), page, pageSize, status, contactID, r.URL.Query().Get("agentId"), sort)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetQuote godoc
// @Summary Get quote
// @Description Get a quote by ID with its items and contact
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// CreateQuote godoc
// @Summary Create quote
// @Description Create a new draft quote with its items
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, quote)
}

// UpdateQuote godoc
// @Summary Update quote
// @Description Replace the editable fields and items of a draft or sent quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.UpdateQuoteRequest true "Quote data"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update quote", zap.Error(err), zap.String("quote_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// DeleteQuote godoc
// @Summary Delete quote
// @Description Delete a draft quote
// @Tags Quotes
// @Param id path string true "Quote ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	if err := h.quoteService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// SearchQuotes godoc
// @Summary Search quotes
// @Description Search quotes by number, title, or traveler name
// @Tags Quotes
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Max results" default(20)
// @Success 200 {array} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/search [get]
func (h *QuoteHandler) SearchQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Search term is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	results, err := h.quoteService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search quotes", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}
