package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"go.uber.org/zap"
)

// SendQuote godoc
// @Summary Send quote
// @Description Transition a draft quote to sent, assigning its quote number
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) SendQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	quote, err := h.quoteService.Send(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to send quote", zap.Error(err), zap.String("quote_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// AcceptQuote godoc
// @Summary Accept quote
// @Description Accept a sent quote, creating the booking, its tasks, expenses, and the commission
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.AcceptQuoteRequest false "Accept options"
// @Success 200 {object} domain.AcceptQuoteResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/accept [post]
func (h *QuoteHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	req := domain.AcceptQuoteRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	result, err := h.quoteService.Accept(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to accept quote", zap.Error(err), zap.String("quote_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// RejectQuote godoc
// @Summary Reject quote
// @Description Reject a sent quote with an optional reason
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.RejectQuoteRequest false "Rejection reason"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/reject [post]
func (h *QuoteHandler) RejectQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	req := domain.RejectQuoteRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	quote, err := h.quoteService.Reject(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// CancelQuote godoc
// @Summary Cancel quote
// @Description Cancel a quote that is not already terminal
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param request body domain.RejectQuoteRequest false "Cancellation reason"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/cancel [post]
func (h *QuoteHandler) CancelQuote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	req := domain.RejectQuoteRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	quote, err := h.quoteService.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}
