package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// PaymentHandler handles HTTP requests for payments
type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// RecordPayment godoc
// @Summary Record payment
// @Description Record money received against a quote
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body domain.RecordPaymentRequest true "Payment data"
// @Success 201 {object} domain.PaymentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	pay, err := h.paymentService.Record(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to record payment", zap.Error(err), zap.String("quote_id", req.QuoteID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, pay)
}

// GetPayment godoc
// @Summary Get payment
// @Description Get a payment by ID
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.PaymentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID: must be a valid UUID")
		return
	}

	pay, err := h.paymentService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pay)
}

// ListQuotePayments godoc
// @Summary List quote payments
// @Description Get all payments recorded against a quote
// @Tags Payments
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {array} domain.PaymentDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/payments [get]
func (h *PaymentHandler) ListQuotePayments(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	payments, err := h.paymentService.ListByQuote(r.Context(), quoteID)
	if err != nil {
		h.logger.Error("failed to list payments", zap.Error(err), zap.String("quote_id", quoteID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, payments)
}
