package handler

import (
	"errors"
	"net/http"

	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// RefundHandler handles HTTP requests for refunds
type RefundHandler struct {
	refundService *service.RefundService
	logger        *zap.Logger
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(refundService *service.RefundService, logger *zap.Logger) *RefundHandler {
	return &RefundHandler{
		refundService: refundService,
		logger:        logger,
	}
}

// PreviewRefund godoc
// @Summary Preview refund
// @Description Evaluate cancellation policies for a payment without processing anything
// @Tags Refunds
// @Accept json
// @Produce json
// @Param request body domain.RefundRequest true "Refund request"
// @Success 200 {object} domain.RefundCalculation
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /payments/refund/preview [post]
func (h *RefundHandler) PreviewRefund(w http.ResponseWriter, r *http.Request) {
	var req domain.RefundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	calc, err := h.refundService.Preview(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, calc)
}

// ProcessRefund godoc
// @Summary Process refund
// @Description Calculate the refund per cancellation policy, execute it at the payment gateway, and claw back eligible commissions
// @Tags Refunds
// @Accept json
// @Produce json
// @Param request body domain.RefundRequest true "Refund request"
// @Success 200 {object} domain.RefundResponse
// @Failure 400 {object} domain.RefundDeniedResponse
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /payments/refund [post]
func (h *RefundHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	var req domain.RefundRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.refundService.ProcessRefund(r.Context(), &req)
	if err != nil {
		// Zero-refund is not an API failure: the policy simply yields
		// nothing, and the UI presents that to the user
		if errors.Is(err, service.ErrZeroRefund) {
			respondJSON(w, http.StatusBadRequest, domain.RefundDeniedResponse{
				Error:            "No refund available under the cancellation policy",
				RefundPercentage: 0,
			})
			return
		}
		h.logger.Error("failed to process refund",
			zap.Error(err),
			zap.String("payment_id", req.PaymentID.String()),
			zap.String("quote_id", req.QuoteID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
