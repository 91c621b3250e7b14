package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/payment"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RefundService runs the cancellation flow: evaluate policies, refund at
// the gateway, persist the audit trail, and trigger the commission
// clawback.
//
// The steps after the gateway call are sequential, not transactional. A
// failure mid-flow can leave the gateway and the local ledger disagreeing;
// each step logs loudly so reconciliation has something to go on.
type RefundService struct {
	paymentRepo       *repository.PaymentRepository
	quoteRepo         *repository.QuoteRepository
	refundRepo        *repository.RefundRepository
	activityRepo      *repository.ActivityRepository
	gateway           payment.Gateway
	calculator        *RefundCalculator
	commissionService *CommissionService
	logger            *zap.Logger
}

func NewRefundService(
	paymentRepo *repository.PaymentRepository,
	quoteRepo *repository.QuoteRepository,
	refundRepo *repository.RefundRepository,
	activityRepo *repository.ActivityRepository,
	gateway payment.Gateway,
	calculator *RefundCalculator,
	commissionService *CommissionService,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		paymentRepo:       paymentRepo,
		quoteRepo:         quoteRepo,
		refundRepo:        refundRepo,
		activityRepo:      activityRepo,
		gateway:           gateway,
		calculator:        calculator,
		commissionService: commissionService,
		logger:            logger,
	}
}

// Preview evaluates the cancellation policies without touching the gateway
// or the store
func (s *RefundService) Preview(ctx context.Context, req *domain.RefundRequest) (*domain.RefundCalculation, error) {
	_, quote, err := s.loadAndValidate(ctx, req)
	if err != nil {
		return nil, err
	}
	calc := s.calculator.Calculate(quote)
	return &calc, nil
}

// ProcessRefund runs the full refund flow for a payment
func (s *RefundService) ProcessRefund(ctx context.Context, req *domain.RefundRequest) (*domain.RefundResponse, error) {
	pay, quote, err := s.loadAndValidate(ctx, req)
	if err != nil {
		return nil, err
	}

	calc := s.calculator.Calculate(quote)
	if calc.RefundPercentage <= 0 {
		return nil, ErrZeroRefund
	}

	amountMinor := int64(math.Round(calc.RefundAmount * 100))
	gatewayRefund, err := s.gateway.CreateRefund(ctx, pay.PaymentIntentID, amountMinor, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("gateway refund failed: %w", err)
	}

	now := time.Now()
	pay.Status = domain.PaymentStatusRefunded
	pay.RefundID = gatewayRefund.ID
	pay.RefundedAmount = calc.RefundAmount
	pay.RefundedAt = &now
	if err := s.paymentRepo.Update(ctx, pay); err != nil {
		// The gateway already moved the money. Surface the error, but flag
		// it for reconciliation.
		s.logger.Error("refund committed at gateway but payment update failed",
			zap.Error(err),
			zap.String("paymentId", pay.ID.String()),
			zap.String("gatewayRefundId", gatewayRefund.ID))
		return nil, fmt.Errorf("failed to update payment after refund: %w", err)
	}

	breakdownJSON, err := json.Marshal(calc.Breakdown)
	if err != nil {
		s.logger.Warn("failed to marshal refund breakdown", zap.Error(err))
		breakdownJSON = []byte("[]")
	}
	refund := &domain.Refund{
		AgencyID:        quote.AgencyID,
		QuoteID:         quote.ID,
		PaymentID:       pay.ID,
		GatewayRefundID: gatewayRefund.ID,
		Amount:          calc.RefundAmount,
		Percentage:      calc.RefundPercentage,
		ServiceFee:      calc.ServiceFee,
		ClientReceives:  calc.ClientReceives,
		Reason:          req.Reason,
		Breakdown:       string(breakdownJSON),
	}
	if err := s.refundRepo.Create(ctx, refund); err != nil {
		s.logger.Error("failed to persist refund record", zap.Error(err),
			zap.String("gatewayRefundId", gatewayRefund.ID))
	}

	quote.Status = domain.QuoteStatusCancelled
	quote.PaidAmount = round2(quote.PaidAmount - calc.RefundAmount)
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		s.logger.Error("failed to update quote after refund", zap.Error(err),
			zap.String("quoteId", quote.ID.String()))
	}

	s.logActivity(ctx, quote, fmt.Sprintf(
		"Refunded %.2f %s (%.0f%%, fee %.2f) via %s",
		calc.RefundAmount, quote.Currency, calc.RefundPercentage, calc.ServiceFee, gatewayRefund.ID))

	if calc.ShouldClawbackCommission {
		s.commissionService.ApplyClawback(ctx, quote.ID, calc.CommissionClawback)
	}

	return &domain.RefundResponse{
		Success:          true,
		RefundID:         gatewayRefund.ID,
		RefundAmount:     calc.RefundAmount,
		RefundPercentage: calc.RefundPercentage,
		ServiceFee:       calc.ServiceFee,
		ClientReceives:   calc.ClientReceives,
		Breakdown:        calc.Breakdown,
	}, nil
}

func (s *RefundService) loadAndValidate(ctx context.Context, req *domain.RefundRequest) (*domain.Payment, *domain.Quote, error) {
	pay, err := s.paymentRepo.GetByID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPaymentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get payment: %w", err)
	}

	quote, err := s.quoteRepo.GetByID(ctx, req.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrQuoteNotFound
		}
		return nil, nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if pay.QuoteID != quote.ID {
		return nil, nil, ErrPaymentMismatch
	}
	if pay.Status == domain.PaymentStatusRefunded {
		return nil, nil, ErrAlreadyRefunded
	}
	if quote.PaidAmount <= 0 {
		return nil, nil, ErrNothingPaid
	}

	return pay, quote, nil
}

func (s *RefundService) logActivity(ctx context.Context, quote *domain.Quote, body string) {
	activity := &domain.Activity{
		AgencyID:   quote.AgencyID,
		TargetType: domain.ActivityTargetQuote,
		TargetID:   quote.ID,
		Title:      "Refund processed",
		Body:       body,
		OccurredAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.ActorID = userCtx.UserID
		activity.ActorName = userCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err), zap.String("quoteId", quote.ID.String()))
	}
}
