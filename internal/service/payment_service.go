package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService records incoming client payments against quotes. Capture
// itself happens at the payment provider; this service only books the
// result into the ledger.
type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	quoteRepo   *repository.QuoteRepository
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	quoteRepo *repository.QuoteRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		quoteRepo:   quoteRepo,
		logger:      logger,
	}
}

// Record books a received payment and adjusts the quote's balance
func (s *PaymentService) Record(ctx context.Context, req *domain.RecordPaymentRequest) (*domain.PaymentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, errors.New("user context not found")
	}

	quote, err := s.quoteRepo.GetByID(ctx, req.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = quote.Currency
	}

	payment := &domain.Payment{
		AgencyID:        userCtx.AgencyID,
		QuoteID:         quote.ID,
		Amount:          req.Amount,
		Currency:        currency,
		PaymentIntentID: req.PaymentIntentID,
		Status:          domain.PaymentStatusPaid,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := s.quoteRepo.AddPayment(ctx, quote.ID, req.Amount); err != nil {
		s.logger.Error("payment recorded but quote balance update failed",
			zap.Error(err),
			zap.String("paymentId", payment.ID.String()),
			zap.String("quoteId", quote.ID.String()))
	}

	s.logger.Info("Payment recorded",
		zap.String("quoteId", quote.ID.String()),
		zap.Float64("amount", req.Amount),
		zap.String("currency", currency))

	dto := mapper.ToPaymentDTO(payment)
	return &dto, nil
}

// ListByQuote returns all payments against a quote
func (s *PaymentService) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.PaymentDTO, error) {
	payments, err := s.paymentRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return mapper.ToPaymentDTOs(payments), nil
}

// GetByID returns a single payment
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentDTO, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	dto := mapper.ToPaymentDTO(payment)
	return &dto, nil
}
