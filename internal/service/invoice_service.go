package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceService generates and tracks client invoices. Rendering to PDF
// happens outside this service; we own the numbers and the money.
type InvoiceService struct {
	invoiceRepo  *repository.InvoiceRepository
	quoteRepo    *repository.QuoteRepository
	bookingRepo  *repository.BookingRepository
	sequenceRepo *repository.NumberSequenceRepository
	logger       *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	quoteRepo *repository.QuoteRepository,
	bookingRepo *repository.BookingRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		quoteRepo:    quoteRepo,
		bookingRepo:  bookingRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// Generate creates and issues an invoice for an accepted or booked quote.
// One invoice per quote; the amount is the quote's client total.
func (s *InvoiceService) Generate(ctx context.Context, req *domain.GenerateInvoiceRequest) (*domain.InvoiceDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, req.QuoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusAccepted && quote.Status != domain.QuoteStatusBooked {
		return nil, ErrInvalidStatusTransition
	}

	if _, err := s.invoiceRepo.GetByQuoteID(ctx, quote.ID); err == nil {
		return nil, ErrInvoiceExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	number, err := s.sequenceRepo.NextNumber(ctx, quote.AgencyID, "invoice", "INV")
	if err != nil {
		return nil, fmt.Errorf("failed to assign invoice number: %w", err)
	}

	now := time.Now()
	dueDate := req.DueDate
	if dueDate == nil {
		d := now.AddDate(0, 0, 14)
		dueDate = &d
	}

	invoice := &domain.Invoice{
		AgencyID:      quote.AgencyID,
		QuoteID:       quote.ID,
		InvoiceNumber: number,
		Amount:        quote.TotalCost,
		Currency:      quote.Currency,
		Status:        domain.InvoiceStatusIssued,
		IssuedAt:      &now,
		DueDate:       dueDate,
	}
	if booking, err := s.bookingRepo.GetByQuoteID(ctx, quote.ID); err == nil {
		invoice.BookingID = &booking.ID
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("Invoice issued",
		zap.String("invoiceNumber", invoice.InvoiceNumber),
		zap.String("quoteId", quote.ID.String()),
		zap.Float64("amount", invoice.Amount))

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// GetByID returns a single invoice
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// List returns a paginated invoice list with an optional status filter
func (s *InvoiceService) List(ctx context.Context, page, pageSize int, status *domain.InvoiceStatus) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 50
	}

	invoices, total, err := s.invoiceRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToInvoiceDTOs(invoices),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// MarkPaid transitions an issued invoice to paid
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Status != domain.InvoiceStatusIssued {
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now()
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &now
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}

// Void voids a draft or issued invoice
func (s *InvoiceService) Void(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Status == domain.InvoiceStatusPaid || invoice.Status == domain.InvoiceStatusVoid {
		return nil, ErrInvalidStatusTransition
	}

	invoice.Status = domain.InvoiceStatusVoid
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	dto := mapper.ToInvoiceDTO(invoice)
	return &dto, nil
}
