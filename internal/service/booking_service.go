package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingService exposes bookings for the read views. Bookings are created
// by the quote accept cascade and mutated by booking execution; nothing here
// writes.
type BookingService struct {
	bookingRepo *repository.BookingRepository
	logger      *zap.Logger
}

func NewBookingService(bookingRepo *repository.BookingRepository, logger *zap.Logger) *BookingService {
	return &BookingService{bookingRepo: bookingRepo, logger: logger}
}

// GetByID returns a booking with its items
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	dto := mapper.ToBookingDTO(booking)
	return &dto, nil
}

// GetByQuoteID returns the booking belonging to a quote
func (s *BookingService) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.GetByQuoteID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	dto := mapper.ToBookingDTO(booking)
	return &dto, nil
}

// List returns a paginated booking list with an optional status filter
func (s *BookingService) List(ctx context.Context, page, pageSize int, status *domain.BookingStatus) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 50
	}

	bookings, total, err := s.bookingRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToBookingDTOs(bookings),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
