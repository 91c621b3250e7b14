package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("quote_id = ?", quoteID)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) List(ctx context.Context, page, pageSize int, status *domain.BookingStatus) ([]domain.Booking, int64, error) {
	var bookings []domain.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Booking{}).Preload("Items")
	query = ApplyAgencyFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&bookings).Error

	return bookings, total, err
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// FindItemsByName returns all booking items for a booking whose name matches.
// The cascade joins quote items to booking items by name; callers must handle
// multiple matches.
func (r *BookingRepository) FindItemsByName(ctx context.Context, bookingID uuid.UUID, name string) ([]domain.BookingItem, error) {
	var items []domain.BookingItem
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND name = ?", bookingID, name).
		Find(&items).Error
	return items, err
}

func (r *BookingRepository) ListItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingItem, error) {
	var items []domain.BookingItem
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *BookingRepository) UpdateItem(ctx context.Context, item *domain.BookingItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// CountByStatus returns the number of bookings in the given statuses
func (r *BookingRepository) CountByStatus(ctx context.Context, statuses ...domain.BookingStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("status IN ?", statuses)
	query = ApplyAgencyFilter(ctx, query)
	err := query.Count(&count).Error
	return count, err
}
