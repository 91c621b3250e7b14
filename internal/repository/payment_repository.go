package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	query := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at DESC")
	query = ApplyAgencyFilter(ctx, query)
	err := query.Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// SumRefundedSince totals refunded amounts from the given instant, for the
// dashboard's refunded-this-month figure
func (r *PaymentRepository) SumRefundedSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("status = ? AND refunded_at >= ?", domain.PaymentStatusRefunded, since)
	query = ApplyAgencyFilter(ctx, query)
	err := query.Select("COALESCE(SUM(refunded_amount), 0)").Scan(&total).Error
	return total, err
}
