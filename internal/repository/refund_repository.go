package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *domain.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *RefundRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Refund, error) {
	var refunds []domain.Refund
	query := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at DESC")
	query = ApplyAgencyFilter(ctx, query)
	err := query.Find(&refunds).Error
	return refunds, err
}
