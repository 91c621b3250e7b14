package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) Create(ctx context.Context, commission *domain.Commission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

func (r *CommissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	var commission domain.Commission
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&commission).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

// ListByQuote returns every commission row tied to a quote, regardless of
// status. The clawback applier decides per row what to touch.
func (r *CommissionRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Commission, error) {
	var commissions []domain.Commission
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC").
		Find(&commissions).Error
	return commissions, err
}

func (r *CommissionRepository) List(ctx context.Context, page, pageSize int, status *domain.CommissionStatus, agentID string) ([]domain.Commission, int64, error) {
	var commissions []domain.Commission
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Commission{})
	query = ApplyAgencyFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&commissions).Error

	return commissions, total, err
}

func (r *CommissionRepository) Update(ctx context.Context, commission *domain.Commission) error {
	return r.db.WithContext(ctx).Save(commission).Error
}

// SumOutstanding totals commissions the agency still owes its agents
func (r *CommissionRepository) SumOutstanding(ctx context.Context) (float64, error) {
	var total float64
	query := r.db.WithContext(ctx).Model(&domain.Commission{}).
		Where("status IN ?", []domain.CommissionStatus{
			domain.CommissionPending,
			domain.CommissionApproved,
		})
	query = ApplyAgencyFilter(ctx, query)
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
