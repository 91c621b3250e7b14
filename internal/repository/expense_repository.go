package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	var expense domain.Expense
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Expense, error) {
	var expenses []domain.Expense
	query := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("created_at ASC")
	query = ApplyAgencyFilter(ctx, query)
	err := query.Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) List(ctx context.Context, page, pageSize int, status *domain.ExpenseStatus, quoteID *uuid.UUID) ([]domain.Expense, int64, error) {
	var expenses []domain.Expense
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Expense{})
	query = ApplyAgencyFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if quoteID != nil {
		query = query.Where("quote_id = ?", *quoteID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&expenses).Error

	return expenses, total, err
}

// FindByQuoteAndSubcategory returns the expenses of a quote with the given
// item type. The booking cascade matches expenses by type rather than item
// id; callers must handle multiple matches.
func (r *ExpenseRepository) FindByQuoteAndSubcategory(ctx context.Context, quoteID uuid.UUID, subcategory domain.ItemType) ([]domain.Expense, error) {
	var expenses []domain.Expense
	err := r.db.WithContext(ctx).
		Where("quote_id = ? AND subcategory = ?", quoteID, subcategory).
		Order("created_at ASC").
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}
