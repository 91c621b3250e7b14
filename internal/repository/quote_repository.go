package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

// ErrStaleVersion means a versioned quote write lost the race to another
// writer. Callers should re-read the quote and retry.
var ErrStaleVersion = errors.New("stale quote version")

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	query := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_items.created_at ASC")
		}).
		Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quote{}, "id = ?", id).Error
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, status *domain.QuoteStatus, contactID *uuid.UUID, agentID string, sort SortConfig) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{}).Preload("Contact")
	query = ApplyAgencyFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if contactID != nil {
		query = query.Where("contact_id = ?", *contactID)
	}
	if agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := BuildOrderClause(sort, map[string]string{
		"createdAt":  "created_at",
		"updatedAt":  "updated_at",
		"totalCost":  "total_cost",
		"validUntil": "valid_until",
		"status":     "status",
	}, "created_at")

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(orderBy).Find(&quotes).Error

	return quotes, total, err
}

func (r *QuoteRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Quote, error) {
	var quotes []domain.Quote
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	query := r.db.WithContext(ctx).
		Preload("Contact").
		Where("LOWER(title) LIKE ? OR LOWER(quote_number) LIKE ?", searchPattern, searchPattern)
	query = ApplyAgencyFilter(ctx, query)
	err := query.Limit(limit).Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpdateItemVersioned persists a single mutated item while bumping the
// quote's version, conditional on the version the caller read. Two writers
// racing on different items of the same quote cannot silently clobber each
// other: the loser gets ErrStaleVersion.
func (r *QuoteRepository) UpdateItemVersioned(ctx context.Context, quoteID uuid.UUID, readVersion int64, item *domain.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Quote{}).
			Where("id = ? AND version = ?", quoteID, readVersion).
			Updates(map[string]interface{}{
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}
		return tx.Save(item).Error
	})
}

// ReplaceItemsVersioned swaps the whole items list under the version guard.
// Used by wizard edits, which rewrite every line.
func (r *QuoteRepository) ReplaceItemsVersioned(ctx context.Context, quote *domain.Quote, readVersion int64, items []domain.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Quote{}).
			Where("id = ? AND version = ?", quote.ID, readVersion).
			Updates(map[string]interface{}{
				"version":           gorm.Expr("version + 1"),
				"title":             quote.Title,
				"travelers":         quote.Travelers,
				"total_cost":        quote.TotalCost,
				"remaining_balance": quote.RemainingBalance,
				"valid_until":       quote.ValidUntil,
				"notes":             quote.Notes,
				"updated_at":        time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}
		if err := tx.Where("quote_id = ?", quote.ID).Delete(&domain.QuoteItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QuoteID = quote.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// AddPayment adjusts the quote's paid and remaining amounts
func (r *QuoteRepository) AddPayment(ctx context.Context, id uuid.UUID, amount float64) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid_amount":       gorm.Expr("paid_amount + ?", amount),
			"remaining_balance": gorm.Expr("remaining_balance - ?", amount),
			"updated_at":        time.Now(),
		}).Error
}

// ExpireSent flips sent quotes whose validity date has passed to expired.
// Runs unscoped; it is called from the scheduler, not a request.
func (r *QuoteRepository) ExpireSent(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", domain.QuoteStatusSent, now).
		Updates(map[string]interface{}{
			"status":     domain.QuoteStatusExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// CountByStatus returns the number of quotes in the given statuses
func (r *QuoteRepository) CountByStatus(ctx context.Context, statuses ...domain.QuoteStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Where("status IN ?", statuses)
	query = ApplyAgencyFilter(ctx, query)
	err := query.Count(&count).Error
	return count, err
}
