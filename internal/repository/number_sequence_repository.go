package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository hands out sequential quote and invoice numbers.
// Sequences are per agency and per kind so a tenant's numbering stays dense.
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// NextNumber atomically claims the next number for an agency/kind pair and
// returns it formatted with the sequence prefix, e.g. "Q-2026-000123".
// Uses SELECT FOR UPDATE so concurrent claims cannot collide.
func (r *NumberSequenceRepository) NextNumber(ctx context.Context, agencyID uuid.UUID, kind, prefix string) (string, error) {
	var claimed int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("agency_id = ? AND kind = ?", agencyID, kind).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				AgencyID:  agencyID,
				Kind:      kind,
				Prefix:    prefix,
				NextValue: 2,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			claimed = 1
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		}

		claimed = seq.NextValue
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"next_value": seq.NextValue + 1,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update number sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%06d", prefix, time.Now().Year(), claimed), nil
}
