package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Document, error) {
	var docs []domain.Document
	query := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC")
	query = ApplyAgencyFilter(ctx, query)
	err := query.Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Document{}, "id = ?", id).Error
}
