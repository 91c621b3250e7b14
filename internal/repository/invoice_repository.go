package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	query := r.db.WithContext(ctx).Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	query := r.db.WithContext(ctx).Where("quote_id = ?", quoteID)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int, status *domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
	query = ApplyAgencyFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&invoices).Error

	return invoices, total, err
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// CountUnpaid returns the number of issued but unpaid invoices
func (r *InvoiceRepository) CountUnpaid(ctx context.Context) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Invoice{}).
		Where("status = ?", domain.InvoiceStatusIssued)
	query = ApplyAgencyFilter(ctx, query)
	err := query.Count(&count).Error
	return count, err
}
