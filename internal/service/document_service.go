package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService stores supplier confirmations and vouchers attached to
// bookings
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	bookingRepo  *repository.BookingRepository
	store        storage.Storage
	logger       *zap.Logger
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	bookingRepo *repository.BookingRepository,
	store storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		bookingRepo:  bookingRepo,
		store:        store,
		logger:       logger,
	}
}

// Upload stores a file and attaches it to a booking
func (s *DocumentService) Upload(ctx context.Context, bookingID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Document, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, errors.New("user context not found")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &domain.Document{
		AgencyID:    userCtx.AgencyID,
		QuoteID:     &booking.QuoteID,
		BookingID:   &booking.ID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Orphaned blob is cheaper than a dangling row
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("Failed to clean up stored file after create failure",
				zap.String("storagePath", storagePath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	s.logger.Info("Document uploaded",
		zap.String("documentId", doc.ID.String()),
		zap.String("bookingId", booking.ID.String()),
		zap.String("filename", filename),
		zap.Int64("size", size))

	return doc, nil
}

// Download returns the document metadata and a reader for its content. The
// caller must close the reader.
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrDocumentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.store.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}

	return doc, reader, nil
}

// ListByBooking returns the documents attached to a booking
func (s *DocumentService) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Document, error) {
	docs, err := s.documentRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Delete removes a document and its stored file
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("Failed to delete stored file, row is gone",
			zap.String("storagePath", doc.StoragePath),
			zap.Error(err))
	}

	return nil
}
