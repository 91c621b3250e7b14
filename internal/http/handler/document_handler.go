package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// DocumentHandler handles HTTP requests for booking documents
type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadBytes  int64
	logger          *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService, maxUploadSizeMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadSizeMB << 20,
		logger:          logger,
	}
}

// UploadDocument godoc
// @Summary Upload document
// @Description Attach a supplier confirmation or voucher to a booking
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID"
// @Param file formData file true "Document file"
// @Success 201 {object} domain.Document
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id}/documents [post]
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("File exceeds the %d MB upload limit", h.maxUploadBytes>>20))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.documentService.Upload(r.Context(), bookingID, header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("failed to upload document", zap.Error(err), zap.String("booking_id", bookingID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// ListBookingDocuments godoc
// @Summary List booking documents
// @Description Get the documents attached to a booking
// @Tags Documents
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {array} domain.Document
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id}/documents [get]
func (h *DocumentHandler) ListBookingDocuments(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	docs, err := h.documentService.ListByBooking(r.Context(), bookingID)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err), zap.String("booking_id", bookingID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// DownloadDocument godoc
// @Summary Download document
// @Description Stream a stored document back to the client
// @Tags Documents
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	doc, reader, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("document stream interrupted", zap.Error(err), zap.String("document_id", id.String()))
	}
}

// DeleteDocument godoc
// @Summary Delete document
// @Description Remove a document and its stored file
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
