package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// BookingHandler handles HTTP requests for bookings
type BookingHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// ListBookings godoc
// @Summary List bookings
// @Description Get paginated list of bookings with an optional status filter
// @Tags Bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(pending, booked, cancelled)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.BookingStatus
	if s := r.URL.Query().Get("status"); s != "" {
		bs := domain.BookingStatus(s)
		if !bs.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &bs
	}

	result, err := h.bookingService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetBooking godoc
// @Summary Get booking
// @Description Get a booking by ID with its items
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	booking, err := h.bookingService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// GetQuoteBooking godoc
// @Summary Get booking for quote
// @Description Get the booking created from a quote
// @Tags Bookings
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotes/{id}/booking [get]
func (h *BookingHandler) GetQuoteBooking(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	booking, err := h.bookingService.GetByQuoteID(r.Context(), quoteID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}
