package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wanderly/agency-api/internal/domain"
	"go.uber.org/zap"
)

// Client books quote items with live-API suppliers. Items tagged offline
// never reach this interface.
type Client interface {
	// BookItem places the booking and returns the supplier's confirmation
	// number. A non-nil error means the item was not booked.
	BookItem(ctx context.Context, item *domain.QuoteItem, quote *domain.Quote) (*BookingResult, error)

	// BuildPayload returns the exact outbound payload BookItem would send,
	// without side effects. Used by the preview action.
	BuildPayload(item *domain.QuoteItem, quote *domain.Quote) interface{}
}

// BookingResult is the supplier's response to a successful booking
type BookingResult struct {
	ConfirmationNumber string `json:"confirmationNumber"`
}

// HotelBookingPayload is the fully modeled request shape for hotel
// suppliers. Other item types go out as a generic payload until their
// integrations are specified.
type HotelBookingPayload struct {
	SupplierCode string    `json:"supplierCode"`
	HotelName    string    `json:"hotelName"`
	CheckIn      string    `json:"checkIn"`
	CheckOut     string    `json:"checkOut"`
	Guests       []string  `json:"guests"`
	GuestCount   int       `json:"guestCount"`
	LeadContact  string    `json:"leadContact,omitempty"`
	Currency     string    `json:"currency"`
	NetPrice     float64   `json:"netPrice"`
	Reference    string    `json:"reference"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// GenericBookingPayload covers item types without a dedicated integration
type GenericBookingPayload struct {
	SupplierCode string    `json:"supplierCode"`
	ItemType     string    `json:"itemType"`
	ItemName     string    `json:"itemName"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate,omitempty"`
	Currency     string    `json:"currency"`
	NetPrice     float64   `json:"netPrice"`
	Reference    string    `json:"reference"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// HTTPClient is the production supplier client
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPClient creates a supplier API client
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

const dateLayout = "2006-01-02"

// BuildPayload implements Client
func (c *HTTPClient) BuildPayload(item *domain.QuoteItem, quote *domain.Quote) interface{} {
	now := c.now()
	if item.Type == domain.ItemTypeHotel {
		payload := HotelBookingPayload{
			SupplierCode: item.SupplierCode,
			HotelName:    item.Name,
			CheckIn:      item.StartDate.Format(dateLayout),
			Guests:       quote.Travelers,
			GuestCount:   len(quote.Travelers),
			Currency:     quote.Currency,
			NetPrice:     item.Price,
			Reference:    quote.QuoteNumber,
			RequestedAt:  now,
		}
		if item.EndDate != nil {
			payload.CheckOut = item.EndDate.Format(dateLayout)
		}
		if quote.Contact != nil {
			payload.LeadContact = quote.Contact.FullName()
		}
		return payload
	}

	payload := GenericBookingPayload{
		SupplierCode: item.SupplierCode,
		ItemType:     string(item.Type),
		ItemName:     item.Name,
		StartDate:    item.StartDate.Format(dateLayout),
		Currency:     quote.Currency,
		NetPrice:     item.Price,
		Reference:    quote.QuoteNumber,
		RequestedAt:  now,
	}
	if item.EndDate != nil {
		payload.EndDate = item.EndDate.Format(dateLayout)
	}
	return payload
}

type bookingResponse struct {
	ConfirmationNumber string `json:"confirmationNumber"`
	Error              string `json:"error,omitempty"`
}

// BookItem implements Client
func (c *HTTPClient) BookItem(ctx context.Context, item *domain.QuoteItem, quote *domain.Quote) (*BookingResult, error) {
	payload := c.BuildPayload(item, quote)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	url := fmt.Sprintf("%s/bookings/%s", c.baseURL, item.Type)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build booking request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supplier request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read supplier response: %w", err)
	}

	var decoded bookingResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode supplier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg := decoded.Error
		if msg == "" {
			msg = fmt.Sprintf("supplier returned status %d", resp.StatusCode)
		}
		c.logger.Warn("Supplier rejected booking",
			zap.String("itemName", item.Name),
			zap.String("supplierCode", item.SupplierCode),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%s", msg)
	}

	if decoded.ConfirmationNumber == "" {
		return nil, fmt.Errorf("supplier returned no confirmation number")
	}

	return &BookingResult{ConfirmationNumber: decoded.ConfirmationNumber}, nil
}
