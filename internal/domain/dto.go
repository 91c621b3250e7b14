package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// ============================================================================
// Quotes
// ============================================================================

// QuoteItemInput is the request shape for a quote line
type QuoteItemInput struct {
	Type               ItemType            `json:"type" validate:"required"`
	Name               string              `json:"name" validate:"required,max=200"`
	StartDate          time.Time           `json:"startDate" validate:"required"`
	EndDate            *time.Time          `json:"endDate,omitempty"`
	SupplierSource     SupplierSource      `json:"supplierSource,omitempty"`
	SupplierCode       string              `json:"supplierCode,omitempty"`
	Price              float64             `json:"price" validate:"gte=0"`
	ClientPrice        float64             `json:"clientPrice" validate:"gte=0"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty"`
}

// CreateQuoteRequest creates a new draft quote
type CreateQuoteRequest struct {
	Title      string           `json:"title" validate:"required,max=200"`
	ContactID  uuid.UUID        `json:"contactId" validate:"required"`
	Travelers  []string         `json:"travelers,omitempty"`
	Currency   string           `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidUntil *time.Time       `json:"validUntil,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Items      []QuoteItemInput `json:"items" validate:"dive"`
}

// UpdateQuoteRequest replaces the editable fields of a draft/sent quote
type UpdateQuoteRequest struct {
	Title      string           `json:"title" validate:"required,max=200"`
	Travelers  []string         `json:"travelers,omitempty"`
	ValidUntil *time.Time       `json:"validUntil,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Items      []QuoteItemInput `json:"items" validate:"dive"`
}

// AcceptQuoteRequest accepts a sent quote and creates the booking
type AcceptQuoteRequest struct {
	CommissionRate *float64 `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// RejectQuoteRequest rejects a sent quote with an optional reason
type RejectQuoteRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// QuoteItemDTO is the API representation of a quote line
type QuoteItemDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Type               ItemType            `json:"type"`
	Name               string              `json:"name"`
	StartDate          time.Time           `json:"startDate"`
	EndDate            *time.Time          `json:"endDate,omitempty"`
	SupplierSource     SupplierSource      `json:"supplierSource"`
	SupplierCode       string              `json:"supplierCode,omitempty"`
	Price              float64             `json:"price"`
	ClientPrice        float64             `json:"clientPrice"`
	BookingStatus      ItemBookingStatus   `json:"bookingStatus"`
	ConfirmationNumber string              `json:"confirmationNumber,omitempty"`
	BookedAt           *time.Time          `json:"bookedAt,omitempty"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty"`
}

// QuoteDTO is the API representation of a quote
type QuoteDTO struct {
	ID               uuid.UUID      `json:"id"`
	QuoteNumber      string         `json:"quoteNumber,omitempty"`
	Title            string         `json:"title"`
	ContactID        uuid.UUID      `json:"contactId"`
	ContactName      string         `json:"contactName,omitempty"`
	AgentID          string         `json:"agentId"`
	AgentName        string         `json:"agentName,omitempty"`
	Status           QuoteStatus    `json:"status"`
	Items            []QuoteItemDTO `json:"items"`
	Travelers        []string       `json:"travelers,omitempty"`
	Currency         string         `json:"currency"`
	TotalCost        float64        `json:"totalCost"`
	PaidAmount       float64        `json:"paidAmount"`
	RemainingBalance float64        `json:"remainingBalance"`
	ValidUntil       *time.Time     `json:"validUntil,omitempty"`
	SentAt           *time.Time     `json:"sentAt,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// AcceptQuoteResponse returns the accepted quote and the booking created from it
type AcceptQuoteResponse struct {
	Quote   *QuoteDTO   `json:"quote"`
	Booking *BookingDTO `json:"booking"`
}

// ============================================================================
// Refunds
// ============================================================================

// RefundRequest is the body of the refund endpoint
type RefundRequest struct {
	PaymentID uuid.UUID `json:"paymentId" validate:"required"`
	QuoteID   uuid.UUID `json:"quoteId" validate:"required"`
	Reason    string    `json:"reason,omitempty" validate:"max=500"`
}

// RefundLineItem is one row of the per-item refund breakdown. Every item
// appears, including zero-refund ones, for audit display.
type RefundLineItem struct {
	ItemID            uuid.UUID `json:"itemId"`
	Name              string    `json:"name"`
	PaidAmount        float64   `json:"paidAmount"`
	RefundAmount      float64   `json:"refundAmount"`
	RefundPercentage  float64   `json:"refundPercentage"`
	MissingTravelDate bool      `json:"missingTravelDate,omitempty"`
}

// RefundCalculation is the result of evaluating cancellation policies
// against a quote and its paid amount
type RefundCalculation struct {
	RefundAmount             float64          `json:"refundAmount"`
	RefundPercentage         float64          `json:"refundPercentage"`
	ServiceFee               float64          `json:"serviceFee"`
	ClientReceives           float64          `json:"clientReceives"`
	ShouldClawbackCommission bool             `json:"shouldClawbackCommission"`
	CommissionClawback       float64          `json:"commissionClawback"`
	Breakdown                []RefundLineItem `json:"breakdown"`
}

// RefundResponse is the success body of the refund endpoint
type RefundResponse struct {
	Success          bool             `json:"success"`
	RefundID         string           `json:"refundId"`
	RefundAmount     float64          `json:"refundAmount"`
	RefundPercentage float64          `json:"refundPercentage"`
	ServiceFee       float64          `json:"serviceFee"`
	ClientReceives   float64          `json:"clientReceives"`
	Breakdown        []RefundLineItem `json:"breakdown"`
}

// RefundDeniedResponse is returned when the policy yields a zero refund.
// It is a 400 the UI presents to the user, not a hard failure.
type RefundDeniedResponse struct {
	Error            string  `json:"error"`
	RefundPercentage float64 `json:"refundPercentage"`
}

// ============================================================================
// Booking execution
// ============================================================================

// Task actions accepted by the execution endpoint
const (
	TaskActionExecute = "execute"
	TaskActionPreview = "preview"
)

// ExecuteTaskRequest is the body of the booking execution endpoint
type ExecuteTaskRequest struct {
	TaskID uuid.UUID `json:"taskId" validate:"required"`
	Action string    `json:"action,omitempty" validate:"omitempty,oneof=execute preview"`
}

// ExecuteTaskResponse is the body of a successful execution or preview
type ExecuteTaskResponse struct {
	Success            bool        `json:"success"`
	ConfirmationNumber string      `json:"confirmationNumber,omitempty"`
	Action             string      `json:"action,omitempty"`
	Payload            interface{} `json:"payload,omitempty"`
	Error              string      `json:"error,omitempty"`
}

// TaskDTO is the API representation of a booking task
type TaskDTO struct {
	ID            uuid.UUID         `json:"id"`
	QuoteID       uuid.UUID         `json:"quoteId"`
	ItemID        uuid.UUID         `json:"itemId"`
	BookingID     *uuid.UUID        `json:"bookingId,omitempty"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	ExecutionType TaskExecutionType `json:"executionType"`
	SupplierCode  string            `json:"supplierCode,omitempty"`
	Status        TaskStatus        `json:"status"`
	Attempts      []BookingAttempt  `json:"attempts"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// ============================================================================
// Bookings
// ============================================================================

// BookingItemDTO is the API representation of a normalized booking line
type BookingItemDTO struct {
	ID                 uuid.UUID         `json:"id"`
	QuoteItemID        uuid.UUID         `json:"quoteItemId"`
	Name               string            `json:"name"`
	Type               ItemType          `json:"type"`
	SupplierSource     SupplierSource    `json:"supplierSource"`
	BookingStatus      ItemBookingStatus `json:"bookingStatus"`
	ConfirmationNumber string            `json:"confirmationNumber,omitempty"`
	Price              float64           `json:"price"`
	ClientPrice        float64           `json:"clientPrice"`
}

// BookingDTO is the API representation of a booking
type BookingDTO struct {
	ID        uuid.UUID        `json:"id"`
	QuoteID   uuid.UUID        `json:"quoteId"`
	Reference string           `json:"reference,omitempty"`
	Status    BookingStatus    `json:"status"`
	Items     []BookingItemDTO `json:"items"`
	BookedAt  *time.Time       `json:"bookedAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ============================================================================
// Payments
// ============================================================================

// RecordPaymentRequest records money received against a quote
type RecordPaymentRequest struct {
	QuoteID         uuid.UUID `json:"quoteId" validate:"required"`
	Amount          float64   `json:"amount" validate:"required,gt=0"`
	Currency        string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	PaymentIntentID string    `json:"paymentIntentId,omitempty" validate:"max=200"`
}

// PaymentDTO is the API representation of a payment
type PaymentDTO struct {
	ID              uuid.UUID     `json:"id"`
	QuoteID         uuid.UUID     `json:"quoteId"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	Status          PaymentStatus `json:"status"`
	RefundID        string        `json:"refundId,omitempty"`
	RefundedAmount  float64       `json:"refundedAmount,omitempty"`
	RefundedAt      *time.Time    `json:"refundedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ============================================================================
// Commissions
// ============================================================================

// CommissionDTO is the API representation of a commission
type CommissionDTO struct {
	ID           uuid.UUID        `json:"id"`
	QuoteID      uuid.UUID        `json:"quoteId"`
	BookingID    *uuid.UUID       `json:"bookingId,omitempty"`
	AgentID      string           `json:"agentId"`
	AgentName    string           `json:"agentName,omitempty"`
	Amount       float64          `json:"amount"`
	Rate         float64          `json:"rate"`
	Status       CommissionStatus `json:"status"`
	PaidAt       *time.Time       `json:"paidAt,omitempty"`
	ClawedBackAt *time.Time       `json:"clawedBackAt,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// CommissionNoteRequest carries an optional note for a status transition
type CommissionNoteRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=500"`
}

// ============================================================================
// Invoices
// ============================================================================

// GenerateInvoiceRequest generates an invoice for a booked quote
type GenerateInvoiceRequest struct {
	QuoteID uuid.UUID  `json:"quoteId" validate:"required"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

// InvoiceDTO is the API representation of an invoice
type InvoiceDTO struct {
	ID            uuid.UUID     `json:"id"`
	QuoteID       uuid.UUID     `json:"quoteId"`
	BookingID     *uuid.UUID    `json:"bookingId,omitempty"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Status        InvoiceStatus `json:"status"`
	IssuedAt      *time.Time    `json:"issuedAt,omitempty"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// ============================================================================
// Expenses
// ============================================================================

// ExpenseDTO is the API representation of a supplier expense
type ExpenseDTO struct {
	ID          uuid.UUID     `json:"id"`
	QuoteID     uuid.UUID     `json:"quoteId"`
	BookingID   *uuid.UUID    `json:"bookingId,omitempty"`
	Category    string        `json:"category"`
	Subcategory ItemType      `json:"subcategory"`
	Description string        `json:"description,omitempty"`
	Amount      float64       `json:"amount"`
	Currency    string        `json:"currency"`
	Status      ExpenseStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// UpdateExpenseStatusRequest updates the status of an expense
type UpdateExpenseStatusRequest struct {
	Status ExpenseStatus `json:"status" validate:"required,oneof=pending booked cancelled"`
}

// ============================================================================
// Contacts
// ============================================================================

// CreateContactRequest creates a client contact
type CreateContactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"max=50"`
	Notes     string `json:"notes,omitempty"`
}

// ContactDTO is the API representation of a contact
type ContactDTO struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================================================
// Dashboard
// ============================================================================

// DashboardMetrics aggregates operational counters for the agency dashboard
type DashboardMetrics struct {
	OpenQuotes           int64   `json:"openQuotes"`
	BookingsInFlight     int64   `json:"bookingsInFlight"`
	PendingTasks         int64   `json:"pendingTasks"`
	UnpaidInvoices       int64   `json:"unpaidInvoices"`
	CommissionLiability  float64 `json:"commissionLiability"`
	RefundedThisMonth    float64 `json:"refundedThisMonth"`
	LedgerRevenue        float64 `json:"ledgerRevenue,omitempty"`
	LedgerRevenueFromDW  bool    `json:"ledgerRevenueFromDw,omitempty"`
}

// ActivityDTO is the API representation of an activity log entry
type ActivityDTO struct {
	ID         uuid.UUID          `json:"id"`
	TargetType ActivityTargetType `json:"targetType"`
	TargetID   uuid.UUID          `json:"targetId"`
	Title      string             `json:"title"`
	Body       string             `json:"body,omitempty"`
	OccurredAt time.Time          `json:"occurredAt"`
	ActorID    string             `json:"actorId,omitempty"`
	ActorName  string             `json:"actorName,omitempty"`
}
