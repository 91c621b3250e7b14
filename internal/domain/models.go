package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Agency represents a tenant travel agency
type Agency struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null;index" json:"name"`
	Email    string `gorm:"type:varchar(255);not null" json:"email"`
	Phone    string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Country  string `gorm:"type:varchar(100);not null;default:'Norway'" json:"country"`
	Currency string `gorm:"type:varchar(3);not null;default:'NOK'" json:"currency"`
	IsActive bool   `gorm:"not null;default:true;column:is_active" json:"isActive"`
}

// Contact represents the client a quote is addressed to
type Contact struct {
	BaseModel
	AgencyID  uuid.UUID `gorm:"type:uuid;not null;index;column:agency_id"`
	FirstName string    `gorm:"type:varchar(100);not null;column:first_name"`
	LastName  string    `gorm:"type:varchar(100);not null;column:last_name"`
	Email     string    `gorm:"type:varchar(255);index"`
	Phone     string    `gorm:"type:varchar(50)"`
	Notes     string    `gorm:"type:text"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusBooked    QuoteStatus = "booked"
	QuoteStatusCancelled QuoteStatus = "cancelled"
	QuoteStatusExpired   QuoteStatus = "expired"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (qs QuoteStatus) IsValid() bool {
	switch qs {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected,
		QuoteStatusBooked, QuoteStatusCancelled, QuoteStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further lifecycle transitions are allowed
func (qs QuoteStatus) IsTerminal() bool {
	return qs == QuoteStatusBooked || qs == QuoteStatusCancelled
}

// Quote represents a priced travel proposal pending client acceptance
type Quote struct {
	BaseModel
	AgencyID         uuid.UUID      `gorm:"type:uuid;not null;index;column:agency_id"`
	Agency           *Agency        `gorm:"foreignKey:AgencyID"`
	QuoteNumber      string         `gorm:"type:varchar(50);index;column:quote_number"`
	Title            string         `gorm:"type:varchar(200);not null"`
	ContactID        uuid.UUID      `gorm:"type:uuid;not null;index;column:contact_id"`
	Contact          *Contact       `gorm:"foreignKey:ContactID"`
	AgentID          string         `gorm:"type:varchar(100);not null;index;column:agent_id"`
	AgentName        string         `gorm:"type:varchar(200);column:agent_name"`
	Status           QuoteStatus    `gorm:"type:varchar(50);not null;default:'draft';index"`
	Items            []QuoteItem    `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Travelers        pq.StringArray `gorm:"type:text[]"`
	Currency         string         `gorm:"type:varchar(3);not null;default:'NOK'"`
	TotalCost        float64        `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	PaidAmount       float64        `gorm:"type:decimal(15,2);not null;default:0;column:paid_amount"`
	RemainingBalance float64        `gorm:"type:decimal(15,2);not null;default:0;column:remaining_balance"`
	ValidUntil       *time.Time     `gorm:"type:date;column:valid_until"`
	SentAt           *time.Time     `gorm:"column:sent_at"`
	Notes            string         `gorm:"type:text"`
	// Version guards the read-modify-write cycle on the items list.
	// Writers carry the version they read; a stale write is rejected.
	Version int64 `gorm:"not null;default:0"`
}

// ItemType represents the kind of travel product on a quote line
type ItemType string

const (
	ItemTypeFlight   ItemType = "flight"
	ItemTypeHotel    ItemType = "hotel"
	ItemTypeActivity ItemType = "activity"
	ItemTypeTransfer ItemType = "transfer"
)

// IsValid checks if the ItemType is a valid enum value
func (it ItemType) IsValid() bool {
	switch it {
	case ItemTypeFlight, ItemTypeHotel, ItemTypeActivity, ItemTypeTransfer:
		return true
	}
	return false
}

// SupplierSource distinguishes items bookable through a live API integration
// from those requiring manual/offline handling by an agent
type SupplierSource string

const (
	SupplierSourceAPI     SupplierSource = "api"
	SupplierSourceOffline SupplierSource = "offline"
)

// ItemBookingStatus represents the per-item booking progress
type ItemBookingStatus string

const (
	ItemNotBooked     ItemBookingStatus = "not_booked"
	ItemBooked        ItemBookingStatus = "booked"
	ItemBookCancelled ItemBookingStatus = "cancelled"
)

// QuoteItem represents one line of a quote
type QuoteItem struct {
	BaseModel
	QuoteID            uuid.UUID           `gorm:"type:uuid;not null;index;column:quote_id"`
	Type               ItemType            `gorm:"type:varchar(50);not null;index"`
	Name               string              `gorm:"type:varchar(200);not null"`
	StartDate          time.Time           `gorm:"not null;column:start_date"`
	EndDate            *time.Time          `gorm:"column:end_date"`
	SupplierSource     SupplierSource      `gorm:"type:varchar(50);not null;default:'offline';column:supplier_source"`
	SupplierCode       string              `gorm:"type:varchar(100);column:supplier_code"`
	Price              float64             `gorm:"type:decimal(15,2);not null"`
	ClientPrice        float64             `gorm:"type:decimal(15,2);not null;column:client_price"`
	BookingStatus      ItemBookingStatus   `gorm:"type:varchar(50);not null;default:'not_booked';column:booking_status"`
	ConfirmationNumber string              `gorm:"type:varchar(100);column:confirmation_number"`
	BookedAt           *time.Time          `gorm:"column:booked_at"`
	CancellationPolicy *CancellationPolicy `gorm:"type:jsonb;column:cancellation_policy"`
}

// PaidValue returns the amount the client paid for this line
// (client price when set, otherwise net price)
func (i *QuoteItem) PaidValue() float64 {
	if i.ClientPrice > 0 {
		return i.ClientPrice
	}
	return i.Price
}

// PaymentStatus represents the state of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment represents money received against a quote
type Payment struct {
	BaseModel
	AgencyID        uuid.UUID     `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID         uuid.UUID     `gorm:"type:uuid;not null;index;column:quote_id"`
	Quote           *Quote        `gorm:"foreignKey:QuoteID"`
	Amount          float64       `gorm:"type:decimal(15,2);not null"`
	Currency        string        `gorm:"type:varchar(3);not null;default:'NOK'"`
	PaymentIntentID string        `gorm:"type:varchar(200);column:payment_intent_id"`
	Status          PaymentStatus `gorm:"type:varchar(50);not null;default:'paid';index"`
	RefundID        string        `gorm:"type:varchar(200);column:refund_id"`
	RefundedAmount  float64       `gorm:"type:decimal(15,2);not null;default:0;column:refunded_amount"`
	RefundedAt      *time.Time    `gorm:"column:refunded_at"`
}

// CommissionStatus represents the payout lifecycle of an agent commission
type CommissionStatus string

const (
	CommissionPending    CommissionStatus = "pending"
	CommissionApproved   CommissionStatus = "approved"
	CommissionPaid       CommissionStatus = "paid"
	CommissionReleased   CommissionStatus = "released"
	CommissionDisputed   CommissionStatus = "disputed"
	CommissionClawedBack CommissionStatus = "clawed_back"
)

// IsValid checks if the CommissionStatus is a valid enum value
func (cs CommissionStatus) IsValid() bool {
	switch cs {
	case CommissionPending, CommissionApproved, CommissionPaid,
		CommissionReleased, CommissionDisputed, CommissionClawedBack:
		return true
	}
	return false
}

// IsClawbackEligible reports whether a clawback transitions this status.
// Only statuses that represent money paid out, or queued for payout, are
// eligible; approved and disputed rows are deliberately left alone.
func (cs CommissionStatus) IsClawbackEligible() bool {
	switch cs {
	case CommissionPending, CommissionPaid, CommissionReleased:
		return true
	}
	return false
}

// Commission represents an agent's earned share of a booking
type Commission struct {
	BaseModel
	AgencyID     uuid.UUID        `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID      uuid.UUID        `gorm:"type:uuid;not null;index;column:quote_id"`
	BookingID    *uuid.UUID       `gorm:"type:uuid;index;column:booking_id"`
	AgentID      string           `gorm:"type:varchar(100);not null;index;column:agent_id"`
	AgentName    string           `gorm:"type:varchar(200);column:agent_name"`
	Amount       float64          `gorm:"type:decimal(15,2);not null"`
	Rate         float64          `gorm:"type:decimal(5,2);not null"`
	Status       CommissionStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	PaidAt       *time.Time       `gorm:"column:paid_at"`
	ClawedBackAt *time.Time       `gorm:"column:clawed_back_at"`
	Notes        string           `gorm:"type:text"`
}

// BookingStatus represents the state of an operational booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsValid checks if the booking status is valid
func (bs BookingStatus) IsValid() bool {
	switch bs {
	case BookingStatusPending, BookingStatusBooked, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is the operational record created from an accepted quote
type Booking struct {
	BaseModel
	AgencyID  uuid.UUID     `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex;column:quote_id"`
	Quote     *Quote        `gorm:"foreignKey:QuoteID"`
	Reference string        `gorm:"type:varchar(50);index"`
	Status    BookingStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
	Items     []BookingItem `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	BookedAt  *time.Time    `gorm:"column:booked_at"`
}

// BookingItem is a normalized copy of an accepted quote item.
// Its booking status mirrors the quote item's status and is kept in sync by
// the booking execution cascade.
type BookingItem struct {
	BaseModel
	BookingID          uuid.UUID         `gorm:"type:uuid;not null;index;column:booking_id"`
	QuoteItemID        uuid.UUID         `gorm:"type:uuid;index;column:quote_item_id"`
	Name               string            `gorm:"type:varchar(200);not null;index"`
	Type               ItemType          `gorm:"type:varchar(50);not null"`
	SupplierSource     SupplierSource    `gorm:"type:varchar(50);not null;default:'offline';column:supplier_source"`
	BookingStatus      ItemBookingStatus `gorm:"type:varchar(50);not null;default:'not_booked';column:booking_status"`
	ConfirmationNumber string            `gorm:"type:varchar(100);column:confirmation_number"`
	Price              float64           `gorm:"type:decimal(15,2);not null"`
	ClientPrice        float64           `gorm:"type:decimal(15,2);not null;column:client_price"`
}

// TaskExecutionType distinguishes supplier-API tasks from manual ones
type TaskExecutionType string

const (
	TaskExecutionAPI    TaskExecutionType = "api"
	TaskExecutionManual TaskExecutionType = "manual"
)

// TaskStatus represents the state of a booking task.
// There is no failed terminal state: a failed execution appends an attempt
// and leaves the task pending so it can be retried by calling again.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsValid checks if the task status is valid
func (ts TaskStatus) IsValid() bool {
	return ts == TaskStatusPending || ts == TaskStatusCompleted
}

// Task represents "get this item actually booked with the supplier"
type Task struct {
	BaseModel
	AgencyID      uuid.UUID         `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID       uuid.UUID         `gorm:"type:uuid;not null;index;column:quote_id"`
	Quote         *Quote            `gorm:"foreignKey:QuoteID"`
	ItemID        uuid.UUID         `gorm:"type:uuid;not null;column:item_id"`
	BookingID     *uuid.UUID        `gorm:"type:uuid;index;column:booking_id"`
	Title         string            `gorm:"type:varchar(200);not null"`
	Description   string            `gorm:"type:text"`
	ExecutionType TaskExecutionType `gorm:"type:varchar(50);not null;default:'manual';column:execution_type"`
	SupplierCode  string            `gorm:"type:varchar(100);column:supplier_code"`
	Status        TaskStatus        `gorm:"type:varchar(50);not null;default:'pending';index"`
	Attempts      AttemptLog        `gorm:"type:jsonb"`
	CompletedAt   *time.Time        `gorm:"column:completed_at"`
}

// ExpenseStatus represents the state of a supplier expense
type ExpenseStatus string

const (
	ExpenseStatusPending   ExpenseStatus = "pending"
	ExpenseStatusBooked    ExpenseStatus = "booked"
	ExpenseStatusCancelled ExpenseStatus = "cancelled"
)

// IsValid checks if the expense status is valid
func (es ExpenseStatus) IsValid() bool {
	switch es {
	case ExpenseStatusPending, ExpenseStatusBooked, ExpenseStatusCancelled:
		return true
	}
	return false
}

// Expense represents a cost owed to a supplier for a quote item
type Expense struct {
	BaseModel
	AgencyID    uuid.UUID     `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID     uuid.UUID     `gorm:"type:uuid;not null;index;column:quote_id"`
	BookingID   *uuid.UUID    `gorm:"type:uuid;index;column:booking_id"`
	Category    string        `gorm:"type:varchar(100);not null;default:'supplier'"`
	Subcategory ItemType      `gorm:"type:varchar(50);not null;index"`
	Description string        `gorm:"type:varchar(500)"`
	Amount      float64       `gorm:"type:decimal(15,2);not null"`
	Currency    string        `gorm:"type:varchar(3);not null;default:'NOK'"`
	Status      ExpenseStatus `gorm:"type:varchar(50);not null;default:'pending';index"`
}

// InvoiceStatus represents the billing lifecycle of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusVoid   InvoiceStatus = "void"
)

// IsValid checks if the InvoiceStatus is a valid enum value
func (is InvoiceStatus) IsValid() bool {
	switch is {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// Invoice represents a client-facing bill generated from a booked quote.
// PDF rendering happens outside this service.
type Invoice struct {
	BaseModel
	AgencyID      uuid.UUID     `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID       uuid.UUID     `gorm:"type:uuid;not null;index;column:quote_id"`
	BookingID     *uuid.UUID    `gorm:"type:uuid;index;column:booking_id"`
	InvoiceNumber string        `gorm:"type:varchar(50);unique;index;column:invoice_number"`
	Amount        float64       `gorm:"type:decimal(15,2);not null"`
	Currency      string        `gorm:"type:varchar(3);not null;default:'NOK'"`
	Status        InvoiceStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	IssuedAt      *time.Time    `gorm:"column:issued_at"`
	DueDate       *time.Time    `gorm:"type:date;column:due_date"`
	PaidAt        *time.Time    `gorm:"column:paid_at"`
}

// Refund represents a processed refund, persisted for the audit trail
type Refund struct {
	BaseModel
	AgencyID        uuid.UUID `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID         uuid.UUID `gorm:"type:uuid;not null;index;column:quote_id"`
	PaymentID       uuid.UUID `gorm:"type:uuid;not null;index;column:payment_id"`
	GatewayRefundID string    `gorm:"type:varchar(200);column:gateway_refund_id"`
	Amount          float64   `gorm:"type:decimal(15,2);not null"`
	Percentage      float64   `gorm:"type:decimal(5,2);not null"`
	ServiceFee      float64   `gorm:"type:decimal(15,2);not null;column:service_fee"`
	ClientReceives  float64   `gorm:"type:decimal(15,2);not null;column:client_receives"`
	Reason          string    `gorm:"type:varchar(500)"`
	Breakdown       string    `gorm:"type:jsonb"`
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetQuote      ActivityTargetType = "Quote"
	ActivityTargetBooking    ActivityTargetType = "Booking"
	ActivityTargetPayment    ActivityTargetType = "Payment"
	ActivityTargetCommission ActivityTargetType = "Commission"
	ActivityTargetInvoice    ActivityTargetType = "Invoice"
	ActivityTargetTask       ActivityTargetType = "Task"
)

// IsValid checks if the activity target type is valid
func (at ActivityTargetType) IsValid() bool {
	switch at {
	case ActivityTargetQuote, ActivityTargetBooking, ActivityTargetPayment,
		ActivityTargetCommission, ActivityTargetInvoice, ActivityTargetTask:
		return true
	}
	return false
}

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	AgencyID   uuid.UUID          `gorm:"type:uuid;not null;index;column:agency_id"`
	TargetType ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID   uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title      string             `gorm:"type:varchar(200);not null"`
	Body       string             `gorm:"type:varchar(2000)"`
	OccurredAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	ActorID    string             `gorm:"type:varchar(100);column:actor_id"`
	ActorName  string             `gorm:"type:varchar(200);column:actor_name"`
}

// Document represents an uploaded supplier confirmation or voucher
type Document struct {
	BaseModel
	AgencyID    uuid.UUID  `gorm:"type:uuid;not null;index;column:agency_id"`
	QuoteID     *uuid.UUID `gorm:"type:uuid;index;column:quote_id"`
	BookingID   *uuid.UUID `gorm:"type:uuid;index;column:booking_id"`
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique;column:storage_path"`
}

// NumberSequence provides per-agency sequential numbering for quotes and invoices
type NumberSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AgencyID  uuid.UUID `gorm:"type:uuid;not null;index;column:agency_id"`
	Kind      string    `gorm:"type:varchar(50);not null"`
	Prefix    string    `gorm:"type:varchar(20);not null"`
	NextValue int64     `gorm:"not null;default:1;column:next_value"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (NumberSequence) TableName() string {
	return "number_sequences"
}
