package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RefundRule is one tier of a cancellation policy: cancelling at least
// DaysBeforeTravel days ahead of the travel date refunds RefundPercentage
// of the amount paid.
type RefundRule struct {
	DaysBeforeTravel int     `json:"daysBeforeTravel"`
	RefundPercentage float64 `json:"refundPercentage"`
}

// CancellationPolicy describes the refund terms attached to a quote item.
// Exactly one of the three forms is normally set: a non-refundable flag, a
// free-cancellation deadline, or a tiered rule list. An item without a policy
// falls back to the calculator's default schedule.
type CancellationPolicy struct {
	NonRefundable         bool         `json:"nonRefundable,omitempty"`
	FreeCancellationUntil *time.Time   `json:"freeCancellationUntil,omitempty"`
	RefundRules           []RefundRule `json:"refundRules,omitempty"`
}

// Value implements driver.Valuer so the policy is stored as JSONB
func (p CancellationPolicy) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner
func (p *CancellationPolicy) Scan(value interface{}) error {
	if value == nil {
		*p = CancellationPolicy{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into CancellationPolicy", value)
	}
}

// BookingAttempt is one failed supplier-booking attempt recorded on a task
type BookingAttempt struct {
	At    time.Time `json:"at"`
	Error string    `json:"error"`
}

// AttemptLog is the append-only history of failed booking attempts for a
// task, stored as JSONB. It replaces the unbounded free-text failure notes
// the task description used to accumulate.
type AttemptLog []BookingAttempt

// Value implements driver.Valuer
func (l AttemptLog) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(AttemptLog{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *AttemptLog) Scan(value interface{}) error {
	if value == nil {
		*l = AttemptLog{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into AttemptLog", value)
	}
}

// Append returns the log with a new attempt added
func (l AttemptLog) Append(at time.Time, errMsg string) AttemptLog {
	return append(l, BookingAttempt{At: at, Error: errMsg})
}
