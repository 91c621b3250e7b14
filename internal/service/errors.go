package service

import "errors"

// Sentinel errors returned by services. Handlers map these to HTTP statuses.
var (
	ErrQuoteNotFound      = errors.New("quote not found")
	ErrQuoteItemNotFound  = errors.New("quote item not found")
	ErrContactNotFound    = errors.New("contact not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrCommissionNotFound = errors.New("commission not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrDocumentNotFound   = errors.New("document not found")

	// ErrVersionConflict means a concurrent writer bumped the quote's version
	// between our read and write. The caller should re-read and retry.
	ErrVersionConflict = errors.New("quote was modified concurrently")

	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrQuoteNotEditable        = errors.New("quote can no longer be edited")
	ErrQuoteHasNoItems         = errors.New("quote has no items")
	ErrPaymentMismatch         = errors.New("payment does not belong to quote")
	ErrAlreadyRefunded         = errors.New("payment already refunded")
	ErrNothingPaid             = errors.New("no paid amount to refund")
	ErrZeroRefund              = errors.New("cancellation policy yields no refund")
	ErrTaskNotExecutable       = errors.New("task is not executable via supplier api")
	ErrTaskAlreadyCompleted    = errors.New("task already completed")
	ErrTaskMissingLinkage      = errors.New("task is missing its quote linkage")
	ErrSupplierBooking         = errors.New("supplier booking failed")
	ErrItemAlreadyBooked       = errors.New("item already booked")
	ErrInvoiceExists           = errors.New("invoice already exists for quote")
)
