package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/internal/supplier"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Narrow store views used by the coordinator. Kept small so tests can
// assert exactly which writes a code path performs.

type executionTaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
}

type executionQuoteStore interface {
	UpdateItemVersioned(ctx context.Context, quoteID uuid.UUID, readVersion int64, item *domain.QuoteItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error
}

type executionBookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindItemsByName(ctx context.Context, bookingID uuid.UUID, name string) ([]domain.BookingItem, error)
	ListItems(ctx context.Context, bookingID uuid.UUID) ([]domain.BookingItem, error)
	UpdateItem(ctx context.Context, item *domain.BookingItem) error
	Update(ctx context.Context, booking *domain.Booking) error
}

type executionExpenseStore interface {
	FindByQuoteAndSubcategory(ctx context.Context, quoteID uuid.UUID, subcategory domain.ItemType) ([]domain.Expense, error)
	Update(ctx context.Context, expense *domain.Expense) error
}

// BookingExecutionService drives a booking task against the supplier API
// and cascades the result across the quote item, the booking item mirror,
// the expense, and the parent booking/quote statuses.
//
// The cascade steps are independent writes, not a transaction. Only the
// quote-item write is guarded (by the version column); the rest log on
// failure and the response still reports success, matching the flow's
// best-effort contract.
type BookingExecutionService struct {
	tasks    executionTaskStore
	quotes   executionQuoteStore
	bookings executionBookingStore
	expenses executionExpenseStore
	supplier supplier.Client
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingExecutionService(
	taskRepo *repository.TaskRepository,
	quoteRepo *repository.QuoteRepository,
	bookingRepo *repository.BookingRepository,
	expenseRepo *repository.ExpenseRepository,
	supplierClient supplier.Client,
	logger *zap.Logger,
) *BookingExecutionService {
	return &BookingExecutionService{
		tasks:    taskRepo,
		quotes:   quoteRepo,
		bookings: bookingRepo,
		expenses: expenseRepo,
		supplier: supplierClient,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs a booking task. action "preview" builds the exact supplier
// payload and returns it with zero writes; action "execute" (the default)
// places the booking and cascades on success.
//
// A supplier failure appends a structured attempt to the task and leaves it
// pending: retrying is exactly calling again.
func (s *BookingExecutionService) Execute(ctx context.Context, req *domain.ExecuteTaskRequest) (*domain.ExecuteTaskResponse, error) {
	task, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task.Status == domain.TaskStatusCompleted {
		return nil, ErrTaskAlreadyCompleted
	}
	if task.ExecutionType != domain.TaskExecutionAPI {
		return nil, ErrTaskNotExecutable
	}
	if task.Quote == nil {
		return nil, ErrTaskMissingLinkage
	}

	quote := task.Quote
	readVersion := quote.Version

	var item *domain.QuoteItem
	for i := range quote.Items {
		if quote.Items[i].ID == task.ItemID {
			item = &quote.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrQuoteItemNotFound
	}
	if item.BookingStatus == domain.ItemBooked {
		return nil, ErrItemAlreadyBooked
	}

	if req.Action == domain.TaskActionPreview {
		return &domain.ExecuteTaskResponse{
			Success: true,
			Action:  domain.TaskActionPreview,
			Payload: s.supplier.BuildPayload(item, quote),
		}, nil
	}

	result, err := s.supplier.BookItem(ctx, item, quote)
	if err != nil {
		s.recordFailedAttempt(ctx, task, err)
		return nil, fmt.Errorf("%w: %v", ErrSupplierBooking, err)
	}

	s.cascade(ctx, task, quote, item, readVersion, result.ConfirmationNumber)

	return &domain.ExecuteTaskResponse{
		Success:            true,
		ConfirmationNumber: result.ConfirmationNumber,
	}, nil
}

// recordFailedAttempt appends to the task's attempt log and leaves the task
// pending so it can be retried
func (s *BookingExecutionService) recordFailedAttempt(ctx context.Context, task *domain.Task, bookErr error) {
	task.Attempts = task.Attempts.Append(s.now(), bookErr.Error())
	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Error("failed to record booking attempt",
			zap.Error(err),
			zap.String("taskId", task.ID.String()))
	}
	s.logger.Warn("Supplier booking failed",
		zap.String("taskId", task.ID.String()),
		zap.String("quoteId", task.QuoteID.String()),
		zap.Int("attempts", len(task.Attempts)),
		zap.String("reason", bookErr.Error()))
}

// cascade applies the post-booking writes: quote item, booking item mirror,
// expense, task, and the convergence check on the parents
func (s *BookingExecutionService) cascade(ctx context.Context, task *domain.Task, quote *domain.Quote, item *domain.QuoteItem, readVersion int64, confirmation string) {
	now := s.now()

	item.BookingStatus = domain.ItemBooked
	item.ConfirmationNumber = confirmation
	item.BookedAt = &now
	if err := s.quotes.UpdateItemVersioned(ctx, quote.ID, readVersion, item); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			// Another writer won the race. The supplier booking stands, so
			// surface loudly rather than clobbering their write.
			s.logger.Error("quote item write lost version race after booking; item state needs reconciliation",
				zap.String("quoteId", quote.ID.String()),
				zap.String("itemId", item.ID.String()),
				zap.String("confirmationNumber", confirmation))
		} else {
			s.logger.Error("failed to persist booked quote item",
				zap.Error(err),
				zap.String("quoteId", quote.ID.String()),
				zap.String("itemId", item.ID.String()))
		}
	}

	if task.BookingID != nil {
		s.updateBookingItemMirror(ctx, *task.BookingID, item, confirmation)
	}

	s.updateExpense(ctx, quote.ID, item)

	task.Status = domain.TaskStatusCompleted
	task.CompletedAt = &now
	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Error("failed to mark task completed",
			zap.Error(err),
			zap.String("taskId", task.ID.String()))
	}

	if task.BookingID != nil {
		s.convergeBooking(ctx, *task.BookingID, quote.ID)
	}
}

// updateBookingItemMirror keeps the normalized booking item in sync. The
// join is by name, not id; ambiguity gets a loud warning and the first
// match wins.
func (s *BookingExecutionService) updateBookingItemMirror(ctx context.Context, bookingID uuid.UUID, item *domain.QuoteItem, confirmation string) {
	matches, err := s.bookings.FindItemsByName(ctx, bookingID, item.Name)
	if err != nil {
		s.logger.Error("failed to look up booking item mirror",
			zap.Error(err),
			zap.String("bookingId", bookingID.String()))
		return
	}
	if len(matches) == 0 {
		s.logger.Warn("no booking item matches quote item by name",
			zap.String("bookingId", bookingID.String()),
			zap.String("itemName", item.Name))
		return
	}
	if len(matches) > 1 {
		s.logger.Warn("multiple booking items match quote item by name, updating first",
			zap.String("bookingId", bookingID.String()),
			zap.String("itemName", item.Name),
			zap.Int("matches", len(matches)))
	}

	mirror := matches[0]
	mirror.BookingStatus = domain.ItemBooked
	mirror.ConfirmationNumber = confirmation
	if err := s.bookings.UpdateItem(ctx, &mirror); err != nil {
		s.logger.Error("failed to update booking item mirror",
			zap.Error(err),
			zap.String("bookingItemId", mirror.ID.String()))
	}
}

// updateExpense flips the matching supplier expense to booked. The match is
// by quote + item type; two items of the same type are ambiguous and get a
// loud warning.
func (s *BookingExecutionService) updateExpense(ctx context.Context, quoteID uuid.UUID, item *domain.QuoteItem) {
	expenses, err := s.expenses.FindByQuoteAndSubcategory(ctx, quoteID, item.Type)
	if err != nil {
		s.logger.Error("failed to look up expense for booked item",
			zap.Error(err),
			zap.String("quoteId", quoteID.String()),
			zap.String("itemType", string(item.Type)))
		return
	}

	var pending []domain.Expense
	for _, e := range expenses {
		if e.Status == domain.ExpenseStatusPending {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return
	}
	if len(pending) > 1 {
		s.logger.Warn("multiple pending expenses match item type, updating first",
			zap.String("quoteId", quoteID.String()),
			zap.String("itemType", string(item.Type)),
			zap.Int("matches", len(pending)))
	}

	expense := pending[0]
	expense.Status = domain.ExpenseStatusBooked
	if err := s.expenses.Update(ctx, &expense); err != nil {
		s.logger.Error("failed to update expense status",
			zap.Error(err),
			zap.String("expenseId", expense.ID.String()))
	}
}

// convergeBooking flips the booking and quote to booked once every booking
// item reports booked. A single remaining item keeps both parents as-is.
func (s *BookingExecutionService) convergeBooking(ctx context.Context, bookingID, quoteID uuid.UUID) {
	items, err := s.bookings.ListItems(ctx, bookingID)
	if err != nil {
		s.logger.Error("failed to list booking items for convergence check",
			zap.Error(err),
			zap.String("bookingId", bookingID.String()))
		return
	}
	if len(items) == 0 {
		return
	}
	for _, it := range items {
		if it.BookingStatus != domain.ItemBooked {
			return
		}
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		s.logger.Error("failed to load booking for convergence",
			zap.Error(err),
			zap.String("bookingId", bookingID.String()))
		return
	}

	now := s.now()
	booking.Status = domain.BookingStatusBooked
	booking.BookedAt = &now
	if err := s.bookings.Update(ctx, booking); err != nil {
		s.logger.Error("failed to mark booking as booked",
			zap.Error(err),
			zap.String("bookingId", bookingID.String()))
	}

	if err := s.quotes.UpdateStatus(ctx, quoteID, domain.QuoteStatusBooked); err != nil {
		s.logger.Error("failed to mark quote as booked",
			zap.Error(err),
			zap.String("quoteId", quoteID.String()))
	}

	s.logger.Info("All booking items confirmed, booking complete",
		zap.String("bookingId", bookingID.String()),
		zap.String("quoteId", quoteID.String()))
}
