package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/internal/supplier"
)

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

type fakeTaskStore struct {
	tasks   map[uuid.UUID]*domain.Task
	updates []*domain.Task
}

func (f *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	f.updates = append(f.updates, task)
	return nil
}

type fakeQuoteStore struct {
	itemWrites   []*domain.QuoteItem
	statusWrites []domain.QuoteStatus
	staleVersion bool
	gotVersion   int64
}

func (f *fakeQuoteStore) UpdateItemVersioned(_ context.Context, _ uuid.UUID, readVersion int64, item *domain.QuoteItem) error {
	f.gotVersion = readVersion
	if f.staleVersion {
		return repository.ErrStaleVersion
	}
	f.itemWrites = append(f.itemWrites, item)
	return nil
}

func (f *fakeQuoteStore) UpdateStatus(_ context.Context, _ uuid.UUID, status domain.QuoteStatus) error {
	f.statusWrites = append(f.statusWrites, status)
	return nil
}

type fakeBookingStore struct {
	booking        *domain.Booking
	items          []domain.BookingItem
	itemUpdates    []*domain.BookingItem
	bookingUpdates []*domain.Booking
}

func (f *fakeBookingStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.booking, nil
}

func (f *fakeBookingStore) FindItemsByName(_ context.Context, bookingID uuid.UUID, name string) ([]domain.BookingItem, error) {
	var matches []domain.BookingItem
	for _, it := range f.items {
		if it.BookingID == bookingID && it.Name == name {
			matches = append(matches, it)
		}
	}
	return matches, nil
}

func (f *fakeBookingStore) ListItems(_ context.Context, bookingID uuid.UUID) ([]domain.BookingItem, error) {
	var items []domain.BookingItem
	for _, it := range f.items {
		if it.BookingID == bookingID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (f *fakeBookingStore) UpdateItem(_ context.Context, item *domain.BookingItem) error {
	f.itemUpdates = append(f.itemUpdates, item)
	for i := range f.items {
		if f.items[i].ID == item.ID {
			f.items[i] = *item
		}
	}
	return nil
}

func (f *fakeBookingStore) Update(_ context.Context, booking *domain.Booking) error {
	f.bookingUpdates = append(f.bookingUpdates, booking)
	return nil
}

type fakeExpenseStore struct {
	expenses []domain.Expense
	updates  []*domain.Expense
}

func (f *fakeExpenseStore) FindByQuoteAndSubcategory(_ context.Context, quoteID uuid.UUID, subcategory domain.ItemType) ([]domain.Expense, error) {
	var matches []domain.Expense
	for _, e := range f.expenses {
		if e.QuoteID == quoteID && e.Subcategory == subcategory {
			matches = append(matches, e)
		}
	}
	return matches, nil
}

func (f *fakeExpenseStore) Update(_ context.Context, expense *domain.Expense) error {
	f.updates = append(f.updates, expense)
	return nil
}

type fakeSupplier struct {
	result    *supplier.BookingResult
	err       error
	bookCalls int
}

func (f *fakeSupplier) BookItem(_ context.Context, _ *domain.QuoteItem, _ *domain.Quote) (*supplier.BookingResult, error) {
	f.bookCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSupplier) BuildPayload(item *domain.QuoteItem, quote *domain.Quote) interface{} {
	return map[string]string{"item": item.Name, "reference": quote.QuoteNumber}
}

// ----------------------------------------------------------------------------
// Fixture
// ----------------------------------------------------------------------------

type executionFixture struct {
	svc      *BookingExecutionService
	tasks    *fakeTaskStore
	quotes   *fakeQuoteStore
	bookings *fakeBookingStore
	expenses *fakeExpenseStore
	supplier *fakeSupplier

	task      *domain.Task
	quote     *domain.Quote
	bookingID uuid.UUID
}

func (fx *executionFixture) writeCount() int {
	return len(fx.tasks.updates) +
		len(fx.quotes.itemWrites) +
		len(fx.quotes.statusWrites) +
		len(fx.bookings.itemUpdates) +
		len(fx.bookings.bookingUpdates) +
		len(fx.expenses.updates)
}

// newExecutionFixture builds a quote with two items, one already booked,
// and a pending api task for the other
func newExecutionFixture(t *testing.T) *executionFixture {
	t.Helper()

	quoteID := uuid.New()
	bookingID := uuid.New()
	itemID := uuid.New()
	siblingID := uuid.New()

	quote := &domain.Quote{
		BaseModel:   domain.BaseModel{ID: quoteID},
		QuoteNumber: "Q-2026-000042",
		Status:      domain.QuoteStatusAccepted,
		Version:     3,
		Items: []domain.QuoteItem{
			{
				BaseModel:      domain.BaseModel{ID: itemID},
				QuoteID:        quoteID,
				Type:           domain.ItemTypeHotel,
				Name:           "Hotel Aurora",
				StartDate:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				SupplierSource: domain.SupplierSourceAPI,
				BookingStatus:  domain.ItemNotBooked,
			},
			{
				BaseModel:      domain.BaseModel{ID: siblingID},
				QuoteID:        quoteID,
				Type:           domain.ItemTypeFlight,
				Name:           "Flight OSL-TOS",
				StartDate:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				SupplierSource: domain.SupplierSourceAPI,
				BookingStatus:  domain.ItemBooked,
			},
		},
	}

	task := &domain.Task{
		BaseModel:     domain.BaseModel{ID: uuid.New()},
		QuoteID:       quoteID,
		Quote:         quote,
		ItemID:        itemID,
		BookingID:     &bookingID,
		ExecutionType: domain.TaskExecutionAPI,
		Status:        domain.TaskStatusPending,
		Attempts:      domain.AttemptLog{},
	}

	bookings := &fakeBookingStore{
		booking: &domain.Booking{
			BaseModel: domain.BaseModel{ID: bookingID},
			QuoteID:   quoteID,
			Status:    domain.BookingStatusPending,
		},
		items: []domain.BookingItem{
			{BaseModel: domain.BaseModel{ID: uuid.New()}, BookingID: bookingID, QuoteItemID: itemID, Name: "Hotel Aurora", Type: domain.ItemTypeHotel, BookingStatus: domain.ItemNotBooked},
			{BaseModel: domain.BaseModel{ID: uuid.New()}, BookingID: bookingID, QuoteItemID: siblingID, Name: "Flight OSL-TOS", Type: domain.ItemTypeFlight, BookingStatus: domain.ItemBooked},
		},
	}

	expenses := &fakeExpenseStore{
		expenses: []domain.Expense{
			{BaseModel: domain.BaseModel{ID: uuid.New()}, QuoteID: quoteID, Subcategory: domain.ItemTypeHotel, Status: domain.ExpenseStatusPending},
			{BaseModel: domain.BaseModel{ID: uuid.New()}, QuoteID: quoteID, Subcategory: domain.ItemTypeFlight, Status: domain.ExpenseStatusBooked},
		},
	}

	fx := &executionFixture{
		tasks:     &fakeTaskStore{tasks: map[uuid.UUID]*domain.Task{task.ID: task}},
		quotes:    &fakeQuoteStore{},
		bookings:  bookings,
		expenses:  expenses,
		supplier:  &fakeSupplier{result: &supplier.BookingResult{ConfirmationNumber: "CONF-789"}},
		task:      task,
		quote:     quote,
		bookingID: bookingID,
	}
	fx.svc = &BookingExecutionService{
		tasks:    fx.tasks,
		quotes:   fx.quotes,
		bookings: fx.bookings,
		expenses: fx.expenses,
		supplier: fx.supplier,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC) },
	}
	return fx
}

// ----------------------------------------------------------------------------
// Tests
// ----------------------------------------------------------------------------

func TestExecute_TaskNotFound(t *testing.T) {
	fx := newExecutionFixture(t)

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: uuid.New()})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Zero(t, fx.writeCount())
}

func TestExecute_ManualTaskRejected(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.task.ExecutionType = domain.TaskExecutionManual

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	assert.ErrorIs(t, err, ErrTaskNotExecutable)
	assert.Zero(t, fx.writeCount(), "rejected execution must perform zero writes")
	assert.Zero(t, fx.supplier.bookCalls)
}

func TestExecute_CompletedTaskRejected(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.task.Status = domain.TaskStatusCompleted

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	assert.ErrorIs(t, err, ErrTaskAlreadyCompleted)
	assert.Zero(t, fx.writeCount())
}

func TestExecute_ItemNotFound(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.task.ItemID = uuid.New()

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	assert.ErrorIs(t, err, ErrQuoteItemNotFound)
	assert.Zero(t, fx.writeCount())
}

func TestExecute_PreviewIsReadOnly(t *testing.T) {
	fx := newExecutionFixture(t)

	resp, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{
		TaskID: fx.task.ID,
		Action: domain.TaskActionPreview,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, domain.TaskActionPreview, resp.Action)
	assert.NotNil(t, resp.Payload)
	assert.Empty(t, resp.ConfirmationNumber)

	assert.Zero(t, fx.supplier.bookCalls, "preview must not call the supplier")
	assert.Zero(t, fx.writeCount(), "preview must perform zero writes")
	assert.Equal(t, domain.TaskStatusPending, fx.task.Status)
}

func TestExecute_SupplierFailureLeavesTaskPending(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.supplier.err = errors.New("no availability for requested dates")

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSupplierBooking)

	assert.Equal(t, domain.TaskStatusPending, fx.task.Status)
	require.Len(t, fx.task.Attempts, 1)
	assert.Equal(t, "no availability for requested dates", fx.task.Attempts[0].Error)
	assert.False(t, fx.task.Attempts[0].At.IsZero())

	// Only the attempt-log write happens; no cascade
	assert.Len(t, fx.tasks.updates, 1)
	assert.Empty(t, fx.quotes.itemWrites)
	assert.Empty(t, fx.bookings.itemUpdates)
	assert.Empty(t, fx.expenses.updates)
}

func TestExecute_RepeatedFailuresAppendAttempts(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.supplier.err = errors.New("timeout")

	for i := 0; i < 3; i++ {
		_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
		require.Error(t, err)
	}

	assert.Len(t, fx.task.Attempts, 3)
	assert.Equal(t, domain.TaskStatusPending, fx.task.Status)
}

func TestExecute_SuccessCascade(t *testing.T) {
	fx := newExecutionFixture(t)

	resp, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "CONF-789", resp.ConfirmationNumber)

	// (a) quote item rewritten under the version the coordinator read
	require.Len(t, fx.quotes.itemWrites, 1)
	written := fx.quotes.itemWrites[0]
	assert.Equal(t, domain.ItemBooked, written.BookingStatus)
	assert.Equal(t, "CONF-789", written.ConfirmationNumber)
	assert.NotNil(t, written.BookedAt)
	assert.Equal(t, int64(3), fx.quotes.gotVersion)

	// (b) booking item mirror updated
	require.Len(t, fx.bookings.itemUpdates, 1)
	assert.Equal(t, domain.ItemBooked, fx.bookings.itemUpdates[0].BookingStatus)
	assert.Equal(t, "CONF-789", fx.bookings.itemUpdates[0].ConfirmationNumber)

	// (c) pending expense of the item's type flipped
	require.Len(t, fx.expenses.updates, 1)
	assert.Equal(t, domain.ExpenseStatusBooked, fx.expenses.updates[0].Status)

	// (d) task completed
	assert.Equal(t, domain.TaskStatusCompleted, fx.task.Status)
	assert.NotNil(t, fx.task.CompletedAt)

	// (e) both siblings now booked, so the parents converge
	require.Len(t, fx.bookings.bookingUpdates, 1)
	assert.Equal(t, domain.BookingStatusBooked, fx.bookings.bookingUpdates[0].Status)
	assert.Equal(t, []domain.QuoteStatus{domain.QuoteStatusBooked}, fx.quotes.statusWrites)
}

func TestExecute_NoConvergenceWhileSiblingPending(t *testing.T) {
	fx := newExecutionFixture(t)
	// Sibling flight not yet booked
	for i := range fx.bookings.items {
		if fx.bookings.items[i].Type == domain.ItemTypeFlight {
			fx.bookings.items[i].BookingStatus = domain.ItemNotBooked
		}
	}

	resp, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// Item-level writes happen, but neither parent flips
	assert.Empty(t, fx.bookings.bookingUpdates, "booking must stay pending with an unbooked sibling")
	assert.Empty(t, fx.quotes.statusWrites, "quote must stay accepted with an unbooked sibling")
}

func TestExecute_AmbiguousNameMatchUpdatesFirst(t *testing.T) {
	fx := newExecutionFixture(t)
	// A second booking item with the same name
	fx.bookings.items = append(fx.bookings.items, domain.BookingItem{
		BaseModel: domain.BaseModel{ID: uuid.New()}, BookingID: fx.bookingID,
		Name: "Hotel Aurora", Type: domain.ItemTypeHotel, BookingStatus: domain.ItemNotBooked,
	})

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	require.NoError(t, err)

	require.Len(t, fx.bookings.itemUpdates, 1, "exactly one of the ambiguous matches is updated")
}

func TestExecute_VersionRaceDoesNotClobber(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.quotes.staleVersion = true

	resp, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	require.NoError(t, err)

	// The supplier booking stands and the caller sees success, but the
	// stale item write is refused instead of overwriting the winner's state.
	assert.True(t, resp.Success)
	assert.Empty(t, fx.quotes.itemWrites)
}

func TestExecute_AlreadyBookedItemRejected(t *testing.T) {
	fx := newExecutionFixture(t)
	fx.quote.Items[0].BookingStatus = domain.ItemBooked

	_, err := fx.svc.Execute(context.Background(), &domain.ExecuteTaskRequest{TaskID: fx.task.ID})
	assert.ErrorIs(t, err, ErrItemAlreadyBooked)
	assert.Zero(t, fx.writeCount())
}
