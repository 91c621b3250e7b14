package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteService owns the quote lifecycle: wizard CRUD, send/accept/reject/
// cancel transitions, and the accept cascade that creates the operational
// booking records.
type QuoteService struct {
	quoteRepo      *repository.QuoteRepository
	contactRepo    *repository.ContactRepository
	bookingRepo    *repository.BookingRepository
	taskRepo       *repository.TaskRepository
	expenseRepo    *repository.ExpenseRepository
	commissionRepo *repository.CommissionRepository
	activityRepo   *repository.ActivityRepository
	sequenceRepo   *repository.NumberSequenceRepository

	// defaultCommissionRate applies when an accept request does not carry
	// its own rate. Percent, not a fraction.
	defaultCommissionRate float64

	logger *zap.Logger
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	contactRepo *repository.ContactRepository,
	bookingRepo *repository.BookingRepository,
	taskRepo *repository.TaskRepository,
	expenseRepo *repository.ExpenseRepository,
	commissionRepo *repository.CommissionRepository,
	activityRepo *repository.ActivityRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	defaultCommissionRate float64,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:             quoteRepo,
		contactRepo:           contactRepo,
		bookingRepo:           bookingRepo,
		taskRepo:              taskRepo,
		expenseRepo:           expenseRepo,
		commissionRepo:        commissionRepo,
		activityRepo:          activityRepo,
		sequenceRepo:          sequenceRepo,
		defaultCommissionRate: defaultCommissionRate,
		logger:                logger,
	}
}

// Create creates a draft quote with its items
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, errors.New("user context not found")
	}

	if _, err := s.contactRepo.GetByID(ctx, req.ContactID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "NOK"
	}

	quote := &domain.Quote{
		AgencyID:   userCtx.AgencyID,
		Title:      req.Title,
		ContactID:  req.ContactID,
		AgentID:    userCtx.UserID,
		AgentName:  userCtx.DisplayName,
		Status:     domain.QuoteStatusDraft,
		Travelers:  pq.StringArray(req.Travelers),
		Currency:   currency,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		Items:      buildQuoteItems(req.Items),
	}
	quote.TotalCost = sumClientTotal(quote.Items)
	quote.RemainingBalance = quote.TotalCost

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	quote, err := s.quoteRepo.GetByID(ctx, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	s.logActivity(ctx, quote.ID, "Quote created",
		fmt.Sprintf("Quote '%s' created with %d items", quote.Title, len(quote.Items)))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetByID returns a single quote with items and contact
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns a paginated quote list with optional filters
func (s *QuoteService) List(ctx context.Context, page, pageSize int, status *domain.QuoteStatus, contactID *uuid.UUID, agentID string, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 50
	}

	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, status, contactID, agentID, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToQuoteDTOs(quotes),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Update replaces the editable fields and the item list of a draft or sent
// quote. The items write goes through the version guard so a concurrent
// booking execution cannot be clobbered.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusDraft && quote.Status != domain.QuoteStatusSent {
		return nil, ErrQuoteNotEditable
	}

	items := buildQuoteItems(req.Items)
	quote.Title = req.Title
	quote.Travelers = pq.StringArray(req.Travelers)
	quote.ValidUntil = req.ValidUntil
	quote.Notes = req.Notes
	quote.TotalCost = sumClientTotal(items)
	quote.RemainingBalance = quote.TotalCost - quote.PaidAmount

	if err := s.quoteRepo.ReplaceItemsVersioned(ctx, quote, quote.Version, items); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	quote, err = s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Delete removes a draft quote. Quotes past draft keep their audit trail.
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.Status != domain.QuoteStatusDraft {
		return ErrQuoteNotEditable
	}
	return s.quoteRepo.Delete(ctx, id)
}

// Search finds quotes by title or number
func (s *QuoteService) Search(ctx context.Context, query string, limit int) ([]domain.QuoteDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	quotes, err := s.quoteRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search quotes: %w", err)
	}
	return mapper.ToQuoteDTOs(quotes), nil
}

// Send transitions a draft quote to sent and assigns its quote number
func (s *QuoteService) Send(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusDraft {
		return nil, ErrInvalidStatusTransition
	}
	if len(quote.Items) == 0 {
		return nil, ErrQuoteHasNoItems
	}

	if quote.QuoteNumber == "" {
		number, err := s.sequenceRepo.NextNumber(ctx, quote.AgencyID, "quote", "Q")
		if err != nil {
			return nil, fmt.Errorf("failed to assign quote number: %w", err)
		}
		quote.QuoteNumber = number
	}

	now := time.Now()
	quote.Status = domain.QuoteStatusSent
	quote.SentAt = &now
	if quote.ValidUntil == nil {
		validUntil := now.AddDate(0, 0, 30)
		quote.ValidUntil = &validUntil
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	s.logActivity(ctx, quote.ID, "Quote sent",
		fmt.Sprintf("Quote %s sent to client", quote.QuoteNumber))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Accept transitions a sent quote to accepted and creates the operational
// records: the booking with a normalized item copy, a task per item, an
// expense per item, and a pending commission for the agent.
func (s *QuoteService) Accept(ctx context.Context, id uuid.UUID, req *domain.AcceptQuoteRequest) (*domain.AcceptQuoteResponse, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusSent {
		return nil, ErrInvalidStatusTransition
	}
	if len(quote.Items) == 0 {
		return nil, ErrQuoteHasNoItems
	}

	reference, err := s.sequenceRepo.NextNumber(ctx, quote.AgencyID, "booking", "B")
	if err != nil {
		return nil, fmt.Errorf("failed to assign booking reference: %w", err)
	}

	booking := &domain.Booking{
		AgencyID:  quote.AgencyID,
		QuoteID:   quote.ID,
		Reference: reference,
		Status:    domain.BookingStatusPending,
		Items:     make([]domain.BookingItem, 0, len(quote.Items)),
	}
	for _, item := range quote.Items {
		booking.Items = append(booking.Items, domain.BookingItem{
			QuoteItemID:    item.ID,
			Name:           item.Name,
			Type:           item.Type,
			SupplierSource: item.SupplierSource,
			BookingStatus:  domain.ItemNotBooked,
			Price:          item.Price,
			ClientPrice:    item.ClientPrice,
		})
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	for _, item := range quote.Items {
		executionType := domain.TaskExecutionManual
		if item.SupplierSource == domain.SupplierSourceAPI {
			executionType = domain.TaskExecutionAPI
		}
		task := &domain.Task{
			AgencyID:      quote.AgencyID,
			QuoteID:       quote.ID,
			ItemID:        item.ID,
			BookingID:     &booking.ID,
			Title:         fmt.Sprintf("Book %s: %s", item.Type, item.Name),
			ExecutionType: executionType,
			SupplierCode:  item.SupplierCode,
			Status:        domain.TaskStatusPending,
			Attempts:      domain.AttemptLog{},
		}
		if err := s.taskRepo.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to create booking task: %w", err)
		}

		expense := &domain.Expense{
			AgencyID:    quote.AgencyID,
			QuoteID:     quote.ID,
			BookingID:   &booking.ID,
			Category:    "supplier",
			Subcategory: item.Type,
			Description: item.Name,
			Amount:      item.Price,
			Currency:    quote.Currency,
			Status:      domain.ExpenseStatusPending,
		}
		if err := s.expenseRepo.Create(ctx, expense); err != nil {
			return nil, fmt.Errorf("failed to create expense: %w", err)
		}
	}

	rate := s.defaultCommissionRate
	if req != nil && req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	commission := &domain.Commission{
		AgencyID:  quote.AgencyID,
		QuoteID:   quote.ID,
		BookingID: &booking.ID,
		AgentID:   quote.AgentID,
		AgentName: quote.AgentName,
		Amount:    round2(quote.TotalCost * rate / 100),
		Rate:      rate,
		Status:    domain.CommissionPending,
	}
	if err := s.commissionRepo.Create(ctx, commission); err != nil {
		return nil, fmt.Errorf("failed to create commission: %w", err)
	}

	quote.Status = domain.QuoteStatusAccepted
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}

	s.logActivity(ctx, quote.ID, "Quote accepted",
		fmt.Sprintf("Quote %s accepted, booking %s created", quote.QuoteNumber, booking.Reference))

	quoteDTO := mapper.ToQuoteDTO(quote)
	bookingDTO := mapper.ToBookingDTO(booking)
	return &domain.AcceptQuoteResponse{
		Quote:   &quoteDTO,
		Booking: &bookingDTO,
	}, nil
}

// Reject transitions a sent quote to rejected
func (s *QuoteService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.QuoteDTO, error) {
	return s.transition(ctx, id, domain.QuoteStatusSent, domain.QuoteStatusRejected, "Quote rejected", reason)
}

// Cancel transitions a quote to its terminal cancelled status. Draft, sent
// and accepted quotes can be cancelled; booked quotes go through the refund
// flow instead.
func (s *QuoteService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status.IsTerminal() || quote.Status == domain.QuoteStatusRejected {
		return nil, ErrInvalidStatusTransition
	}

	quote.Status = domain.QuoteStatusCancelled
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}

	s.logActivity(ctx, quote.ID, "Quote cancelled", reason)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) transition(ctx context.Context, id uuid.UUID, from, to domain.QuoteStatus, title, body string) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != from {
		return nil, ErrInvalidStatusTransition
	}

	quote.Status = to
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}

	s.logActivity(ctx, quote.ID, title, body)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) logActivity(ctx context.Context, quoteID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetQuote,
		TargetID:   quoteID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.AgencyID = userCtx.AgencyID
		activity.ActorID = userCtx.UserID
		activity.ActorName = userCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err), zap.String("quoteId", quoteID.String()))
	}
}

func buildQuoteItems(inputs []domain.QuoteItemInput) []domain.QuoteItem {
	items := make([]domain.QuoteItem, 0, len(inputs))
	for _, in := range inputs {
		source := in.SupplierSource
		if source == "" {
			source = domain.SupplierSourceOffline
		}
		items = append(items, domain.QuoteItem{
			Type:               in.Type,
			Name:               in.Name,
			StartDate:          in.StartDate,
			EndDate:            in.EndDate,
			SupplierSource:     source,
			SupplierCode:       in.SupplierCode,
			Price:              in.Price,
			ClientPrice:        in.ClientPrice,
			BookingStatus:      domain.ItemNotBooked,
			CancellationPolicy: in.CancellationPolicy,
		})
	}
	return items
}

func sumClientTotal(items []domain.QuoteItem) float64 {
	total := 0.0
	for i := range items {
		total += items[i].PaidValue()
	}
	return round2(total)
}
