package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/reporting"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService aggregates the agency dashboard counters. Operational
// figures come from our own tables; recognized revenue comes from the
// finance warehouse when it is reachable.
type DashboardService struct {
	quoteRepo      *repository.QuoteRepository
	bookingRepo    *repository.BookingRepository
	taskRepo       *repository.TaskRepository
	invoiceRepo    *repository.InvoiceRepository
	commissionRepo *repository.CommissionRepository
	paymentRepo    *repository.PaymentRepository
	reporting      *reporting.Client
	logger         *zap.Logger
}

func NewDashboardService(
	quoteRepo *repository.QuoteRepository,
	bookingRepo *repository.BookingRepository,
	taskRepo *repository.TaskRepository,
	invoiceRepo *repository.InvoiceRepository,
	commissionRepo *repository.CommissionRepository,
	paymentRepo *repository.PaymentRepository,
	reportingClient *reporting.Client,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		quoteRepo:      quoteRepo,
		bookingRepo:    bookingRepo,
		taskRepo:       taskRepo,
		invoiceRepo:    invoiceRepo,
		commissionRepo: commissionRepo,
		paymentRepo:    paymentRepo,
		reporting:      reportingClient,
		logger:         logger,
	}
}

// GetMetrics returns the dashboard counters for the caller's agency. A
// warehouse failure degrades to local figures rather than failing the whole
// dashboard.
func (s *DashboardService) GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	metrics := &domain.DashboardMetrics{}

	openQuotes, err := s.quoteRepo.CountByStatus(ctx, domain.QuoteStatusDraft, domain.QuoteStatusSent)
	if err != nil {
		return nil, fmt.Errorf("failed to count open quotes: %w", err)
	}
	metrics.OpenQuotes = openQuotes

	inFlight, err := s.bookingRepo.CountByStatus(ctx, domain.BookingStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	metrics.BookingsInFlight = inFlight

	pendingTasks, err := s.taskRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	metrics.PendingTasks = pendingTasks

	unpaidInvoices, err := s.invoiceRepo.CountUnpaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	metrics.UnpaidInvoices = unpaidInvoices

	liability, err := s.commissionRepo.SumOutstanding(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum commission liability: %w", err)
	}
	metrics.CommissionLiability = liability

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	refunded, err := s.paymentRepo.SumRefundedSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to sum refunds: %w", err)
	}
	metrics.RefundedThisMonth = refunded

	s.addLedgerRevenue(ctx, metrics, monthStart, now)

	return metrics, nil
}

func (s *DashboardService) addLedgerRevenue(ctx context.Context, metrics *domain.DashboardMetrics, from, to time.Time) {
	if s.reporting == nil || !s.reporting.IsEnabled() {
		return
	}

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return
	}

	revenue, err := s.reporting.RecognizedRevenue(ctx, userCtx.AgencyID, from, to)
	if err != nil {
		s.logger.Warn("Warehouse revenue query failed, dashboard degrades to local figures",
			zap.Error(err))
		return
	}

	metrics.LedgerRevenue = revenue
	metrics.LedgerRevenueFromDW = true
}
