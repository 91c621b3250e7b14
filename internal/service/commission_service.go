package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type commissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Commission, error)
	ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.Commission, error)
	List(ctx context.Context, page, pageSize int, status *domain.CommissionStatus, agentID string) ([]domain.Commission, int64, error)
	Update(ctx context.Context, commission *domain.Commission) error
}

type activityStore interface {
	Create(ctx context.Context, activity *domain.Activity) error
}

// CommissionService manages agent commission payouts and the refund-driven
// clawback.
type CommissionService struct {
	commissionRepo commissionStore
	activityRepo   activityStore
	logger         *zap.Logger
}

func NewCommissionService(
	commissionRepo *repository.CommissionRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// GetByID returns a single commission
func (s *CommissionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CommissionDTO, error) {
	commission, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}
	dto := mapper.ToCommissionDTO(commission)
	return &dto, nil
}

// List returns a paginated commission list with optional filters
func (s *CommissionService) List(ctx context.Context, page, pageSize int, status *domain.CommissionStatus, agentID string) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 50
	}

	commissions, total, err := s.commissionRepo.List(ctx, page, pageSize, status, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToCommissionDTOs(commissions),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Approve transitions a pending commission to approved
func (s *CommissionService) Approve(ctx context.Context, id uuid.UUID, notes string) (*domain.CommissionDTO, error) {
	return s.transition(ctx, id, []domain.CommissionStatus{domain.CommissionPending}, domain.CommissionApproved, "Commission approved", notes)
}

// MarkPaid transitions an approved commission to paid
func (s *CommissionService) MarkPaid(ctx context.Context, id uuid.UUID, notes string) (*domain.CommissionDTO, error) {
	commission, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}

	if commission.Status != domain.CommissionApproved {
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now()
	commission.Status = domain.CommissionPaid
	commission.PaidAt = &now
	if notes != "" {
		commission.Notes = notes
	}
	if err := s.commissionRepo.Update(ctx, commission); err != nil {
		return nil, fmt.Errorf("failed to update commission: %w", err)
	}

	s.logActivity(ctx, commission.ID, "Commission paid", notes)

	dto := mapper.ToCommissionDTO(commission)
	return &dto, nil
}

// Dispute marks a commission as disputed. Disputed rows are frozen: neither
// payout nor clawback touches them until the dispute is resolved by hand.
func (s *CommissionService) Dispute(ctx context.Context, id uuid.UUID, notes string) (*domain.CommissionDTO, error) {
	return s.transition(ctx, id,
		[]domain.CommissionStatus{domain.CommissionPending, domain.CommissionApproved, domain.CommissionPaid},
		domain.CommissionDisputed, "Commission disputed", notes)
}

// ApplyClawback walks every commission tied to the quote and transitions
// the rows representing money paid out or queued for payout to clawed_back.
// Approved and disputed rows are deliberately left untouched.
//
// Best effort by contract: the caller has already committed the refund, so
// failures here are logged and swallowed rather than propagated.
func (s *CommissionService) ApplyClawback(ctx context.Context, quoteID uuid.UUID, amount float64) {
	commissions, err := s.commissionRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		s.logger.Error("failed to fetch commissions for clawback",
			zap.Error(err),
			zap.String("quoteId", quoteID.String()))
		return
	}

	now := time.Now()
	clawed := 0
	for i := range commissions {
		commission := &commissions[i]
		if !commission.Status.IsClawbackEligible() {
			continue
		}

		previous := commission.Status
		commission.Status = domain.CommissionClawedBack
		commission.ClawedBackAt = &now
		if err := s.commissionRepo.Update(ctx, commission); err != nil {
			s.logger.Error("failed to claw back commission",
				zap.Error(err),
				zap.String("commissionId", commission.ID.String()),
				zap.String("quoteId", quoteID.String()))
			continue
		}
		clawed++

		s.logActivity(ctx, commission.ID, "Commission clawed back",
			fmt.Sprintf("Status %s -> %s after refund (clawback %.2f)", previous, commission.Status, amount))
	}

	s.logger.Info("Commission clawback applied",
		zap.String("quoteId", quoteID.String()),
		zap.Float64("amount", amount),
		zap.Int("rowsTransitioned", clawed),
		zap.Int("rowsTotal", len(commissions)))
}

func (s *CommissionService) transition(ctx context.Context, id uuid.UUID, from []domain.CommissionStatus, to domain.CommissionStatus, title, notes string) (*domain.CommissionDTO, error) {
	commission, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, fmt.Errorf("failed to get commission: %w", err)
	}

	allowed := false
	for _, status := range from {
		if commission.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusTransition
	}

	commission.Status = to
	if notes != "" {
		commission.Notes = notes
	}
	if err := s.commissionRepo.Update(ctx, commission); err != nil {
		return nil, fmt.Errorf("failed to update commission: %w", err)
	}

	s.logActivity(ctx, commission.ID, title, notes)

	dto := mapper.ToCommissionDTO(commission)
	return &dto, nil
}

func (s *CommissionService) logActivity(ctx context.Context, commissionID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetCommission,
		TargetID:   commissionID,
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
		s.logger.Warn("failed to log activity", zap.Error(err), zap.String("commissionId", commissionID.String()))
	}
}
