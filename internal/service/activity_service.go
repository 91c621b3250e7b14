package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
)

// ActivityService reads the audit trail written by the other services
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, logger: logger}
}

// ListByTarget returns the newest activities for one quote, booking, or
// commission
func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.ActivityDTO, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	activities, err := s.activityRepo.ListByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return mapper.ToActivityDTOs(activities), nil
}

// ListRecent returns the agency-wide activity feed
func (s *ActivityService) ListRecent(ctx context.Context, limit int) ([]domain.ActivityDTO, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	activities, err := s.activityRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return mapper.ToActivityDTOs(activities), nil
}
