package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskService exposes booking tasks for the work queue views. Execution
// itself goes through BookingExecutionService.
type TaskService struct {
	taskRepo *repository.TaskRepository
	logger   *zap.Logger
}

func NewTaskService(taskRepo *repository.TaskRepository, logger *zap.Logger) *TaskService {
	return &TaskService{taskRepo: taskRepo, logger: logger}
}

// GetByID returns a task with its attempt history
func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// List returns a paginated task list with optional filters
func (s *TaskService) List(ctx context.Context, page, pageSize int, status *domain.TaskStatus, quoteID *uuid.UUID) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 50
	}

	tasks, total, err := s.taskRepo.List(ctx, page, pageSize, status, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToTaskDTOs(tasks),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// CompleteManual marks a manual (offline) task as done after the agent has
// booked with the supplier by hand
func (s *TaskService) CompleteManual(ctx context.Context, id uuid.UUID, confirmationNumber string) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task.ExecutionType != domain.TaskExecutionManual {
		return nil, ErrInvalidStatusTransition
	}
	if task.Status == domain.TaskStatusCompleted {
		return nil, ErrTaskAlreadyCompleted
	}

	now := time.Now()
	task.Status = domain.TaskStatusCompleted
	task.CompletedAt = &now
	if confirmationNumber != "" {
		task.Description = fmt.Sprintf("Confirmed manually: %s", confirmationNumber)
	}
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Info("Manual task completed",
		zap.String("taskId", task.ID.String()),
		zap.String("quoteId", task.QuoteID.String()))

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}
