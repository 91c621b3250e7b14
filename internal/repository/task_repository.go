package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID loads a task with its quote and the quote's items, which the
// booking execution path always needs together
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	query := r.db.WithContext(ctx).
		Preload("Quote").
		Preload("Quote.Items").
		Where("id = ?", id)
	query = ApplyAgencyFilter(ctx, query)
	err := query.First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, page, pageSize int, status *domain.TaskStatus, quoteID *uuid.UUID) ([]domain.Task, int64, error) {
	var tasks []domain.Task
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Task{})
	query = ApplyAgencyFilter(ctx, query)

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if quoteID != nil {
		query = query.Where("quote_id = ?", *quoteID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at ASC").Find(&tasks).Error

	return tasks, total, err
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// CountPending returns the number of tasks still awaiting execution
func (r *TaskRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("status = ?", domain.TaskStatusPending)
	query = ApplyAgencyFilter(ctx, query)
	err := query.Count(&count).Error
	return count, err
}
