package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/mapper"
	"github.com/wanderly/agency-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpenseService tracks supplier costs. Rows are created by the quote
// accept cascade and flipped by booking execution; this service covers the
// manual corrections.
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	logger      *zap.Logger
}

func NewExpenseService(expenseRepo *repository.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo, logger: logger}
}

// GetByID returns a single expense
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExpenseDTO, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}

// List returns a paginated expense list with optional filters
func (s *ExpenseService) List(ctx context.Context, page, pageSize int, status *domain.ExpenseStatus, quoteID *uuid.UUID) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > repository.MaxPageSize {
		pageSize = 50
	}

	expenses, total, err := s.expenseRepo.List(ctx, page, pageSize, status, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       mapper.ToExpenseDTOs(expenses),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus sets an expense's status by hand, e.g. cancelling the cost
// of an item the supplier never confirmed
func (s *ExpenseService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus) (*domain.ExpenseDTO, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.Status = status
	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.logger.Info("Expense status updated",
		zap.String("expenseId", expense.ID.String()),
		zap.String("status", string(status)))

	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}
