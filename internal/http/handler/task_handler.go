package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/service"
	"go.uber.org/zap"
)

// TaskHandler handles HTTP requests for booking tasks
type TaskHandler struct {
	taskService      *service.TaskService
	executionService *service.BookingExecutionService
	logger           *zap.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *service.TaskService, executionService *service.BookingExecutionService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:      taskService,
		executionService: executionService,
		logger:           logger,
	}
}

// ListTasks godoc
// @Summary List tasks
// @Description Get paginated list of booking tasks with optional filters
// @Tags Tasks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(pending, completed)
// @Param quoteId query string false "Filter by quote ID"
// @Success 200 {object} domain.PaginatedResponse
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.TaskStatus
	if s := r.URL.Query().Get("status"); s != "" {
		ts := domain.TaskStatus(s)
		if !ts.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &ts
	}

	var quoteID *uuid.UUID
	if q := r.URL.Query().Get("quoteId"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid quoteId: must be a valid UUID")
			return
		}
		quoteID = &id
	}

	result, err := h.taskService.List(r.Context(), page, pageSize, status, quoteID)
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetTask godoc
// @Summary Get task
// @Description Get a booking task with its attempt history
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} domain.TaskDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	task, err := h.taskService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// ExecuteTask godoc
// @Summary Execute booking task
// @Description Execute an API booking task against the supplier, or preview the payload that would be sent
// @Tags Tasks
// @Accept json
// @Produce json
// @Param request body domain.ExecuteTaskRequest true "Execution request"
// @Success 200 {object} domain.ExecuteTaskResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.ExecuteTaskResponse
// @Security BearerAuth
// @Router /tasks/execute [post]
func (h *TaskHandler) ExecuteTask(w http.ResponseWriter, r *http.Request) {
	var req domain.ExecuteTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.executionService.Execute(r.Context(), &req)
	if err != nil {
		// A supplier failure is recorded on the task and surfaced as a
		// retryable execution response, not a problem document
		if errors.Is(err, service.ErrSupplierBooking) {
			respondJSON(w, http.StatusInternalServerError, domain.ExecuteTaskResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		h.logger.Error("failed to execute task",
			zap.Error(err),
			zap.String("task_id", req.TaskID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CompleteTask godoc
// @Summary Complete manual task
// @Description Mark a manual booking task as completed after booking offline
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body completeTaskRequest false "Completion details"
// @Success 200 {object} domain.TaskDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	req := completeTaskRequest{}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	task, err := h.taskService.CompleteManual(r.Context(), id, req.ConfirmationNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

type completeTaskRequest struct {
	ConfirmationNumber string `json:"confirmationNumber,omitempty" validate:"max=100"`
}
