package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// UpcomingWindow is how far ahead of now a due date counts as upcoming.
const UpcomingWindow = 24 * time.Hour

// TaskInput carries the fields accepted when creating a task. The owner is never
// part of it; it always comes from the authenticated user.
type TaskInput struct {
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Order       int
}

// TaskPage is one page of a paginated listing.
type TaskPage struct {
	Tasks    []*domain.Task
	Count    int
	Page     int
	PageSize int
}

// HasNext reports whether a page follows this one.
func (p *TaskPage) HasNext() bool {
	return p.Page*p.PageSize < p.Count
}

// HasPrevious reports whether a page precedes this one.
func (p *TaskPage) HasPrevious() bool {
	return p.Page > 1
}

// TaskService provides the per-user task operations.
type TaskService interface {
	// ListTasks returns the user's tasks matching filter.
	ListTasks(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error)

	// ListTasksPage returns one page of the user's tasks matching filter along with
	// the total match count. Returns ErrInvalidPage for a page past the last one.
	ListTasksPage(ctx context.Context, userID uuid.UUID, filter store.TaskFilter, page, pageSize int) (*TaskPage, error)

	// CreateTask creates a task owned by userID.
	CreateTask(ctx context.Context, userID uuid.UUID, input TaskInput) (*domain.Task, error)

	// GetTask returns one of the user's tasks.
	GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error)

	// UpdateTask applies a partial update to one of the user's tasks.
	UpdateTask(ctx context.Context, userID uuid.UUID, taskID int64, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes one of the user's tasks.
	DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error

	// ReorderTasks sets the order of each listed task the user owns and returns how
	// many were updated. Unknown or foreign IDs are skipped.
	ReorderTasks(ctx context.Context, userID uuid.UUID, updates []domain.OrderUpdate) (int, error)

	// UpcomingTasks returns the user's incomplete tasks due within UpcomingWindow.
	UpcomingTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
}

// TaskServiceOption configures optional TaskService behaviour.
type TaskServiceOption func(*taskServiceImpl)

// WithClock replaces the time source used for timestamps and the upcoming window.
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

type taskServiceImpl struct {
	taskStore store.TaskStore
	db        *sql.DB
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a TaskService.
func NewTaskService(
	taskStore store.TaskStore,
	db *sql.DB,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("taskStore cannot be nil")
	}
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	s := &taskServiceImpl{
		taskStore: taskStore,
		db:        db,
		logger:    logger.With(slog.String("component", "task_service")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) ListTasksPage(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	page, pageSize int,
) (*TaskPage, error) {
	if page < 1 {
		return nil, domain.NewValidationError("page", "must be a positive integer", nil)
	}
	if pageSize < 1 {
		return nil, domain.NewValidationError("page_size", "must be a positive integer", nil)
	}

	count, err := s.taskStore.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	// The first page always exists, even when empty.
	if page > 1 && (page-1)*pageSize >= count {
		return nil, ErrInvalidPage
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	tasks, err := s.taskStore.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &TaskPage{Tasks: tasks, Count: count, Page: page, PageSize: pageSize}, nil
}

func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	userID uuid.UUID,
	input TaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task.Description = input.Description
	task.Completed = input.Completed
	task.Order = input.Order
	task.CreatedAt = now
	task.UpdatedAt = now
	if input.DueDate != nil {
		due := input.DueDate.UTC()
		task.DueDate = &due
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.String("user_id", userID.String()))
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	userID uuid.UUID,
	taskID int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		task, err := txStore.GetByID(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if err := task.Apply(patch, s.now().UTC()); err != nil {
			return err
		}
		if err := txStore.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if domain.IsValidationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Debug("task updated",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID.String()))
	return updated, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error {
	if err := s.taskStore.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Reorder writes are last-writer-wins per row, so read committed is sufficient.
var reorderTxOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}

func (s *taskServiceImpl) ReorderTasks(
	ctx context.Context,
	userID uuid.UUID,
	updates []domain.OrderUpdate,
) (int, error) {
	if err := domain.ValidateOrderUpdates(updates); err != nil {
		return 0, err
	}

	ids := make([]int64, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.TaskID)
	}

	updatedCount := 0
	err := store.RunInTransactionWithOptions(ctx, s.db, reorderTxOptions, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		owned, err := txStore.OwnedIDs(ctx, userID, ids)
		if err != nil {
			return err
		}

		// Duplicate IDs are applied in request order, so the last value wins.
		for _, u := range updates {
			if _, ok := owned[u.TaskID]; !ok {
				continue
			}
			if err := txStore.UpdateOrder(ctx, userID, u.TaskID, u.Order); err != nil {
				return err
			}
			updatedCount++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reorder tasks: %w", err)
	}

	if skipped := len(updates) - updatedCount; skipped > 0 {
		s.logger.Debug("reorder skipped unknown or foreign tasks",
			slog.String("user_id", userID.String()),
			slog.Int("skipped", skipped))
	}
	return updatedCount, nil
}

func (s *taskServiceImpl) UpcomingTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	cutoff := s.now().UTC().Add(UpcomingWindow)
	tasks, err := s.taskStore.ListDueBy(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	return tasks, nil
}
