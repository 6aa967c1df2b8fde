package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskOrdering names a sort key accepted by TaskStore.List. A leading "-" sorts
// descending. Ties are always broken by ascending task ID.
type TaskOrdering string

// Supported orderings.
const (
	OrderByOrder       TaskOrdering = "order"
	OrderByOrderDesc   TaskOrdering = "-order"
	OrderByDueDate     TaskOrdering = "due_date"
	OrderByDueDateDesc TaskOrdering = "-due_date"
)

// DefaultTaskOrdering is used when no ordering, or an unknown one, is requested.
const DefaultTaskOrdering = OrderByOrder

// ParseTaskOrdering returns the ordering named by s, falling back to
// DefaultTaskOrdering for empty or unrecognized values.
func ParseTaskOrdering(s string) TaskOrdering {
	switch o := TaskOrdering(s); o {
	case OrderByOrder, OrderByOrderDesc, OrderByDueDate, OrderByDueDateDesc:
		return o
	default:
		return DefaultTaskOrdering
	}
}

// TaskFilter narrows and sorts a task listing.
type TaskFilter struct {
	// Completed restricts the listing to tasks with this completion state when non-nil.
	Completed *bool
	// Search is split on whitespace; each term must match title or description
	// case-insensitively.
	Search string
	// Ordering selects the sort key. The zero value means DefaultTaskOrdering.
	Ordering TaskOrdering
	// Limit caps the number of rows returned; zero means no limit.
	Limit int
	// Offset skips rows before returning results.
	Offset int
}

// TaskStore defines the interface for task data persistence.
//
// All methods are scoped to userID: a task owned by another user behaves exactly as
// a task that does not exist.
type TaskStore interface {
	// List returns the user's tasks matching filter, sorted by the requested ordering
	// and then by ID. An empty result is an empty slice.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*domain.Task, error)

	// Count returns how many of the user's tasks match filter, ignoring Limit and Offset.
	Count(ctx context.Context, userID uuid.UUID, filter TaskFilter) (int, error)

	// Create inserts task and populates its ID and timestamps.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves one of the user's tasks.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Task, error)

	// Update persists every mutable field of task. The owner is taken from task.UserID
	// and is never changed.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes one of the user's tasks.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	Delete(ctx context.Context, userID uuid.UUID, id int64) error

	// OwnedIDs returns the subset of ids that exist and belong to the user, in one lookup.
	OwnedIDs(ctx context.Context, userID uuid.UUID, ids []int64) (map[int64]struct{}, error)

	// UpdateOrder sets the order of one of the user's tasks.
	// Returns ErrTaskNotFound if it does not exist or belongs to another user.
	UpdateOrder(ctx context.Context, userID uuid.UUID, id int64, order int) error

	// ListDueBy returns the user's incomplete tasks with a due date at or before
	// cutoff, sorted by due date and then by ID.
	ListDueBy(ctx context.Context, userID uuid.UUID, cutoff time.Time) ([]*domain.Task, error)

	// WithTx returns a TaskStore that executes its statements in tx.
	WithTx(tx *sql.Tx) TaskStore
}
