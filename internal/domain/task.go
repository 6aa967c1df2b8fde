package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxTitleLength is the maximum number of characters allowed in a task title.
	MaxTitleLength = 200

	// MaxOrder is the largest order key the tasks table can hold.
	MaxOrder = math.MaxInt32
)

// Task is a single item in a user's ordered task list.
//
// Order is a per-user sort key, not a sequence: duplicates and gaps are allowed and
// only affect tie-breaking, which falls back to ID (insertion order).
type Task struct {
	ID          int64
	UserID      uuid.UUID
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask builds a task owned by userID with default completion and order values.
// The ID is assigned by the store on insert.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task invariants.
func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	return ValidateOrder(t.Order)
}

// ValidateTitle rejects titles that are blank after trimming or longer than
// MaxTitleLength characters. Trimming is only used for the check; the caller keeps
// the title as supplied.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "cannot be blank", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "must be at most 200 characters", ErrTitleTooLong)
	}
	return nil
}

// ValidateOrder rejects negative order keys and keys above MaxOrder.
func ValidateOrder(order int) error {
	if order < 0 {
		return NewValidationError("order", "must be a non-negative integer", ErrNegativeOrder)
	}
	if order > MaxOrder {
		return NewValidationError("order", "must be at most 2147483647", ErrOrderTooLarge)
	}
	return nil
}

// TaskPatch carries a partial update. Nil pointers and unset Optionals leave the
// corresponding field untouched.
type TaskPatch struct {
	Title       *string
	Description Optional[string]
	Completed   *bool
	DueDate     Optional[time.Time]
	Order       *int
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && p.Completed == nil && !p.DueDate.Set && p.Order == nil
}

// Validate checks only the fields present in the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Order != nil {
		if err := ValidateOrder(*p.Order); err != nil {
			return err
		}
	}
	return nil
}

// Apply validates the patch and copies its fields onto the task.
// The owner and identifier are never touched.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate.Set {
		if p.DueDate.Value == nil {
			t.DueDate = nil
		} else {
			due := p.DueDate.Value.UTC()
			t.DueDate = &due
		}
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
	t.UpdatedAt = now
	return nil
}

// OrderUpdate assigns a new order key to one task in a reorder batch.
type OrderUpdate struct {
	TaskID int64
	Order  int
}

// ValidateOrderUpdates checks a reorder batch before it reaches the store.
// An empty batch is rejected; unknown ids are not checked here.
func ValidateOrderUpdates(updates []OrderUpdate) error {
	if len(updates) == 0 {
		return NewValidationError("task_order", "at least one entry is required", ErrEmptyReorder)
	}
	for _, u := range updates {
		if err := ValidateOrder(u.Order); err != nil {
			return err
		}
	}
	return nil
}
