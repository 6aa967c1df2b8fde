package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

// RegisterRequest is the body of POST /api/register/.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /api/login/.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /api/token/refresh/.
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenResponse is returned by login and token refresh.
type TokenResponse struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt string    `json:"expires_at"`
}

// RegisterResponse is returned by registration.
type RegisterResponse struct {
	User    UserResponse `json:"user"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                 uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	Username           string    `json:"username"`
	EmailVerified      bool      `json:"email_verified"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	DateJoined         time.Time `json:"date_joined"`
}

// UpdateUserRequest is the body of PATCH /api/user/.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,max=150"`
}

// UserStatusResponse is returned by GET /api/user-status/.
type UserStatusResponse struct {
	IsNewUser          bool `json:"is_new_user"`
	OnboardingComplete bool `json:"onboarding_complete"`
	EmailVerified      bool `json:"email_verified"`
}

// DetailResponse carries a human-readable acknowledgement.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// CreateTaskRequest is the body of POST /api/tasks/. It has no owner field; the
// owner is always the authenticated user.
type CreateTaskRequest struct {
	Title       string     `json:"title"       validate:"required,max=200"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Order       int        `json:"order"       validate:"gte=0,lte=2147483647"`
}

// UpdateTaskRequest is the body of PATCH /api/tasks/{id}/. Omitted fields keep
// their value; an explicit null clears description or due_date.
type UpdateTaskRequest struct {
	Title       *string                    `json:"title"`
	Description domain.Optional[string]    `json:"description"`
	Completed   *bool                      `json:"completed"`
	DueDate     domain.Optional[time.Time] `json:"due_date"`
	Order       *int                       `json:"order"`
}

// Patch converts the request into a domain patch.
func (r UpdateTaskRequest) Patch() domain.TaskPatch {
	return domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DueDate:     r.DueDate,
		Order:       r.Order,
	}
}

// Validate implements the custom request validation hook.
func (r UpdateTaskRequest) Validate() error {
	return r.Patch().Validate()
}

// TaskOrderItem assigns a new order to one task.
type TaskOrderItem struct {
	ID    int64 `json:"id"    validate:"required"`
	Order int   `json:"order" validate:"gte=0,lte=2147483647"`
}

// ReorderRequest is the body of PATCH /api/reorder/.
type ReorderRequest struct {
	TaskOrder []TaskOrderItem `json:"task_order" validate:"dive"`
}

// ReorderResponse acknowledges a reorder.
type ReorderResponse struct {
	Status  string `json:"status"`
	Updated int    `json:"updated"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Order       int        `json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PaginatedTasksResponse is the envelope for a paginated task listing.
type PaginatedTasksResponse struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []TaskResponse `json:"results"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		Order:       t.Order,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Username:           u.Username,
		EmailVerified:      u.EmailVerified,
		OnboardingComplete: u.OnboardingComplete,
		DateJoined:         u.CreatedAt,
	}
}
