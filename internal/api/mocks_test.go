package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, filter)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

func (m *mockTaskService) ListTasksPage(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	page, pageSize int,
) (*service.TaskPage, error) {
	args := m.Called(ctx, userID, filter, page, pageSize)
	result, _ := args.Get(0).(*service.TaskPage)
	return result, args.Error(1)
}

func (m *mockTaskService) CreateTask(ctx context.Context, userID uuid.UUID, input service.TaskInput) (*domain.Task, error) {
	args := m.Called(ctx, userID, input)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) GetTask(ctx context.Context, userID uuid.UUID, taskID int64) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) UpdateTask(
	ctx context.Context,
	userID uuid.UUID,
	taskID int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	args := m.Called(ctx, userID, taskID, patch)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, userID uuid.UUID, taskID int64) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func (m *mockTaskService) ReorderTasks(ctx context.Context, userID uuid.UUID, updates []domain.OrderUpdate) (int, error) {
	args := m.Called(ctx, userID, updates)
	return args.Int(0), args.Error(1)
}

func (m *mockTaskService) UpcomingTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	args := m.Called(ctx, email, username, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) (*domain.User, error) {
	args := m.Called(ctx, userID, username)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserService) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserService) CompleteOnboarding(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func newTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   strings.Repeat("s", 32),
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 600,
	})
	require.NoError(t, err)
	return svc
}

// asUser injects userID as the authenticated identity, standing in for the auth
// middleware.
func asUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), userID)))
		})
	}
}

// newTaskRouter mounts the task routes with userID as the requester.
func newTaskRouter(h *TaskHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		if userID != uuid.Nil {
			r.Use(asUser(userID))
		}
		r.Get("/tasks/", h.ListTasks)
		r.Post("/tasks/", h.CreateTask)
		r.Get("/tasks/{id}/", h.GetTask)
		r.Patch("/tasks/{id}/", h.UpdateTask)
		r.Delete("/tasks/{id}/", h.DeleteTask)
		r.Patch("/reorder/", h.ReorderTasks)
		r.Get("/upcoming/", h.UpcomingTasks)
	})
	return r
}

func strPtr(s string) *string { return &s }
