package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleTask(userID uuid.UUID, id int64, title string, order int) *domain.Task {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Task{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Order:     order,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListTasks(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	completed := true
	wantFilter := store.TaskFilter{
		Completed: &completed,
		Search:    "milk",
		Ordering:  store.OrderByDueDateDesc,
	}
	svc.On("ListTasks", mock.Anything, userID, wantFilter).
		Return([]*domain.Task{sampleTask(userID, 1, "Buy milk", 0)}, nil).Once()

	rec := serve(router, http.MethodGet, "/api/tasks/?completed=true&search=milk&ordering=-due_date", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "Buy milk", got[0].Title)
	assert.NotContains(t, rec.Body.String(), "user_id")
	svc.AssertExpectations(t)
}

func TestListTasksEmptyIsArray(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("ListTasks", mock.Anything, userID, store.TaskFilter{Ordering: store.OrderByOrder}).
		Return([]*domain.Task{}, nil).Once()

	rec := serve(router, http.MethodGet, "/api/tasks/?ordering=bogus", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListTasksInvalidCompleted(t *testing.T) {
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), uuid.New())

	rec := serve(router, http.MethodGet, "/api/tasks/?completed=maybe", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"completed": "must be true or false"}, decodeError(t, rec).Fields)
	svc.AssertNotCalled(t, "ListTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestListTasksPaginated(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	filter := store.TaskFilter{Ordering: store.OrderByOrder}
	svc.On("ListTasksPage", mock.Anything, userID, filter, 2, 2).Return(&service.TaskPage{
		Tasks:    []*domain.Task{sampleTask(userID, 3, "c", 2), sampleTask(userID, 4, "d", 3)},
		Count:    5,
		Page:     2,
		PageSize: 2,
	}, nil).Once()

	rec := serve(router, http.MethodGet, "/api/tasks/?page=2&page_size=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got PaginatedTasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 5, got.Count)
	assert.Len(t, got.Results, 2)
	require.NotNil(t, got.Next)
	assert.Equal(t, "/api/tasks/?page=3&page_size=2", *got.Next)
	require.NotNil(t, got.Previous)
	assert.Equal(t, "/api/tasks/?page=1&page_size=2", *got.Previous)
}

func TestListTasksPaginationErrors(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("ListTasksPage", mock.Anything, userID, mock.Anything, 9, DefaultPageSize).
		Return(nil, service.ErrInvalidPage).Once()
	svc.On("ListTasksPage", mock.Anything, userID, mock.Anything, 1, MaxPageSize).
		Return(&service.TaskPage{Page: 1, PageSize: MaxPageSize}, nil).Once()

	rec := serve(router, http.MethodGet, "/api/tasks/?page=9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Invalid page.", decodeError(t, rec).Error)

	rec = serve(router, http.MethodGet, "/api/tasks/?page=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodGet, "/api/tasks/?page_size=1000", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, rec.Body.String())

	svc.AssertExpectations(t)
}

func TestCreateTask(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	wantInput := service.TaskInput{
		Title:       "  Buy milk  ",
		Description: strPtr("2 litres"),
		DueDate:     &due,
		Order:       3,
	}
	created := sampleTask(userID, 42, "  Buy milk  ", 3)
	created.Description = strPtr("2 litres")
	created.DueDate = &due
	svc.On("CreateTask", mock.Anything, userID, wantInput).Return(created, nil).Once()

	// The user field is not part of the request model and is dropped.
	body := fmt.Sprintf(`{"title":"  Buy milk  ","description":"2 litres","due_date":"2025-06-01T09:00:00Z","order":3,"user":"%s"}`,
		uuid.New())
	rec := serve(router, http.MethodPost, "/api/tasks/", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, "  Buy milk  ", got.Title)
	assert.Equal(t, 3, got.Order)
	svc.AssertExpectations(t)
}

func TestCreateTaskValidation(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	blank := domain.NewValidationError("title", "cannot be blank", domain.ErrEmptyTitle)
	svc.On("CreateTask", mock.Anything, userID, service.TaskInput{Title: "   "}).Return(nil, blank).Once()

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing title", body: `{"description":"x"}`, wantField: "title"},
		{name: "blank title", body: `{"title":"   "}`, wantField: "title"},
		{name: "title too long", body: `{"title":"` + strings.Repeat("x", 201) + `"}`, wantField: "title"},
		{name: "negative order", body: `{"title":"ok","order":-1}`, wantField: "order"},
		{name: "order above column range", body: `{"title":"ok","order":2147483648}`, wantField: "order"},
		{name: "malformed json", body: `{"title":`},
		{name: "empty body", body: ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tasks/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.NotEmpty(t, body.Error)
			if tc.wantField != "" {
				assert.Contains(t, body.Fields, tc.wantField)
			}
		})
	}
	svc.AssertExpectations(t)
}

func TestCreateTaskAcceptsMaxOrder(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	input := service.TaskInput{Title: "last", Order: domain.MaxOrder}
	svc.On("CreateTask", mock.Anything, userID, input).
		Return(sampleTask(userID, 1, "last", domain.MaxOrder), nil).Once()

	rec := serve(router, http.MethodPost, "/api/tasks/", `{"title":"last","order":2147483647}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetTask(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("GetTask", mock.Anything, userID, int64(7)).Return(sampleTask(userID, 7, "seven", 0), nil).Once()
	svc.On("GetTask", mock.Anything, userID, int64(8)).Return(nil, fmt.Errorf("get: %w", store.ErrTaskNotFound)).Once()

	rec := serve(router, http.MethodGet, "/api/tasks/7/", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/tasks/8/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decodeError(t, rec).Error)

	svc.AssertExpectations(t)
}

func TestMalformedTaskIDIsNotFound(t *testing.T) {
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), uuid.New())

	for _, bad := range []string{"abc", "0", "-3", "99999999999999999999"} {
		for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
			rec := serve(router, method, "/api/tasks/"+bad+"/", `{"title":"x"}`)
			assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", method, bad)
			assert.Equal(t, "Task not found", decodeError(t, rec).Error)
		}
	}
	svc.AssertNotCalled(t, "GetTask", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "DeleteTask", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTask(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	completed := true
	wantPatch := domain.TaskPatch{
		Completed:   &completed,
		Description: domain.Null[string](),
	}
	updated := sampleTask(userID, 5, "five", 0)
	updated.Completed = true
	svc.On("UpdateTask", mock.Anything, userID, int64(5), wantPatch).Return(updated, nil).Once()

	rec := serve(router, http.MethodPatch, "/api/tasks/5/", `{"completed":true,"description":null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Completed)
	assert.Nil(t, got.Description)
	svc.AssertExpectations(t)
}

func TestUpdateTaskErrors(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("UpdateTask", mock.Anything, userID, int64(99), mock.Anything).
		Return(nil, fmt.Errorf("failed to update task: %w", store.ErrTaskNotFound)).Once()

	rec := serve(router, http.MethodPatch, "/api/tasks/99/", `{"title":"new"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodPatch, "/api/tasks/5/", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"title": "cannot be blank"}, decodeError(t, rec).Fields)

	rec = serve(router, http.MethodPatch, "/api/tasks/5/", `{"due_date":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPatch, "/api/tasks/5/", `{"order":2147483648}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"order": "must be at most 2147483647"}, decodeError(t, rec).Fields)

	svc.AssertExpectations(t)
}

func TestDeleteTask(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("DeleteTask", mock.Anything, userID, int64(3)).Return(nil).Once()
	svc.On("DeleteTask", mock.Anything, userID, int64(3)).
		Return(fmt.Errorf("failed to delete task: %w", store.ErrTaskNotFound)).Once()

	rec := serve(router, http.MethodDelete, "/api/tasks/3/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve(router, http.MethodDelete, "/api/tasks/3/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestReorderTasks(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	want := []domain.OrderUpdate{{TaskID: 1, Order: 2}, {TaskID: 999, Order: 0}}
	svc.On("ReorderTasks", mock.Anything, userID, want).Return(1, nil).Once()

	rec := serve(router, http.MethodPatch, "/api/reorder/",
		`{"task_order":[{"id":1,"order":2},{"id":999,"order":0}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"Order updated","updated":1}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestReorderTasksValidation(t *testing.T) {
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), uuid.New())

	for _, body := range []string{
		`{}`,
		`{"task_order":[]}`,
		`{"task_order":[{"id":1,"order":-1}]}`,
		`{"task_order":[{"order":1}]}`,
		`{"task_order":[{"id":1,"order":2147483647},{"id":2,"order":2147483648}]}`,
	} {
		rec := serve(router, http.MethodPatch, "/api/reorder/", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := serve(router, http.MethodPatch, "/api/reorder/", `{"task_order":[]}`)
	assert.Equal(t, "No task order provided", decodeError(t, rec).Error)

	rec = serve(router, http.MethodPatch, "/api/reorder/", `{"task_order":[{"id":1,"order":2147483648}]}`)
	assert.Equal(t, "Ensure this value is less than or equal to 2147483647.", decodeError(t, rec).Fields["order"])
	svc.AssertNotCalled(t, "ReorderTasks", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpcomingTasks(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("UpcomingTasks", mock.Anything, userID).
		Return([]*domain.Task{sampleTask(userID, 2, "soon", 0)}, nil).Once()

	rec := serve(router, http.MethodGet, "/api/upcoming/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got []TaskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "soon", got[0].Title)
}

func TestTaskEndpointsRequireIdentity(t *testing.T) {
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), uuid.Nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/tasks/"},
		{http.MethodPost, "/api/tasks/"},
		{http.MethodGet, "/api/tasks/1/"},
		{http.MethodDelete, "/api/tasks/1/"},
		{http.MethodPatch, "/api/reorder/"},
		{http.MethodGet, "/api/upcoming/"},
	} {
		rec := serve(router, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
	svc.AssertExpectations(t)
}

func TestTaskServiceFailureIsSanitized(t *testing.T) {
	userID := uuid.New()
	svc := new(mockTaskService)
	router := newTaskRouter(NewTaskHandler(svc, nil), userID)

	svc.On("UpcomingTasks", mock.Anything, userID).
		Return(nil, fmt.Errorf("query failed: SELECT id FROM tasks: connection reset")).Once()

	rec := serve(router, http.MethodGet, "/api/upcoming/", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred", decodeError(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "SELECT")
}
