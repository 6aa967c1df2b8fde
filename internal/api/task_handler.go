package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Page sizes for paginated listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TaskHandler handles the task endpoints.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks/.
//
// Query parameters: completed (true|false), search, ordering (order, -order,
// due_date, -due_date), page and page_size. The response is a plain list unless
// page or page_size is given.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter, err := parseTaskFilter(query)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if !query.Has("page") && !query.Has("page_size") {
		tasks, err := h.taskService.ListTasks(r.Context(), userID, filter)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
		return
	}

	page, err := intParam(query, "page", 1)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	pageSize, err := intParam(query, "page_size", DefaultPageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	result, err := h.taskService.ListTasksPage(r.Context(), userID, filter, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := PaginatedTasksResponse{
		Count:   result.Count,
		Results: tasksToResponse(result.Tasks),
	}
	if result.HasNext() {
		next := pageURL(r, result.Page+1)
		resp.Next = &next
	}
	if result.HasPrevious() {
		prev := pageURL(r, result.Page-1)
		resp.Previous = &prev
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateTask handles POST /api/tasks/.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Order:       req.Order,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id}/.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id", store.ErrTaskNotFound)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PATCH /api/tasks/{id}/.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id", store.ErrTaskNotFound)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, req.Patch())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}/.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := requireUserAndPathID(w, r, "id", store.ErrTaskNotFound)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("task deleted",
		slog.Int64("task_id", taskID))
	w.WriteHeader(http.StatusNoContent)
}

// ReorderTasks handles PATCH /api/reorder/.
func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ReorderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.TaskOrder) == 0 {
		err := domain.NewValidationError("task_order", "at least one entry is required", domain.ErrEmptyReorder)
		HandleAPIError(w, r, err, "No task order provided")
		return
	}

	updates := make([]domain.OrderUpdate, 0, len(req.TaskOrder))
	for _, item := range req.TaskOrder {
		updates = append(updates, domain.OrderUpdate{TaskID: item.ID, Order: item.Order})
	}

	updated, err := h.taskService.ReorderTasks(r.Context(), userID, updates)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReorderResponse{
		Status:  "Order updated",
		Updated: updated,
	})
}

// UpcomingTasks handles GET /api/upcoming/.
func (h *TaskHandler) UpcomingTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.taskService.UpcomingTasks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

func parseTaskFilter(query url.Values) (store.TaskFilter, error) {
	filter := store.TaskFilter{
		Search:   strings.TrimSpace(query.Get("search")),
		Ordering: store.ParseTaskOrdering(query.Get("ordering")),
	}

	if raw := query.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.NewValidationError("completed", "must be true or false", nil)
		}
		filter.Completed = &completed
	}
	return filter, nil
}

func intParam(query url.Values, name string, fallback int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer", nil)
	}
	return v, nil
}

// pageURL returns the request URL with its page parameter replaced.
func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
