package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/dcastillo/tasktrail-api/internal/api/shared"
	"github.com/dcastillo/tasktrail-api/internal/domain"
	"github.com/dcastillo/tasktrail-api/internal/service"
	"github.com/dcastillo/tasktrail-api/internal/store"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create handles POST /tasks. A "template" field in the payload creates the
// task from the named template, with explicit fields winning over template
// defaults.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.TaskPriority(req.Priority),
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		CreatedBy:      userID,
		AssigneeIDs:    req.AssigneeIDs,
		TagIDs:         req.TagIDs,
		ParentTaskID:   req.ParentTaskID,
		Metadata:       req.Metadata,
	}

	var (
		task *domain.Task
		err  error
	)
	if req.Template != "" {
		task, err = h.tasks.CreateTaskFromTemplate(r.Context(), req.Template, input)
	} else {
		task, err = h.tasks.CreateTask(r.Context(), input)
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// List handles GET /tasks with optional filter query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseTaskFilter(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// Update handles PATCH /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		AssigneeIDs:    req.AssigneeIDs,
		TagIDs:         req.TagIDs,
		ParentTaskID:   req.ParentTaskID,
		ClearParent:    req.ClearParent,
		Metadata:       req.Metadata,
		IsArchived:     req.IsArchived,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, input, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Assign handles POST /tasks/{id}/assignments.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AssignUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	assignment, err := h.tasks.AssignUser(r.Context(), taskID, req.UserID, req.Role, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, assignment)
}

// ListAssignments handles GET /tasks/{id}/assignments.
func (h *TaskHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	assignments, err := h.tasks.ListAssignments(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list assignments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, assignments)
}

// AddComment handles POST /tasks/{id}/comments.
func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	comment, err := h.tasks.AddComment(r.Context(), taskID, userID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add comment")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, comment)
}

// ListComments handles GET /tasks/{id}/comments.
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.tasks.ListComments(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, comments)
}

// ListHistory handles GET /tasks/{id}/history.
func (h *TaskHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	_, taskID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	records, err := h.tasks.ListHistory(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list task history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

// parseTaskFilter builds a store.TaskFilter from list query parameters.
func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	var filter store.TaskFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			return filter, domain.ErrTaskStatusInvalid
		}
		filter.Status = &status
	}

	if raw := query.Get("priority"); raw != "" {
		priority := domain.TaskPriority(raw)
		if !priority.IsValid() {
			return filter, domain.ErrTaskPriorityInvalid
		}
		filter.Priority = &priority
	}

	if raw := query.Get("created_by"); raw != "" {
		createdBy, err := uuid.Parse(raw)
		if err != nil {
			return filter, domain.ErrInvalidID
		}
		filter.CreatedBy = &createdBy
	}

	filter.Search = query.Get("search")
	filter.IncludeArchived = query.Get("include_archived") == "true"

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, domain.ErrInvalidFormat
		}
		filter.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, domain.ErrInvalidFormat
		}
		filter.Offset = offset
	}

	return filter, nil
}
