package api

import (
	"context"
	"net/http"

	"github.com/bornholm/fileworks/internal/orchestrator"
	"github.com/bornholm/fileworks/internal/task"
	"github.com/pkg/errors"
)

// handleListTasks handles GET /api/tasks
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := make([]task.ListFilter, 0)

	if rawType := query.Get("type"); rawType != "" {
		taskType := task.Type(rawType)
		if !taskType.Valid() {
			handleValidationError(w, invalidRequest("invalid task type '%s'", rawType))
			return
		}

		filters = append(filters, task.WithType(taskType))
	}

	switch query.Get("running") {
	case "":
	case "true":
		filters = append(filters, task.WithRunning(true))
	case "false":
		filters = append(filters, task.WithRunning(false))
	default:
		handleValidationError(w, invalidRequest("invalid 'running' parameter"))
		return
	}

	tasks := h.orchestrator.Registry().List(filters...)

	response := TaskListResponse{
		Tasks: make([]task.Snapshot, 0, len(tasks)),
		Total: len(tasks),
	}

	for _, t := range tasks {
		response.Tasks = append(response.Tasks, t.Snapshot())
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// handleCreateTask handles POST /api/tasks
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTaskRequest
	if err := parseJSONRequest(r, &req); err != nil {
		handleValidationError(w, err)
		return
	}

	// The task outlives the request
	taskCtx := context.WithoutCancel(ctx)

	t, err := h.orchestrator.CreateTask(taskCtx, orchestrator.Request{
		Type:         req.Type,
		Function:     req.Function,
		ActionName:   req.Action,
		ActionParams: req.Parameters,
		Language:     h.translator.Language(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, task.ErrInvalidArgument):
			handleValidationError(w, err)
		case errors.Is(err, task.ErrSandboxLoadFailure) && t != nil:
			h.logger.WarnContext(ctx, "could not load task function", "task_id", t.ID(), "error", err.Error())
			writeJSONResponse(w, http.StatusOK, t.Snapshot())
		default:
			handleInternalError(h, w, r, err, "could not create task")
		}
		return
	}

	writeJSONResponse(w, http.StatusAccepted, t.Snapshot())
}

// handleGetTask handles GET /api/tasks/{taskID}
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, ok := h.getTask(w, r)
	if !ok {
		return
	}

	writeJSONResponse(w, http.StatusOK, t.Snapshot())
}

// handleMarkTaskRead handles POST /api/tasks/{taskID}/read
func (h *Handler) handleMarkTaskRead(w http.ResponseWriter, r *http.Request) {
	t, ok := h.getTask(w, r)
	if !ok {
		return
	}

	t.MarkResultRead()

	writeJSONResponse(w, http.StatusOK, MarkReadResponse{
		TaskID: t.ID(),
		Status: t.Snapshot().Status,
	})
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) (*task.Task, bool) {
	taskID, err := getTaskIDFromPath(r)
	if err != nil {
		handleValidationError(w, err)
		return nil, false
	}

	t, err := h.orchestrator.Registry().Get(taskID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			handleNotFoundError(w, "task")
			return nil, false
		}

		handleInternalError(h, w, r, err, "could not retrieve task")
		return nil, false
	}

	return t, true
}
