package api

import (
	"net/http"
	"strconv"

	httpCtx "github.com/bornholm/fileworks/internal/http/context"
	"github.com/bornholm/fileworks/internal/http/url"
	"github.com/bornholm/fileworks/internal/store"
	"github.com/bornholm/fileworks/internal/store/repository/history"
	"github.com/pkg/errors"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// handleListHistory handles GET /api/history
func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := getIntQueryParam(r, "limit", defaultHistoryLimit)
	if err != nil {
		handleValidationError(w, err)
		return
	}

	if limit == 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	offset, err := getIntQueryParam(r, "offset", 0)
	if err != nil {
		handleValidationError(w, err)
		return
	}

	query := r.URL.Query()

	records, err := h.history.List(ctx, history.ListOptions{
		Limit:    limit,
		Offset:   offset,
		Function: query.Get("function"),
		Type:     query.Get("type"),
	})
	if err != nil {
		handleInternalError(h, w, r, err, "could not list history")
		return
	}

	total, err := h.history.Count(ctx)
	if err != nil {
		handleInternalError(h, w, r, err, "could not count history")
		return
	}

	response := HistoryResponse{
		Records: make([]HistoryRecord, 0, len(records)),
		Total:   total,
	}

	for _, record := range records {
		response.Records = append(response.Records, newHistoryRecord(record))
	}

	if len(records) == limit {
		next := url.Mutate(httpCtx.CurrentURL(ctx), url.WithValue("offset", strconv.Itoa(offset+limit)))
		response.Next = next.String()
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// handleGetHistory handles GET /api/history/{taskID}
func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, err := getTaskIDFromPath(r)
	if err != nil {
		handleValidationError(w, err)
		return
	}

	record, err := h.history.GetByTaskID(ctx, taskID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			handleNotFoundError(w, "history record")
			return
		}

		handleInternalError(h, w, r, err, "could not retrieve history record")
		return
	}

	response := newHistoryRecord(record)

	result, err := history.DecodeResult(record)
	if err != nil {
		h.logger.WarnContext(ctx, "could not decode task result", "task_id", record.TaskID, "error", err.Error())
	} else {
		response.Result = result
	}

	writeJSONResponse(w, http.StatusOK, response)
}

func newHistoryRecord(record *store.TaskRecord) HistoryRecord {
	return HistoryRecord{
		TaskID:       record.TaskID,
		Type:         record.Type,
		Function:     record.Function,
		Action:       record.Action,
		State:        record.State,
		Status:       record.ResultStatus,
		Message:      record.ResultMessage,
		PathResults:  record.PathResults,
		FileOK:       record.FileOK,
		FileError:    record.FileError,
		FileIgnored:  record.FileIgnored,
		PathNotExist: record.PathNotExist,
		CreatedAt:    record.CreatedAt,
		StartedAt:    record.StartedAt,
		FinishedAt:   record.FinishedAt,
	}
}
