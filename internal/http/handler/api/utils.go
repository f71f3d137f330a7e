package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/bornholm/fileworks/internal/slogx"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

var ErrInvalidRequest = errors.New("invalid request")

func invalidRequest(format string, args ...any) error {
	return errors.Wrap(ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// HTTP response utilities
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := sonic.ConfigStd.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeErrorResponseWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSONResponse(w, statusCode, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// Error handling utilities
func handleInternalError(h *Handler, w http.ResponseWriter, r *http.Request, err error, message string) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, message, slogx.Error(errors.WithStack(err)))
	writeErrorResponseWithCode(w, http.StatusInternalServerError, "Internal server error", "internal_error")
}

func handleValidationError(w http.ResponseWriter, err error) {
	writeErrorResponseWithCode(w, http.StatusBadRequest, err.Error(), "validation_error")
}

func handleNotFoundError(w http.ResponseWriter, resource string) {
	writeErrorResponseWithCode(w, http.StatusNotFound, resource+" not found", "not_found")
}

// Request parsing utilities
func parseJSONRequest(r *http.Request, dest any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return invalidRequest("Content-Type must be application/json")
	}

	decoder := sonic.ConfigStd.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return invalidRequest("invalid JSON: %v", err)
	}

	return nil
}

func getTaskIDFromPath(r *http.Request) (string, error) {
	taskID := r.PathValue("taskID")
	if taskID == "" {
		return "", invalidRequest("taskID is required")
	}
	return taskID, nil
}

func getIntQueryParam(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, invalidRequest("invalid '%s' parameter", name)
	}

	return value, nil
}
