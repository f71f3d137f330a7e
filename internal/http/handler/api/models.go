package api

import (
	"time"

	"github.com/bornholm/fileworks/internal/task"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type FunctionResponse struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Version    string   `json:"version"`
	Extensions []string `json:"extensions"`
	Platforms  []string `json:"platforms"`
}

func newFunctionResponse(def *task.Definition) FunctionResponse {
	return FunctionResponse{
		Name:       def.Name,
		Type:       string(def.Type),
		Title:      def.Title,
		Summary:    def.Summary,
		Version:    def.Version,
		Extensions: def.Matches.Extensions,
		Platforms:  def.Matches.Platforms,
	}
}

type CreateTaskRequest struct {
	Type       task.Type       `json:"task_type"`
	Function   string          `json:"function_name"`
	Action     string          `json:"action"`
	Parameters task.Parameters `json:"parameters"`
}

type TaskListResponse struct {
	Tasks []task.Snapshot `json:"tasks"`
	Total int             `json:"total"`
}

type MarkReadResponse struct {
	TaskID string      `json:"task_id"`
	Status task.Status `json:"status"`
}

type HistoryRecord struct {
	TaskID       string       `json:"task_id"`
	Type         string       `json:"task_type"`
	Function     string       `json:"function_name"`
	Action       string       `json:"action"`
	State        string       `json:"state"`
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	PathResults  int          `json:"path_results"`
	FileOK       int          `json:"file_ok"`
	FileError    int          `json:"file_error"`
	FileIgnored  int          `json:"file_ignored"`
	PathNotExist int          `json:"path_not_exist"`
	Result       *task.Result `json:"result,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	StartedAt    *time.Time   `json:"started_at"`
	FinishedAt   *time.Time   `json:"finished_at"`
}

type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
	Total   int64           `json:"total"`
	Next    string          `json:"next,omitempty"`
}
