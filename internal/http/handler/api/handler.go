package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bornholm/fileworks/internal/orchestrator"
	"github.com/bornholm/fileworks/internal/store/repository/history"
	"github.com/bornholm/fileworks/internal/task"
)

type Translator interface {
	Language(ctx context.Context) string
}

type Handler struct {
	mux          *http.ServeMux
	orchestrator *orchestrator.Orchestrator
	catalog      *task.Catalog
	history      *history.Repository
	translator   Translator
	logger       *slog.Logger
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// NewHandler returns the JSON API of the task engine. The history
// repository is optional.
func NewHandler(orchestrator *orchestrator.Orchestrator, catalog *task.Catalog, history *history.Repository, translator Translator, logger *slog.Logger) *Handler {
	h := &Handler{
		mux:          http.NewServeMux(),
		orchestrator: orchestrator,
		catalog:      catalog,
		history:      history,
		translator:   translator,
		logger:       logger.With("component", "api-handler"),
	}

	h.mux.HandleFunc("GET /functions", h.handleListFunctions)
	h.mux.HandleFunc("GET /tasks", h.handleListTasks)
	h.mux.HandleFunc("POST /tasks", h.handleCreateTask)
	h.mux.HandleFunc("GET /tasks/{taskID}", h.handleGetTask)
	h.mux.HandleFunc("POST /tasks/{taskID}/read", h.handleMarkTaskRead)
	h.mux.HandleFunc("GET /history", h.assertHistory(h.handleListHistory))
	h.mux.HandleFunc("GET /history/{taskID}", h.assertHistory(h.handleGetHistory))

	return h
}

func (h *Handler) assertHistory(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.history == nil {
			handleNotFoundError(w, "history")
			return
		}

		next(w, r)
	}
}

var _ http.Handler = &Handler{}
