package metrics

import (
	"net/http"
)

type Handler struct {
	mux *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// NewHandler exposes the given metrics handler, read only.
func NewHandler(metrics http.Handler) *Handler {
	h := &Handler{
		mux: &http.ServeMux{},
	}

	h.mux.Handle("GET /", metrics)

	return h
}

var _ http.Handler = &Handler{}
