package api

import (
	"net/http"

	"github.com/bornholm/fileworks/internal/task"
)

// handleListFunctions handles GET /api/functions
//
// With one or more "ext" parameters, only the file functions applicable to
// the selected paths are returned.
func (h *Handler) handleListFunctions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var definitions []*task.Definition

	if exts := query["ext"]; len(exts) > 0 {
		definitions = h.catalog.Supported(exts, query.Get("platform"))
	} else {
		taskType := task.Type(query.Get("type"))
		if taskType != "" && !taskType.Valid() {
			handleValidationError(w, invalidRequest("invalid task type '%s'", taskType))
			return
		}

		definitions = h.catalog.List(taskType)
	}

	functions := make([]FunctionResponse, 0, len(definitions))
	for _, def := range definitions {
		functions = append(functions, newFunctionResponse(def))
	}

	writeJSONResponse(w, http.StatusOK, functions)
}
