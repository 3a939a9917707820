// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/treyp/clickhistory/internal/domain/model"
)

// HistoryHandler serves the press history payload.
type HistoryHandler struct {
	deps Dependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps Dependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetRoot handles GET / requests. The root mux pattern matches every
// unregistered path, so anything but "/" itself is a 404.
func (h *HistoryHandler) HandleGetRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.serveHistory(w, r)
}

// HandleGetHistory handles GET /history requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	h.serveHistory(w, r)
}

// serveHistory writes the full history as a JSON array. The response is
// CORS-open so browser pages on any origin can read it.
func (h *HistoryHandler) serveHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"

	w.Header().Set("Access-Control-Allow-Origin", "*")

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	events := h.deps.History(r.Context())
	if events == nil {
		// An empty history must serialize as [], never null.
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
