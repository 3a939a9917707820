// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// StatsProvider exposes the tracker's runtime counters: pipeline state,
// store fill, and queue depth.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves runtime statistics for operators; the press history
// itself lives on the history routes.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}
