package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth/internal/actuator"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// handleDeviceHistory returns recent state changes for one device,
// newest first.
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeUnavailable(w, "state history not configured")
		return
	}
	device, err := actuator.ParseDevice(chi.URLParam(r, "device"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := s.history.GetHistory(r.Context(), device, limit)
	if err != nil {
		s.logger.Error("failed to get device history", "device", device, "error", err)
		writeInternalError(w, "failed to get device history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device":  device,
		"entries": entries,
		"count":   len(entries),
	})
}
