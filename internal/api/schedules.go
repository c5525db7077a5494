package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/hearth/internal/audit"
	"github.com/nerrad567/hearth/internal/schedule"
)

// maxIDLen limits path IDs.
const maxIDLen = 100

func pathID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	return id, id != "" && len(id) <= maxIDLen
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeUnavailable(w, "schedules not configured")
		return
	}
	list, err := s.schedules.ListSchedules(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schedules": list, "count": len(list)})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeUnavailable(w, "schedules not configured")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid schedule ID")
		return
	}
	sch, err := s.schedules.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sch)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeUnavailable(w, "schedules not configured")
		return
	}
	var sch schedule.Schedule
	if err := json.NewDecoder(r.Body).Decode(&sch); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.schedules.CreateSchedule(r.Context(), &sch); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(audit.ActionCreate, audit.EntitySchedule, sch.ID, map[string]any{
		"device": string(sch.Device),
		"value":  sch.Value,
	})
	writeJSON(w, http.StatusCreated, sch)
}

// handleUpdateSchedule decodes a partial update onto the stored schedule.
func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeUnavailable(w, "schedules not configured")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid schedule ID")
		return
	}
	existing, err := s.schedules.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id

	if err := s.schedules.UpdateSchedule(r.Context(), existing); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(audit.ActionUpdate, audit.EntitySchedule, id, nil)
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if s.schedules == nil {
		writeUnavailable(w, "schedules not configured")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid schedule ID")
		return
	}
	if err := s.schedules.DeleteSchedule(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(audit.ActionDelete, audit.EntitySchedule, id, nil)
	w.WriteHeader(http.StatusNoContent)
}
