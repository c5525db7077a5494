package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/controller"
	"github.com/nerrad567/hearth/internal/emergency"
)

// handleGetState returns the latest published controller state.
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

// handleCommand submits a command envelope to the control loop. Soft
// rejections answer 200 with applied=false.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read body")
		return
	}
	cmd, err := automation.ParseCommand(body, automation.SourceAPI)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	res, err := s.ctrl.Submit(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleIntent resolves a text, gesture or explicit-kind intent and runs it.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req controller.IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	i, err := req.Resolve()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reply, err := s.ctrl.HandleIntent(r.Context(), i)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

type emergencyRequest struct {
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

// handleListEmergencies returns the retained emergency events, oldest first.
func (s *Server) handleListEmergencies(w http.ResponseWriter, _ *http.Request) {
	if s.events == nil {
		writeUnavailable(w, "emergency log not configured")
		return
	}
	events := s.events.Events()
	writeJSON(w, http.StatusOK, map[string]any{
		"events":  events,
		"count":   len(events),
		"tripped": s.ctrl.State().Tripped,
	})
}

// handleTriggerEmergency trips the emergency stop. An empty reason is
// treated as manual. The control loop records the audit entry.
func (s *Server) handleTriggerEmergency(w http.ResponseWriter, r *http.Request) {
	var req emergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	reason, err := emergency.ParseReason(req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	e, err := s.ctrl.Emergency(r.Context(), reason, req.Detail)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleRestore clears a tripped emergency stop.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	e, err := s.ctrl.Restore(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
