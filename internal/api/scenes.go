package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/nerrad567/hearth/internal/audit"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/scene"
)

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeUnavailable(w, "scenes not configured")
		return
	}
	list, err := s.scenes.ListScenes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": list, "count": len(list)})
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeUnavailable(w, "scenes not configured")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid scene ID")
		return
	}
	sc, err := s.scenes.GetScene(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeUnavailable(w, "scenes not configured")
		return
	}
	var sc scene.Scene
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.scenes.CreateScene(r.Context(), &sc); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(audit.ActionCreate, audit.EntityScene, sc.ID, map[string]any{"slug": sc.Slug})
	writeJSON(w, http.StatusCreated, sc)
}

// handleUpdateScene decodes a partial update onto the stored scene.
func (s *Server) handleUpdateScene(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeUnavailable(w, "scenes not configured")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid scene ID")
		return
	}
	existing, err := s.scenes.GetScene(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id

	if err := s.scenes.UpdateScene(r.Context(), existing); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(audit.ActionUpdate, audit.EntityScene, id, nil)
	writeJSON(w, http.StatusOK, existing)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	if s.scenes == nil {
		writeUnavailable(w, "scenes not configured")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid scene ID")
		return
	}
	if err := s.scenes.DeleteScene(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	s.auditLog(audit.ActionDelete, audit.EntityScene, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// sceneActionRequest is the optional body of POST /scenes/{id}/activate.
// Action defaults to activate; schedule needs Hour.
type sceneActionRequest struct {
	Action string `json:"action"`
	Hour   *int   `json:"hour,omitempty"`
	Minute *int   `json:"minute,omitempty"`
}

// handleActivateScene routes scene control through the control loop so
// activation is serialised with every other actuator change. The id may
// be a scene ID or slug.
func (s *Server) handleActivateScene(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid scene ID")
		return
	}
	var req sceneActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Action == "" {
		req.Action = automation.SceneActivate
	}

	cmd := automation.Command{
		Type:   automation.SceneControl,
		Target: id,
		Value:  automation.Value(req.Action),
		Source: automation.SourceAPI,
	}
	if req.Hour != nil {
		cmd.Parameters = map[string]string{"hour": strconv.Itoa(*req.Hour)}
		if req.Minute != nil {
			cmd.Parameters["minute"] = strconv.Itoa(*req.Minute)
		}
	}

	res, err := s.ctrl.Submit(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
