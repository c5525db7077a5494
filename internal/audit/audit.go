// Package audit records operator-visible actions (commands, mode changes,
// emergencies, schedule and scene edits) in the audit_logs table.
package audit

import (
	"context"
	"time"
)

// Actions.
const (
	ActionCommand   = "command"
	ActionMode      = "mode"
	ActionEmergency = "emergency"
	ActionRestore   = "restore"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionDelete    = "delete"
	ActionActivate  = "activate"
)

// Entity types.
const (
	EntityDevice   = "device"
	EntitySystem   = "system"
	EntitySchedule = "schedule"
	EntityScene    = "scene"
)

// Entry is a single audit trail row.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	Source     string
	Since      time.Time
	Limit      int // default 50, max 200
	Offset     int
}

// Page is one page of List results.
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository stores audit entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) (*Page, error)
}

// Logger is the logging interface used by the audit package.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Recorder writes entries without failing the caller. A nil Recorder
// records nothing.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a Recorder over repo.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{repo: repo, logger: logger}
}

// Record stores an entry; failures are logged.
func (r *Recorder) Record(ctx context.Context, action, entityType, entityID, source string, details map[string]any) {
	if r == nil || r.repo == nil {
		return
	}
	e := &Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Source:     source,
		Details:    details,
	}
	if err := r.repo.Create(ctx, e); err != nil {
		r.logger.Warn("audit write failed", "action", action, "entity_type", entityType, "error", err)
	}
}
