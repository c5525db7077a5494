package emergency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownReason is returned when parsing an unrecognised reason.
var ErrUnknownReason = errors.New("emergency: unknown reason")

// Reason classifies why an emergency was triggered.
type Reason string

// Reasons.
const (
	ReasonManual        Reason = "manual"
	ReasonSecurity      Reason = "security"
	ReasonEnvironmental Reason = "environmental_hazard"
	ReasonHardwareFault Reason = "hardware_fault"
)

// ParseReason converts a wire name into a Reason. Empty means manual.
func ParseReason(s string) (Reason, error) {
	switch r := Reason(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return ReasonManual, nil
	case ReasonManual, ReasonSecurity, ReasonEnvironmental, ReasonHardwareFault:
		return r, nil
	case "environmental", "hazard":
		return ReasonEnvironmental, nil
	case "hardware":
		return ReasonHardwareFault, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReason, s)
}

// Event kinds.
const (
	KindTrigger = "trigger"
	KindRestore = "restore"
)

// Event records one trigger or restore.
type Event struct {
	ID     string    `json:"id"`
	Kind   string    `json:"kind"`
	Reason Reason    `json:"reason,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Message is the operator-facing text for the event.
func (e Event) Message() string {
	if e.Kind == KindRestore {
		return "System restored"
	}
	msg := "EMERGENCY: " + strings.ToUpper(strings.ReplaceAll(string(e.Reason), "_", " "))
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	return msg
}

// Actuators is the safe-state surface of the actuator controller.
type Actuators interface {
	EmergencyShutdown()
	RestoreSystem()
}

// Notifier receives every event after the actuators have been handled.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, e Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, e Event) error { return f(ctx, e) }

// Logger is the logging interface used by the emergency package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DefaultHistorySize is the number of events kept in memory.
const DefaultHistorySize = 100

// Controller triggers and restores the safe state.
//
// Trigger and Restore must run on the goroutine that owns the actuators.
// Events and Tripped are safe to call from any goroutine.
type Controller struct {
	actuators Actuators
	notifiers []Notifier
	logger    Logger
	clock     func() time.Time

	mu      sync.RWMutex
	events  []Event
	max     int
	tripped bool
}

// Options configures a Controller.
type Options struct {
	Notifiers   []Notifier
	HistorySize int
	Clock       func() time.Time
	Logger      Logger
}

// New creates an emergency controller.
func New(actuators Actuators, opts Options) *Controller {
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	return &Controller{
		actuators: actuators,
		notifiers: opts.Notifiers,
		logger:    opts.Logger,
		clock:     opts.Clock,
		max:       opts.HistorySize,
	}
}

// Trigger forces the safe state. It always runs, even when already
// tripped, and returns the recorded event.
func (c *Controller) Trigger(ctx context.Context, reason Reason, detail string) Event {
	if reason == "" {
		reason = ReasonManual
	}

	c.actuators.EmergencyShutdown()

	e := c.record(Event{Kind: KindTrigger, Reason: reason, Detail: detail}, true)
	c.logger.Error("emergency triggered", "reason", reason, "detail", detail, "event_id", e.ID)
	c.notify(ctx, e)
	return e
}

// Restore re-enables commands. Devices stay in the safe state.
func (c *Controller) Restore(ctx context.Context) Event {
	c.actuators.RestoreSystem()

	e := c.record(Event{Kind: KindRestore}, false)
	c.logger.Info("emergency restored", "event_id", e.ID)
	c.notify(ctx, e)
	return e
}

func (c *Controller) record(e Event, tripped bool) Event {
	e.ID = uuid.NewString()
	e.At = c.clock().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tripped = tripped
	c.events = append(c.events, e)
	if over := len(c.events) - c.max; over > 0 {
		c.events = append(c.events[:0:0], c.events[over:]...)
	}
	return e
}

// AddNotifier registers n for future events.
func (c *Controller) AddNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifiers = append(c.notifiers, n)
}

func (c *Controller) notify(ctx context.Context, e Event) {
	c.mu.RLock()
	notifiers := append([]Notifier(nil), c.notifiers...)
	c.mu.RUnlock()

	for _, n := range notifiers {
		if err := n.Notify(ctx, e); err != nil {
			c.logger.Warn("emergency notifier failed", "kind", e.Kind, "error", err)
		}
	}
}

// Tripped reports whether the last event was a trigger.
func (c *Controller) Tripped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tripped
}

// Events returns the recorded events, oldest first.
func (c *Controller) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
