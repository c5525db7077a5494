package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
)

// Lister supplies schedules in application order. Registry implements it.
type Lister interface {
	ListSchedules(ctx context.Context) ([]Schedule, error)
}

// Actuators is the command surface the engine drives.
type Actuators interface {
	SetFan(speed actuator.FanSpeed) bool
	SetWindowOpening(pct int) bool
	SetDoorState(target actuator.DoorState) bool
}

// Engine evaluates schedules against the wall clock.
//
// Engine is not safe for concurrent use; the control loop owns it.
type Engine struct {
	schedules Lister
	actuators Actuators
	loc       *time.Location
	logger    Logger

	// active is each schedule's state at the previous tick.
	active map[string]bool
	// overrides holds, per device, the active state of its schedules when
	// the manual command arrived.
	overrides map[actuator.Device]map[string]bool
}

// NewEngine creates an engine evaluating hours in loc (UTC when nil).
func NewEngine(schedules Lister, actuators Actuators, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		schedules: schedules,
		actuators: actuators,
		loc:       loc,
		logger:    noopLogger{},
		active:    make(map[string]bool),
		overrides: make(map[actuator.Device]map[string]bool),
	}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// Override holds d away from schedule writes until one of its schedules
// next changes between active and inactive.
func (e *Engine) Override(d actuator.Device) {
	held := make(map[string]bool, len(e.active))
	for id, active := range e.active {
		held[id] = active
	}
	e.overrides[d] = held
	e.logger.Debug("schedule override set", "device", d)
}

// ClearOverride releases a manual override.
func (e *Engine) ClearOverride(d actuator.Device) {
	delete(e.overrides, d)
}

// Overridden reports whether d is under manual override.
func (e *Engine) Overridden(d actuator.Device) bool {
	_, ok := e.overrides[d]
	return ok
}

// Tick applies every enabled schedule for the hour of now in the engine's
// location. Disabled schedules are skipped entirely.
func (e *Engine) Tick(ctx context.Context, now time.Time) ([]Decision, error) {
	schedules, err := e.schedules.ListSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}

	hour := now.In(e.loc).Hour()
	seen := make(map[string]bool, len(schedules))
	decisions := make([]Decision, 0, len(schedules))

	for i := range schedules {
		s := &schedules[i]
		if !s.Enabled {
			continue
		}
		active := s.IsActive(hour)
		seen[s.ID] = active
		e.checkOverride(s, active)
	}

	for i := range schedules {
		s := &schedules[i]
		if !s.Enabled {
			continue
		}
		active := seen[s.ID]

		p := DefaultPayload(s.Device)
		if active {
			payload, err := s.Payload()
			if err != nil {
				e.logger.Warn("skipping schedule with bad payload", "id", s.ID, "error", err)
				continue
			}
			p = payload
		}

		d := Decision{ScheduleID: s.ID, Device: s.Device, Active: active, Payload: p}
		if e.Overridden(s.Device) {
			d.Overridden = true
		} else {
			d.Applied = e.apply(p)
		}
		decisions = append(decisions, d)
	}

	e.active = seen
	return decisions, nil
}

// checkOverride releases the override on s's device when s has flipped
// since the override began.
func (e *Engine) checkOverride(s *Schedule, active bool) {
	held, ok := e.overrides[s.Device]
	if !ok {
		return
	}
	was, known := held[s.ID]
	if !known {
		held[s.ID] = active
		return
	}
	if was != active {
		delete(e.overrides, s.Device)
		e.logger.Info("schedule override released", "device", s.Device, "schedule", s.ID, "active", active)
	}
}

func (e *Engine) apply(p Payload) bool {
	switch p.Device {
	case actuator.DeviceFan:
		return e.actuators.SetFan(p.Fan)
	case actuator.DeviceWindow:
		return e.actuators.SetWindowOpening(p.Window)
	case actuator.DeviceDoor:
		return e.actuators.SetDoorState(p.Door)
	}
	return false
}

// Active reports the state of schedule id at the last tick.
func (e *Engine) Active(id string) bool {
	return e.active[id]
}
