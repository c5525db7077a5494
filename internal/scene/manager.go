package scene

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
)

// Resolver finds scenes by ID, slug or name. Registry implements it.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*Scene, error)
}

// Actuators is the actuator surface a scene drives. Each call returns
// false on a soft rejection.
type Actuators interface {
	SetComfortTemperature(t float64) bool
	SetLightMode(m actuator.LightMode) bool
	SetLight(brightness int, fade time.Duration) bool
	SetFan(speed actuator.FanSpeed) bool
	SetWindowOpening(pct int) bool
}

// Manager activates scenes and fires daily scene timers. Activate and Tick
// drive the actuators and must run on the goroutine that owns them; timer
// management is safe from any goroutine.
type Manager struct {
	scenes     Resolver
	act        Actuators
	transition time.Duration
	loc        *time.Location
	clock      func() time.Time
	logger     Logger

	mu       sync.Mutex
	timers   []Timer
	lastTick time.Time
	last     *Activation
}

// NewManager creates a scene manager. The light fades over transition.
// Timers use loc; nil means UTC.
func NewManager(scenes Resolver, act Actuators, transition time.Duration, loc *time.Location) *Manager {
	if loc == nil {
		loc = time.UTC
	}
	return &Manager{
		scenes:     scenes,
		act:        act,
		transition: transition,
		loc:        loc,
		clock:      time.Now,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Activate applies the scene named by ref (ID, slug or name).
func (m *Manager) Activate(ctx context.Context, ref string) (Activation, error) {
	return m.activate(ctx, ref, TriggerManual, m.clock())
}

func (m *Manager) activate(ctx context.Context, ref, trigger string, now time.Time) (Activation, error) {
	s, err := m.scenes.Resolve(ctx, ref)
	if err != nil {
		return Activation{}, err
	}
	if !s.Enabled {
		return Activation{}, fmt.Errorf("%w: %s", ErrSceneDisabled, s.Name)
	}

	a := Activation{
		SceneID:     s.ID,
		Name:        s.Name,
		Trigger:     trigger,
		ActivatedAt: now,
		Applied:     make(map[string]bool, 5),
	}

	a.Applied["temperature"] = m.act.SetComfortTemperature(s.Temperature)
	a.Applied["light_mode"] = m.act.SetLightMode(s.LightMode)
	if s.LightMode != actuator.LightParty && s.LightMode != actuator.LightAlert {
		a.Applied["light"] = m.act.SetLight(s.LightLevel, m.transition)
	}
	a.Applied["fan"] = m.act.SetFan(s.FanSpeed)
	a.Applied["window"] = m.act.SetWindowOpening(s.WindowOpening)

	m.mu.Lock()
	m.last = &a
	m.mu.Unlock()

	m.logger.Info("scene activated", "scene", s.Name, "trigger", trigger, "fully_applied", a.Fully())
	return a, nil
}

// LastActivation returns the most recent activation, if any.
func (m *Manager) LastActivation() (Activation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return Activation{}, false
	}
	return *m.last, true
}

// ScheduleScene activates the scene named by ref every day at hour:minute
// site time. Scheduling a scene again replaces its previous time.
func (m *Manager) ScheduleScene(ctx context.Context, ref string, hour, minute int) (Timer, error) {
	if err := ValidateTime(hour, minute); err != nil {
		return Timer{}, err
	}
	s, err := m.scenes.Resolve(ctx, ref)
	if err != nil {
		return Timer{}, err
	}

	t := Timer{Scene: s.ID, Hour: hour, Minute: minute}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.timers {
		if m.timers[i].Scene == s.ID {
			m.timers[i] = t
			return t, nil
		}
	}
	m.timers = append(m.timers, t)
	return t, nil
}

// CancelSchedule removes the timer for the scene named by ref.
func (m *Manager) CancelSchedule(ctx context.Context, ref string) error {
	s, err := m.scenes.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.timers {
		if m.timers[i].Scene == s.ID {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no timer for %s", ErrSceneNotFound, s.Name)
}

// Timers returns the scheduled activations.
func (m *Manager) Timers() []Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Timer, len(m.timers))
	copy(out, m.timers)
	return out
}

// Tick fires every timer whose time of day fell in (previous tick, now].
// Each timer fires at most once per site-local day. The first tick looks
// back one minute.
func (m *Manager) Tick(ctx context.Context, now time.Time) []Activation {
	m.mu.Lock()
	prev := m.lastTick
	if prev.IsZero() || !prev.Before(now) {
		prev = now.Add(-time.Minute)
	}
	m.lastTick = now

	var due []string
	for i := range m.timers {
		t := &m.timers[i]
		fire, day := t.due(prev, now, m.loc)
		if fire && t.lastFired != day {
			t.lastFired = day
			due = append(due, t.Scene)
		}
	}
	m.mu.Unlock()

	var fired []Activation
	for _, id := range due {
		a, err := m.activate(ctx, id, TriggerSchedule, now)
		if err != nil {
			m.logger.Warn("scheduled scene not activated", "scene", id, "error", err)
			continue
		}
		fired = append(fired, a)
	}
	return fired
}

// due reports whether the timer's time of day lies in (prev, now] and the
// local date it fell on.
func (t Timer) due(prev, now time.Time, loc *time.Location) (bool, string) {
	local := now.In(loc)
	for _, offset := range []int{0, -1} {
		day := local.AddDate(0, 0, offset)
		at := time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, loc)
		if at.After(prev) && !at.After(now) {
			return true, at.Format(time.DateOnly)
		}
	}
	return false, ""
}

// Efficiency scores a scene's energy use from 0 (wasteful) to 100.
func Efficiency(s Scene) float64 {
	use := float64(s.LightLevel)/255 +
		float64(s.FanSpeed.Ordinal())/3 +
		math.Abs(s.Temperature-22)/10
	return math.Max(0, math.Min(100, 100-use*33.33))
}

// Optimize returns s tuned for the time of day and conditions: 20 °C at
// night (22:00-06:00) and 23 °C otherwise, light scaled inversely with
// natural light (0..1000 maps to 255..50), and fan speed from how far the
// current temperature is above the new set-point. A NaN reading leaves
// that setting unchanged.
func Optimize(s Scene, hour int, naturalLight, currentTemp float64) Scene {
	if hour >= 22 || hour < 6 {
		s.Temperature = 20
	} else {
		s.Temperature = 23
	}

	if !math.IsNaN(naturalLight) {
		n := math.Max(0, math.Min(1000, naturalLight))
		s.LightLevel = int(math.Round(255 - n*205/1000))
	}

	if !math.IsNaN(currentTemp) {
		switch {
		case currentTemp > s.Temperature+2:
			s.FanSpeed = actuator.FanHigh
		case currentTemp > s.Temperature:
			s.FanSpeed = actuator.FanMedium
		default:
			s.FanSpeed = actuator.FanLow
		}
	}
	return s
}
