package automation

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/display"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/mode"
	"github.com/nerrad567/hearth/internal/scene"
	"github.com/nerrad567/hearth/internal/schedule"
	"github.com/nerrad567/hearth/internal/sensor"
)

// Logger is the logging interface used by the automation package.
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

// Actuators is the actuator surface the engine drives. *actuator.Controller
// implements it.
type Actuators interface {
	SetMode(f mode.Flag, on bool) (bool, error)
	SetDoorState(target actuator.DoorState) bool
	AutoCloseDoor(delay time.Duration) bool
	SetWindowOpening(pct int) bool
	SetFan(speed actuator.FanSpeed) bool
	SetLight(brightness int, fade time.Duration) bool
	SetLightMode(m actuator.LightMode) bool
	SetLightColor(c colorful.Color) bool
	StartLightShow(p actuator.Pattern, d time.Duration) bool
	TriggerBuzzer(d time.Duration, freqHz int) bool
	SetComfortTemperature(t float64) bool
	UpdateFanControl(tempC, humidity, threshold float64) (actuator.FanSpeed, bool)
	Snapshot() actuator.Snapshot
}

// Emergency trips the emergency shutdown.
type Emergency interface {
	Trigger(ctx context.Context, reason emergency.Reason, detail string) emergency.Event
}

// Schedules is the schedule store UPDATE_SCHEDULE edits.
type Schedules interface {
	GetSchedule(ctx context.Context, id string) (*schedule.Schedule, error)
	CreateSchedule(ctx context.Context, s *schedule.Schedule) error
	UpdateSchedule(ctx context.Context, s *schedule.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// Overrides holds devices away from schedule writes after a manual command.
type Overrides interface {
	Override(d actuator.Device)
}

// Scenes activates and times scenes.
type Scenes interface {
	Activate(ctx context.Context, ref string) (scene.Activation, error)
	ScheduleScene(ctx context.Context, ref string, hour, minute int) (scene.Timer, error)
	CancelSchedule(ctx context.Context, ref string) error
}

// SceneStore looks up and rewrites scenes for SCENE_CONTROL optimize.
type SceneStore interface {
	Resolve(ctx context.Context, ref string) (*scene.Scene, error)
	UpdateScene(ctx context.Context, s *scene.Scene) error
}

// Defaults for CONTROL_DEVICE commands that omit a parameter.
const (
	DefaultBuzzerDuration = time.Second
	DefaultBuzzerFreqHz   = 2000
	DefaultShowDuration   = 30 * time.Second
)

// Options wires the engine. Nil subsystems make the commands that need
// them fail with ErrUnavailable.
type Options struct {
	Thresholds Thresholds
	Rules      Rules

	// AutoCloseDelay re-locks the door this long after an unlock command.
	// Zero disables auto-close.
	AutoCloseDelay time.Duration

	// LightFade is the fade for light commands without a fade parameter.
	LightFade time.Duration

	// WrapMidnight is the default for schedules created without a
	// wrap_midnight parameter.
	WrapMidnight bool

	Schedules  Schedules
	Overrides  Overrides
	Scenes     Scenes
	SceneStore SceneStore
	Emergency  Emergency
	Display    display.Sink

	// Location is the site timezone. Defaults to UTC.
	Location *time.Location
	Clock    func() time.Time
	Logger   Logger
}

// Engine dispatches commands and runs the sensor rules. Handle and
// Evaluate must be called from the goroutine that owns the actuators;
// Thresholds, Rules, Energy and Comfort may be read from any goroutine.
type Engine struct {
	act  Actuators
	opts Options
	log  Logger

	mu         sync.RWMutex
	thresholds Thresholds
	rules      Rules
	energy     EnergyStats
	comfort    float64

	lastReading sensor.Reading
	haveReading bool
	motions     []time.Time
	motionAlert bool
	ventilating bool
	energyAt    time.Time
	energyDay   string
}

// NewEngine creates an engine over act.
func NewEngine(act Actuators, opts Options) *Engine {
	if opts.Thresholds == (Thresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	if opts.Rules == nil {
		opts.Rules = AllRules()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Display == nil {
		opts.Display = display.Multi{}
	}

	return &Engine{
		act:        act,
		opts:       opts,
		log:        opts.Logger,
		thresholds: opts.Thresholds,
		rules:      opts.Rules.clone(),
		energy:     EnergyStats{BaselineW: BaselineConsumptionW},
	}
}

// Thresholds returns the current thresholds.
func (e *Engine) Thresholds() Thresholds {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.thresholds
}

// Rules returns which rules are enabled.
func (e *Engine) Rules() Rules {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.clone()
}

func (e *Engine) ruleOn(r Rule) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules[r]
}

// Handle executes cmd. The command must have been normalised (ParseCommand
// or Command.Normalize). Errors mean the command was malformed or a store
// failed; a guard refusing the change returns Applied false and no error.
func (e *Engine) Handle(ctx context.Context, cmd Command) (Result, error) {
	res := Result{CommandID: cmd.ID, Type: cmd.Type, Target: cmd.Target}

	var err error
	switch cmd.Type {
	case SetMode:
		err = e.handleSetMode(cmd, &res)
	case SetThreshold:
		err = e.handleSetThreshold(cmd, &res)
	case ControlDevice:
		err = e.handleControlDevice(cmd, &res)
	case UpdateSchedule:
		err = e.handleUpdateSchedule(ctx, cmd, &res)
	case SceneControl:
		err = e.handleSceneControl(ctx, cmd, &res)
	case AutomationRule:
		err = e.handleRule(cmd, &res)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownType, cmd.Type)
	}
	if err != nil {
		return res, err
	}

	if !res.Applied && res.Message == "" {
		res.Message = "rejected by current mode or device state"
	}
	e.log.Debug("command handled", "id", cmd.ID, "type", cmd.Type, "target", cmd.Target,
		"source", cmd.Source, "applied", res.Applied)
	return res, nil
}

func (e *Engine) handleSetMode(cmd Command, res *Result) error {
	f, err := mode.ParseFlag(cmd.Target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownTarget, err)
	}
	on, err := cmd.Value.Bool()
	if err != nil {
		return err
	}
	applied, err := e.act.SetMode(f, on)
	if err != nil {
		return err
	}
	res.Applied = applied
	return nil
}

// handleSetThreshold validates on a copy and commits only once the change
// is accepted. A target_temperature rejected by the actuators leaves the
// thresholds untouched.
func (e *Engine) handleSetThreshold(cmd Command, res *Result) error {
	v, err := cmd.Value.Float()
	if err != nil {
		return err
	}

	next := e.Thresholds()
	if err := next.Set(cmd.Target, v); err != nil {
		return err
	}
	if cmd.Target == "target_temperature" && !e.act.SetComfortTemperature(v) {
		return nil
	}

	e.mu.Lock()
	e.thresholds = next
	e.mu.Unlock()
	res.Applied = true
	return nil
}

func (e *Engine) handleControlDevice(cmd Command, res *Result) error {
	switch cmd.Target {
	case TargetLightMode:
		m, err := actuator.ParseLightMode(string(cmd.Value))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		res.Applied = e.act.SetLightMode(m)
		return nil

	case TargetLightColor:
		c, err := colorful.Hex(string(cmd.Value))
		if err != nil {
			return fmt.Errorf("%w: colour %q", ErrInvalidValue, string(cmd.Value))
		}
		res.Applied = e.act.SetLightColor(c)
		return nil

	case TargetLightShow:
		p, err := actuator.ParsePattern(string(cmd.Value))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		d, err := durationParam(cmd, "duration", DefaultShowDuration)
		if err != nil {
			return err
		}
		res.Applied = e.act.StartLightShow(p, d)
		return nil
	}

	d, err := actuator.ParseDevice(cmd.Target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownTarget, err)
	}

	switch d {
	case actuator.DeviceDoor:
		state, err := actuator.ParseDoorState(string(cmd.Value))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		res.Applied = e.act.SetDoorState(state)
		if res.Applied && state != actuator.DoorLocked && e.opts.AutoCloseDelay > 0 {
			if e.act.AutoCloseDoor(e.opts.AutoCloseDelay) {
				res.Message = "door will lock again in " + e.opts.AutoCloseDelay.String()
			}
		}

	case actuator.DeviceWindow:
		pct, err := cmd.Value.Int()
		if err != nil {
			return err
		}
		res.Applied = e.act.SetWindowOpening(pct)

	case actuator.DeviceFan:
		speed, err := actuator.ParseFanSpeed(string(cmd.Value))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		res.Applied = e.act.SetFan(speed)

	case actuator.DeviceLight:
		brightness, err := lightLevel(cmd.Value)
		if err != nil {
			return err
		}
		fade, err := durationParam(cmd, "fade", e.opts.LightFade)
		if err != nil {
			return err
		}
		res.Applied = e.act.SetLight(brightness, fade)

	case actuator.DeviceBuzzer:
		dur := DefaultBuzzerDuration
		if cmd.Value != "" {
			if dur, err = time.ParseDuration(string(cmd.Value)); err != nil {
				return fmt.Errorf("%w: buzzer duration %q", ErrInvalidValue, string(cmd.Value))
			}
		}
		freq := DefaultBuzzerFreqHz
		if p := cmd.Param("freq_hz"); p != "" {
			if freq, err = strconv.Atoi(p); err != nil || freq <= 0 {
				return fmt.Errorf("%w: freq_hz %q", ErrInvalidValue, p)
			}
		}
		res.Applied = e.act.TriggerBuzzer(dur, freq)
	}

	if res.Applied && cmd.Source != SourceSystem && e.opts.Overrides != nil {
		switch d {
		case actuator.DeviceDoor, actuator.DeviceWindow, actuator.DeviceFan:
			e.opts.Overrides.Override(d)
		}
	}
	return nil
}

// lightLevel accepts a brightness 0..255, "on" or "off".
func lightLevel(v Value) (int, error) {
	switch string(v) {
	case "on", "ON", "true":
		return 255, nil
	case "off", "OFF", "false":
		return 0, nil
	}
	n, err := v.Int()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%w: brightness %d must be 0-255", ErrInvalidValue, n)
	}
	return n, nil
}

func durationParam(cmd Command, key string, def time.Duration) (time.Duration, error) {
	p := cmd.Param(key)
	if p == "" {
		return def, nil
	}
	d, err := time.ParseDuration(p)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidValue, key, p)
	}
	return d, nil
}

func (e *Engine) handleUpdateSchedule(ctx context.Context, cmd Command, res *Result) error {
	store := e.opts.Schedules
	if store == nil {
		return fmt.Errorf("%w: schedules", ErrUnavailable)
	}

	switch string(cmd.Value) {
	case ScheduleCreate:
		s := &schedule.Schedule{
			ID:           cmd.Target,
			Enabled:      true,
			WrapMidnight: e.opts.WrapMidnight,
		}
		if err := applyScheduleParams(s, cmd.Parameters); err != nil {
			return err
		}
		if err := store.CreateSchedule(ctx, s); err != nil {
			return err
		}
		res.Data = s
		res.Target = s.ID

	case ScheduleUpdate, ScheduleEnable, ScheduleDisable:
		s, err := store.GetSchedule(ctx, cmd.Target)
		if err != nil {
			return err
		}
		switch string(cmd.Value) {
		case ScheduleEnable:
			s.Enabled = true
		case ScheduleDisable:
			s.Enabled = false
		default:
			if err := applyScheduleParams(s, cmd.Parameters); err != nil {
				return err
			}
		}
		if err := store.UpdateSchedule(ctx, s); err != nil {
			return err
		}
		res.Data = s

	case ScheduleDelete:
		if err := store.DeleteSchedule(ctx, cmd.Target); err != nil {
			return err
		}
	}

	res.Applied = true
	return nil
}

// applyScheduleParams copies the parameters present onto s.
func applyScheduleParams(s *schedule.Schedule, params map[string]string) error {
	for key, raw := range params {
		switch key {
		case "name":
			s.Name = raw
		case "device":
			d, err := actuator.ParseDevice(raw)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}
			s.Device = d
		case "value":
			s.Value = raw
		case "start_hour", "end_hour":
			h, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("%w: %s %q", ErrInvalidValue, key, raw)
			}
			if key == "start_hour" {
				s.StartHour = h
			} else {
				s.EndHour = h
			}
		case "enabled", "wrap_midnight":
			b, err := Value(raw).Bool()
			if err != nil {
				return err
			}
			if key == "enabled" {
				s.Enabled = b
			} else {
				s.WrapMidnight = b
			}
		default:
			return fmt.Errorf("%w: unknown schedule parameter %q", ErrInvalidCommand, key)
		}
	}
	return nil
}

func (e *Engine) handleSceneControl(ctx context.Context, cmd Command, res *Result) error {
	if e.opts.Scenes == nil {
		return fmt.Errorf("%w: scenes", ErrUnavailable)
	}

	switch string(cmd.Value) {
	case SceneActivate:
		a, err := e.opts.Scenes.Activate(ctx, cmd.Target)
		if err != nil {
			return err
		}
		res.Applied = a.Fully()
		res.Data = a
		if !res.Applied {
			res.Message = "scene partly applied"
		}

	case SceneSchedule:
		hour, err := strconv.Atoi(cmd.Param("hour"))
		if err != nil {
			return fmt.Errorf("%w: hour %q", ErrInvalidValue, cmd.Param("hour"))
		}
		minute := 0
		if p := cmd.Param("minute"); p != "" {
			if minute, err = strconv.Atoi(p); err != nil {
				return fmt.Errorf("%w: minute %q", ErrInvalidValue, p)
			}
		}
		t, err := e.opts.Scenes.ScheduleScene(ctx, cmd.Target, hour, minute)
		if err != nil {
			return err
		}
		res.Applied = true
		res.Data = t

	case SceneCancel:
		if err := e.opts.Scenes.CancelSchedule(ctx, cmd.Target); err != nil {
			return err
		}
		res.Applied = true

	case SceneOptimize:
		if e.opts.SceneStore == nil {
			return fmt.Errorf("%w: scene store", ErrUnavailable)
		}
		s, err := e.opts.SceneStore.Resolve(ctx, cmd.Target)
		if err != nil {
			return err
		}
		r := e.lastReading
		if !e.haveReading {
			r = sensor.Nominal()
		}
		hour := e.opts.Clock().In(e.opts.Location).Hour()
		optimized := scene.Optimize(*s, hour, r.LightLevel, r.Temperature)
		if err := e.opts.SceneStore.UpdateScene(ctx, &optimized); err != nil {
			return err
		}
		res.Applied = true
		res.Data = map[string]any{"scene": optimized, "efficiency": scene.Efficiency(optimized)}
	}
	return nil
}

func (e *Engine) handleRule(cmd Command, res *Result) error {
	on, err := cmd.Value.Bool()
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rules[Rule(cmd.Target)] = on
	e.mu.Unlock()

	e.log.Info("automation rule switched", "rule", cmd.Target, "enabled", on)
	res.Applied = true
	return nil
}
