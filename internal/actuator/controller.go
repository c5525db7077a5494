package actuator

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/nerrad567/hearth/internal/hardware"
	"github.com/nerrad567/hearth/internal/mode"
)

// Logger is the logging interface used by the actuator package.
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

// Outputs holds the attached channels. A nil channel marks its device
// inactive. Strip is optional.
type Outputs struct {
	Door   hardware.Channel
	Window hardware.Channel
	Fan    hardware.Channel
	Light  hardware.Channel
	Buzzer hardware.Channel
	Strip  hardware.Strip
}

func (o Outputs) channel(d Device) hardware.Channel {
	switch d {
	case DeviceDoor:
		return o.Door
	case DeviceWindow:
		return o.Window
	case DeviceFan:
		return o.Fan
	case DeviceLight:
		return o.Light
	case DeviceBuzzer:
		return o.Buzzer
	}
	return nil
}

// Options tunes motion timing and failure handling.
type Options struct {
	// DoorTravel, WindowTravel and FanTravel are full-range travel times.
	// Shorter moves take proportionally less. Zero moves immediately.
	DoorTravel   time.Duration
	WindowTravel time.Duration
	FanTravel    time.Duration

	// LightFade is the default fade used by mode presets.
	LightFade time.Duration

	// SystemWideFailure clears system-active when any output is missing,
	// instead of marking only that device inactive.
	SystemWideFailure bool

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	Logger Logger
}

// Durations for shows started by light modes.
const (
	partyShowDuration = 4 * time.Hour
	alertShowDuration = 30 * time.Second
)

// LightState is the commanded light output.
type LightState struct {
	Brightness int            `json:"brightness"`
	Mode       LightMode      `json:"mode"`
	Color      colorful.Color `json:"-"`
}

// Controller is the authoritative actuator state.
type Controller struct {
	out    Outputs
	opts   Options
	policy *mode.Policy
	logger Logger
	clock  func() time.Time

	door        DoorState
	doorTarget  DoorState
	doorQueued  *DoorState
	lastDoorOp  time.Time
	window      int
	fan         FanSpeed
	light       LightState
	show        LightShow
	buzzerOn    bool
	buzzerUntil time.Time
	autoCloseAt time.Time

	motions map[Device]*motion
	version uint64
}

// New creates a Controller over the given outputs. Every output starts at
// the bottom of its range with the door locked.
func New(out Outputs, policy *mode.Policy, opts Options) *Controller {
	if policy == nil {
		policy = mode.NewPolicy(mode.DefaultTemperature)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	c := &Controller{
		out:     out,
		opts:    opts,
		policy:  policy,
		logger:  opts.Logger,
		clock:   opts.Clock,
		light:   LightState{Mode: LightNormal, Color: colorful.Color{R: 1, G: 1, B: 1}},
		motions: make(map[Device]*motion),
	}

	for _, d := range Devices {
		if !c.DeviceActive(d) {
			c.logger.Warn("output unavailable, device inactive", "device", d)
			if opts.SystemWideFailure {
				c.logger.Error("system disabled by output failure", "device", d)
				policy.Shutdown()
			}
		}
	}

	return c
}

func (c *Controller) now() time.Time { return c.clock() }

func (c *Controller) changed() { c.version++ }

// Version increases on every state change. The control loop uses it to
// decide when to publish.
func (c *Controller) Version() uint64 { return c.version }

// Modes returns the current mode set.
func (c *Controller) Modes() mode.Set { return c.policy.Modes() }

// SystemActive reports whether mutators are accepted.
func (c *Controller) SystemActive() bool { return mode.CanActuate(c.policy.Modes()) }

// DeviceActive reports whether the device's output attached. The light
// counts as active when either the dimmer or the strip is present.
func (c *Controller) DeviceActive(d Device) bool {
	if d == DeviceLight && c.out.Strip != nil {
		return true
	}
	return c.out.channel(d) != nil
}

// DoorState returns the committed door state.
func (c *Controller) DoorState() DoorState { return c.door }

// DoorTarget returns the door state being moved to, or the committed state
// when the door is idle.
func (c *Controller) DoorTarget() DoorState { return c.doorTarget }

// LastDoorOperation returns when the door last committed a new state.
func (c *Controller) LastDoorOperation() time.Time { return c.lastDoorOp }

// WindowOpening returns the commanded opening in percent.
func (c *Controller) WindowOpening() int { return c.window }

// Fan returns the commanded fan speed.
func (c *Controller) Fan() FanSpeed { return c.fan }

// Light returns the commanded light state.
func (c *Controller) Light() LightState { return c.light }

// LightShow returns the current show.
func (c *Controller) LightShow() LightShow { return c.show }

// Buzzer reports whether the buzzer is sounding.
func (c *Controller) Buzzer() bool { return c.buzzerOn }

// AutoCloseAt returns the armed auto-close deadline, zero when disarmed.
func (c *Controller) AutoCloseAt() time.Time { return c.autoCloseAt }

// Moving reports whether d has motion in progress.
func (c *Controller) Moving(d Device) bool {
	_, ok := c.motions[d]
	return ok
}

// TargetTemperature returns the comfort set-point after mode adjustments.
func (c *Controller) TargetTemperature() float64 { return c.policy.TargetTemperature() }

// SetComfortTemperature replaces the base comfort set-point.
func (c *Controller) SetComfortTemperature(t float64) bool {
	if !c.guard("comfort", mode.CanActuate(c.Modes())) {
		return false
	}
	if c.policy.BaseTemperature() != t {
		c.policy.SetBaseTemperature(t)
		c.changed()
	}
	return true
}

// guard logs a soft rejection and reports whether the command may proceed.
func (c *Controller) guard(op string, allowed bool) bool {
	if !allowed {
		c.logger.Debug("command rejected by mode guard", "op", op, "modes", c.Modes().String())
	}
	return allowed
}

// deviceReady reports whether d has an output; logs the rejection otherwise.
func (c *Controller) deviceReady(d Device) bool {
	if c.out.channel(d) == nil {
		c.logger.Debug("command rejected, device inactive", "device", d)
		return false
	}
	return true
}

// Tick advances motion, the light show, the buzzer and the auto-close
// deadline to now.
func (c *Controller) Tick(now time.Time) {
	c.advanceMotions(now)
	c.tickShow(now)

	if c.buzzerOn && !now.Before(c.buzzerUntil) {
		c.silenceBuzzer()
		c.changed()
	}

	if !c.autoCloseAt.IsZero() && !now.Before(c.autoCloseAt) {
		c.autoCloseAt = time.Time{}
		c.logger.Info("auto-closing door")
		c.SetDoorState(DoorLocked)
		c.changed()
	}
}
