package controller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/audit"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/display"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/scene"
	"github.com/nerrad567/hearth/internal/schedule"
	"github.com/nerrad567/hearth/internal/sensor"
)

// Default intervals.
const (
	DefaultTickInterval     = 50 * time.Millisecond
	DefaultSensorInterval   = 2 * time.Second
	DefaultScheduleInterval = time.Minute
)

const (
	commandQueueSize   = 32
	emergencyQueueSize = 4
)

// Logger is the logging interface used by the controller.
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

// Emergency is the emergency controller surface the loop drives.
type Emergency interface {
	Trigger(ctx context.Context, reason emergency.Reason, detail string) emergency.Event
	Restore(ctx context.Context) emergency.Event
	Tripped() bool
}

// Schedules applies time-of-day schedules.
type Schedules interface {
	Tick(ctx context.Context, now time.Time) ([]schedule.Decision, error)
}

// SceneTimers fires timed scenes.
type SceneTimers interface {
	Tick(ctx context.Context, now time.Time) []scene.Activation
}

// HistoryRecorder stores device state changes.
type HistoryRecorder interface {
	RecordChange(ctx context.Context, device actuator.Device, state map[string]any, source string) error
}

// Telemetry receives time-series points. The InfluxDB client implements it.
type Telemetry interface {
	WriteReading(r sensor.Reading)
	WriteSnapshot(s actuator.Snapshot)
	WriteEnergy(e automation.EnergyStats, at time.Time)
}

// Observer receives metrics. The Prometheus collector implements it.
type Observer interface {
	ObserveSnapshot(s actuator.Snapshot)
	ObserveReading(r sensor.Reading, replaced []sensor.Field)
	ObserveEvaluation(ev automation.Evaluation)
	CommandHandled(cmd automation.Command, applied bool, err error)
	ObserveLoop(d time.Duration)
}

// Listener is called with the new state after a change.
type Listener func(State)

// Options wires the loop. Engine is required; every other subsystem is
// optional.
type Options struct {
	TickInterval     time.Duration
	SensorInterval   time.Duration
	ScheduleInterval time.Duration

	Engine    *automation.Engine
	Emergency Emergency
	Schedules Schedules
	Scenes    SceneTimers

	Source   sensor.Source
	Filter   *sensor.Filter
	Smoother *sensor.Smoother

	Display   display.Sink
	History   HistoryRecorder
	Audit     *audit.Recorder
	Telemetry Telemetry
	Metrics   Observer

	Clock  func() time.Time
	Logger Logger
}

// State is the published view of the controller.
type State struct {
	Actuators   actuator.Snapshot      `json:"actuators"`
	Reading     *sensor.Reading        `json:"reading,omitempty"`
	Comfort     float64                `json:"comfort"`
	Energy      automation.EnergyStats `json:"energy"`
	Thresholds  automation.Thresholds  `json:"thresholds"`
	Rules       automation.Rules       `json:"rules"`
	Tripped     bool                   `json:"emergency_tripped"`
	Alerts      []string               `json:"alerts,omitempty"`
	EvaluatedAt time.Time              `json:"evaluated_at,omitempty"`

	// SensorErrors is the filter's bounded log of replaced fields, oldest
	// first.
	SensorErrors []string `json:"sensor_errors,omitempty"`
}

type commandRequest struct {
	cmd   automation.Command
	reply chan commandReply
}

type commandReply struct {
	res automation.Result
	err error
}

type emergencyRequest struct {
	restore bool
	reason  emergency.Reason
	detail  string
	reply   chan emergency.Event
}

// Controller runs the control loop.
type Controller struct {
	act  *actuator.Controller
	opts Options
	log  Logger

	commands    chan commandRequest
	emergencies chan emergencyRequest
	done        chan struct{}
	running     atomic.Bool

	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int

	// Owned by the loop goroutine.
	prev     actuator.Snapshot
	reading  *sensor.Reading
	lastEval automation.Evaluation
}

// New creates a controller over act. The loop does not start until Run.
func New(act *actuator.Controller, opts Options) *Controller {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.SensorInterval <= 0 {
		opts.SensorInterval = DefaultSensorInterval
	}
	if opts.ScheduleInterval <= 0 {
		opts.ScheduleInterval = DefaultScheduleInterval
	}
	if opts.Engine == nil {
		opts.Engine = automation.NewEngine(act, automation.Options{})
	}
	if opts.Emergency == nil {
		opts.Emergency = emergency.New(act, emergency.Options{})
	}
	if opts.Filter == nil {
		opts.Filter = sensor.NewFilter()
	}
	if opts.Display == nil {
		opts.Display = display.Multi{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	c := &Controller{
		act:         act,
		opts:        opts,
		log:         opts.Logger,
		commands:    make(chan commandRequest, commandQueueSize),
		emergencies: make(chan emergencyRequest, emergencyQueueSize),
		done:        make(chan struct{}),
		listeners:   make(map[int]Listener),
	}
	c.prev = act.Snapshot()
	c.state = c.buildState(c.prev)
	return c
}

// Run executes the loop until ctx is cancelled. It returns nil on
// cancellation.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.done)

	tick := time.NewTicker(c.opts.TickInterval)
	defer tick.Stop()
	sensors := time.NewTicker(c.opts.SensorInterval)
	defer sensors.Stop()
	schedules := time.NewTicker(c.opts.ScheduleInterval)
	defer schedules.Stop()

	c.log.Info("control loop started",
		"tick", c.opts.TickInterval, "sensors", c.opts.SensorInterval, "schedules", c.opts.ScheduleInterval)

	c.publish(ctx, actuator.SourceSystem, true)
	c.runSchedules(ctx)

	for {
		select {
		case req := <-c.emergencies:
			c.timed(func() { c.handleEmergency(ctx, req) })
			continue
		default:
		}

		select {
		case <-ctx.Done():
			c.log.Info("control loop stopped")
			return nil
		case req := <-c.emergencies:
			c.timed(func() { c.handleEmergency(ctx, req) })
		case <-tick.C:
			c.timed(func() { c.tick(ctx) })
		case <-sensors.C:
			c.timed(func() { c.pollSensors(ctx) })
		case <-schedules.C:
			c.timed(func() { c.runSchedules(ctx) })
		case req := <-c.commands:
			c.timed(func() { c.handleCommand(ctx, req) })
		}
	}
}

func (c *Controller) timed(step func()) {
	start := time.Now()
	step()
	if c.opts.Metrics != nil {
		c.opts.Metrics.ObserveLoop(time.Since(start))
	}
}

// Submit queues cmd for the loop and waits for the result. It is safe to
// call from any goroutine.
func (c *Controller) Submit(ctx context.Context, cmd automation.Command) (automation.Result, error) {
	if err := cmd.Normalize(); err != nil {
		return automation.Result{}, err
	}

	req := commandRequest{cmd: cmd, reply: make(chan commandReply, 1)}
	select {
	case c.commands <- req:
	case <-c.done:
		return automation.Result{}, ErrStopped
	case <-ctx.Done():
		return automation.Result{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.res, r.err
	case <-c.done:
		select {
		case r := <-req.reply:
			return r.res, r.err
		default:
			return automation.Result{}, ErrStopped
		}
	case <-ctx.Done():
		return automation.Result{}, ctx.Err()
	}
}

// Emergency trips the emergency shutdown ahead of any queued command.
func (c *Controller) Emergency(ctx context.Context, reason emergency.Reason, detail string) (emergency.Event, error) {
	return c.sendEmergency(ctx, emergencyRequest{reason: reason, detail: detail})
}

// Restore re-enables the system after an emergency.
func (c *Controller) Restore(ctx context.Context) (emergency.Event, error) {
	return c.sendEmergency(ctx, emergencyRequest{restore: true})
}

func (c *Controller) sendEmergency(ctx context.Context, req emergencyRequest) (emergency.Event, error) {
	req.reply = make(chan emergency.Event, 1)
	select {
	case c.emergencies <- req:
	case <-c.done:
		return emergency.Event{}, ErrStopped
	case <-ctx.Done():
		return emergency.Event{}, ctx.Err()
	}

	select {
	case e := <-req.reply:
		return e, nil
	case <-c.done:
		select {
		case e := <-req.reply:
			return e, nil
		default:
			return emergency.Event{}, ErrStopped
		}
	case <-ctx.Done():
		return emergency.Event{}, ctx.Err()
	}
}

// State returns the state published after the last loop iteration.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Snapshot returns the actuator part of State.
func (c *Controller) Snapshot() actuator.Snapshot {
	return c.State().Actuators
}

// Subscribe registers l for state changes and returns a function that
// removes it.
func (c *Controller) Subscribe(l Listener) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}
