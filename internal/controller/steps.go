package controller

import (
	"context"
	"errors"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/audit"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/display"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/sensor"
)

// tick advances the actuators by one control interval.
func (c *Controller) tick(ctx context.Context) {
	c.act.Tick(c.opts.Clock())
	c.publish(ctx, actuator.SourceSystem, false)
}

// pollSensors reads, filters and smooths one reading, then runs the rules.
// Hazard rules see the filtered reading, comfort rules the smoothed one.
func (c *Controller) pollSensors(ctx context.Context) {
	if c.opts.Source == nil {
		return
	}

	raw, err := c.opts.Source.Read(ctx)
	if err != nil {
		if errors.Is(err, sensor.ErrNoReading) {
			c.log.Debug("no sensor reading yet")
		} else {
			c.log.Warn("sensor read failed", "error", err)
		}
		return
	}

	r, replaced := c.opts.Filter.Apply(raw)
	if len(replaced) > 0 {
		c.log.Debug("sensor fields replaced", "fields", replaced)
	}
	latest := r
	if c.opts.Smoother != nil {
		r = c.opts.Smoother.Add(r)
	}

	now := c.opts.Clock()
	ev := c.opts.Engine.EvaluateSmoothed(ctx, latest, r, now)
	c.reading = &r
	c.lastEval = ev

	for _, a := range ev.Actions {
		c.log.Info("automation action", "action", a)
	}
	if ev.Emergency != nil {
		c.opts.Display.ShowAlert(ev.Emergency.Message())
		c.opts.Audit.Record(ctx, audit.ActionEmergency, audit.EntitySystem, ev.Emergency.ID,
			actuator.SourceAutomation, map[string]any{"reason": string(ev.Emergency.Reason), "detail": ev.Emergency.Detail})
	}

	c.publish(ctx, actuator.SourceAutomation, true)
	snap := c.act.Snapshot()
	c.opts.Display.ShowStatus(display.FormatStatus(snap, r))

	if c.opts.Metrics != nil {
		c.opts.Metrics.ObserveReading(r, replaced)
		c.opts.Metrics.ObserveEvaluation(ev)
	}
	if c.opts.Telemetry != nil {
		c.opts.Telemetry.WriteReading(r)
		c.opts.Telemetry.WriteEnergy(ev.Energy, now)
	}
}

// runSchedules applies schedules and fires scene timers.
func (c *Controller) runSchedules(ctx context.Context) {
	now := c.opts.Clock()

	if c.opts.Schedules != nil {
		decisions, err := c.opts.Schedules.Tick(ctx, now)
		if err != nil {
			c.log.Warn("schedule tick failed", "error", err)
		}
		for _, d := range decisions {
			if d.Applied {
				c.log.Info("schedule applied", "schedule_id", d.ScheduleID, "device", string(d.Device), "active", d.Active)
			}
		}
		c.publish(ctx, actuator.SourceSchedule, false)
	}

	if c.opts.Scenes != nil {
		for _, a := range c.opts.Scenes.Tick(ctx, now) {
			c.log.Info("scene timer fired", "scene_id", a.SceneID, "name", a.Name)
			c.opts.Audit.Record(ctx, audit.ActionActivate, audit.EntityScene, a.SceneID,
				actuator.SourceSchedule, map[string]any{"trigger": a.Trigger, "applied": a.Applied})
		}
		c.publish(ctx, actuator.SourceScene, false)
	}
}

// handleCommand executes one queued command and answers the caller.
func (c *Controller) handleCommand(ctx context.Context, req commandRequest) {
	cmd := req.cmd
	res, err := c.opts.Engine.Handle(ctx, cmd)

	if c.opts.Metrics != nil {
		c.opts.Metrics.CommandHandled(cmd, res.Applied, err)
	}
	if err != nil {
		c.log.Warn("command failed", "id", cmd.ID, "type", cmd.Type.String(), "target", cmd.Target, "error", err)
	} else {
		c.log.Info("command handled", "id", cmd.ID, "type", cmd.Type.String(), "target", cmd.Target, "applied", res.Applied)
		c.auditCommand(ctx, cmd, res)
	}

	source := actuator.SourceCommand
	if cmd.Type == automation.SceneControl {
		source = actuator.SourceScene
	}
	c.publish(ctx, source, true)

	req.reply <- commandReply{res: res, err: err}
}

func (c *Controller) auditCommand(ctx context.Context, cmd automation.Command, res automation.Result) {
	action, entity := audit.ActionCommand, audit.EntityDevice
	switch cmd.Type {
	case automation.SetMode:
		action, entity = audit.ActionMode, audit.EntitySystem
	case automation.SetThreshold, automation.AutomationRule:
		entity = audit.EntitySystem
	case automation.UpdateSchedule:
		entity = audit.EntitySchedule
		switch string(cmd.Value) {
		case automation.ScheduleCreate:
			action = audit.ActionCreate
		case automation.ScheduleDelete:
			action = audit.ActionDelete
		default:
			action = audit.ActionUpdate
		}
	case automation.SceneControl:
		entity = audit.EntityScene
		if string(cmd.Value) == automation.SceneActivate {
			action = audit.ActionActivate
		}
	}

	details := map[string]any{
		"command_id": cmd.ID,
		"type":       cmd.Type.String(),
		"value":      string(cmd.Value),
		"applied":    res.Applied,
	}
	if len(cmd.Parameters) > 0 {
		details["parameters"] = cmd.Parameters
	}
	c.opts.Audit.Record(ctx, action, entity, cmd.Target, cmd.Source, details)
}

// handleEmergency trips or restores and answers the caller.
func (c *Controller) handleEmergency(ctx context.Context, req emergencyRequest) {
	var e emergency.Event
	if req.restore {
		e = c.opts.Emergency.Restore(ctx)
		c.opts.Audit.Record(ctx, audit.ActionRestore, audit.EntitySystem, e.ID, actuator.SourceCommand, nil)
	} else {
		e = c.opts.Emergency.Trigger(ctx, req.reason, req.detail)
		c.opts.Audit.Record(ctx, audit.ActionEmergency, audit.EntitySystem, e.ID, actuator.SourceEmergency,
			map[string]any{"reason": string(e.Reason), "detail": e.Detail})
	}
	c.opts.Display.ShowAlert(e.Message())
	c.publish(ctx, actuator.SourceEmergency, true)

	if req.reply != nil {
		req.reply <- e
	}
}

// publish records history for changed devices, refreshes the shared state
// and notifies listeners. force publishes even when no actuator changed,
// so readings and evaluation results reach listeners.
func (c *Controller) publish(ctx context.Context, source string, force bool) {
	snap := c.act.Snapshot()
	changed := snap.Version != c.prev.Version ||
		len(snap.Moving) > 0 || len(c.prev.Moving) > 0
	if !changed && !force {
		return
	}

	if c.opts.History != nil {
		for d, st := range actuator.Changes(c.prev, snap) {
			if err := c.opts.History.RecordChange(ctx, d, st, source); err != nil {
				c.log.Warn("history write failed", "device", string(d), "error", err)
			}
		}
	}
	if changed {
		if c.opts.Metrics != nil {
			c.opts.Metrics.ObserveSnapshot(snap)
		}
		if c.opts.Telemetry != nil && snap.Version != c.prev.Version {
			c.opts.Telemetry.WriteSnapshot(snap)
		}
	}
	c.prev = snap

	st := c.buildState(snap)
	c.mu.Lock()
	c.state = st
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}

func (c *Controller) buildState(snap actuator.Snapshot) State {
	st := State{
		Actuators:   snap,
		Comfort:     c.opts.Engine.Comfort(),
		Energy:      c.opts.Engine.Energy(),
		Thresholds:  c.opts.Engine.Thresholds(),
		Rules:       c.opts.Engine.Rules(),
		Tripped:     c.opts.Emergency.Tripped(),
		EvaluatedAt: c.lastEval.At,
	}
	if c.reading != nil {
		r := *c.reading
		st.Reading = &r
	}
	if len(c.lastEval.Alerts) > 0 {
		st.Alerts = append([]string(nil), c.lastEval.Alerts...)
	}
	if errs := c.opts.Filter.ErrorLog().Entries(); len(errs) > 0 {
		st.SensorErrors = errs
	}
	return st
}
