package automation

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/mode"
	"github.com/nerrad567/hearth/internal/sensor"
)

// Energy model.
const (
	// BaselineConsumptionW is the unmanaged household draw savings are
	// measured against.
	BaselineConsumptionW = 1000.0

	// FanPowerW and LightPowerW are the draws at full duty.
	FanPowerW   = 60.0
	LightPowerW = 40.0

	// HazardAirQuality is the index below which air is treated as a hazard
	// regardless of CO2.
	HazardAirQuality = 10.0

	// VentilationWindow is the window opening used to ventilate.
	VentilationWindow = 50
)

// EnergyStats estimates the managed outputs' consumption.
type EnergyStats struct {
	CurrentW       float64 `json:"current_w"`
	DailyKWh       float64 `json:"daily_kwh"`
	BaselineW      float64 `json:"baseline_w"`
	SavingsPercent float64 `json:"savings_percent"`
}

// Evaluation is the outcome of one rule pass.
type Evaluation struct {
	At        time.Time        `json:"at"`
	Comfort   float64          `json:"comfort"`
	Energy    EnergyStats      `json:"energy"`
	Actions   []string         `json:"actions,omitempty"`
	Alerts    []string         `json:"alerts,omitempty"`
	Emergency *emergency.Event `json:"emergency,omitempty"`
}

func (ev *Evaluation) act(action string, applied bool) {
	if applied {
		ev.Actions = append(ev.Actions, action)
	}
}

// Energy returns the latest energy estimate.
func (e *Engine) Energy() EnergyStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.energy
}

// Comfort returns the latest comfort index (0..100).
func (e *Engine) Comfort() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.comfort
}

// Evaluate runs every enabled rule against a filtered reading.
func (e *Engine) Evaluate(ctx context.Context, r sensor.Reading, now time.Time) Evaluation {
	return e.EvaluateSmoothed(ctx, r, r, now)
}

// EvaluateSmoothed runs the hazard rules (security, air quality) on the
// latest filtered reading and the comfort rules (climate, lighting,
// energy, comfort index) on the smoothed one. An emergency is never
// delayed by the averaging window.
func (e *Engine) EvaluateSmoothed(ctx context.Context, latest, smoothed sensor.Reading, now time.Time) Evaluation {
	e.lastReading = smoothed
	e.haveReading = true

	th := e.Thresholds()
	ev := Evaluation{At: now}

	if e.ruleOn(RuleSecurity) {
		e.security(ctx, latest, now, th, &ev)
	}
	if e.ruleOn(RuleAirQuality) && ev.Emergency == nil {
		e.airQuality(ctx, latest, th, &ev)
	}
	r := smoothed
	if ev.Emergency == nil {
		if e.ruleOn(RuleClimate) {
			e.climate(r, th, &ev)
		}
		if e.ruleOn(RuleLighting) {
			e.lighting(r, th, &ev)
		}
		if e.ruleOn(RuleEnergy) {
			e.energySaving(r, th, &ev)
		}
	}

	snap := e.act.Snapshot()
	comfort := ComfortIndex(r, snap.TargetTemperature, th.TargetHumidity)
	energy := e.updateEnergy(snap, now)

	e.mu.Lock()
	e.comfort = comfort
	e.energy = energy
	e.mu.Unlock()

	ev.Comfort = comfort
	ev.Energy = energy
	for _, msg := range ev.Alerts {
		e.opts.Display.ShowAlert(msg)
	}
	return ev
}

// security trips the emergency on motion in vacation mode and raises an
// alert when motion repeats more than MotionAlertCount times within
// MotionWindow.
func (e *Engine) security(ctx context.Context, r sensor.Reading, now time.Time, th Thresholds, ev *Evaluation) {
	cutoff := now.Add(-th.MotionWindow)
	kept := e.motions[:0]
	for _, t := range e.motions {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.motions = kept

	if !r.Motion {
		if len(e.motions) <= th.MotionAlertCount {
			e.motionAlert = false
		}
		return
	}
	e.motions = append(e.motions, now)

	snap := e.act.Snapshot()
	if snap.Modes.Has(mode.Vacation) && snap.SystemActive {
		e.trip(ctx, emergency.ReasonSecurity, "motion detected while in vacation mode", ev)
		return
	}

	if len(e.motions) > th.MotionAlertCount && !e.motionAlert {
		e.motionAlert = true
		ev.act("light alert", e.act.SetLightMode(actuator.LightAlert))
		ev.Alerts = append(ev.Alerts, "Unusual activity detected!")
		e.log.Warn("repeated motion", "events", len(e.motions), "window", th.MotionWindow)
	}
}

// airQuality ventilates on poor air and trips the emergency on hazardous
// air.
func (e *Engine) airQuality(ctx context.Context, r sensor.Reading, th Thresholds, ev *Evaluation) {
	hazard := (!math.IsNaN(r.CO2) && r.CO2 >= th.CO2Hazard) ||
		(!math.IsNaN(r.AirQuality) && r.AirQuality < HazardAirQuality)
	if hazard {
		if e.act.Snapshot().SystemActive {
			e.trip(ctx, emergency.ReasonEnvironmental, hazardDetail(r, th), ev)
		}
		return
	}

	if math.IsNaN(r.AirQuality) {
		return
	}
	if r.AirQuality >= th.AirQuality {
		e.ventilating = false
		return
	}
	if e.ventilating {
		return
	}

	e.ventilating = true
	ev.act("fan HIGH", e.act.SetFan(actuator.FanHigh))
	if !r.Raining {
		ev.act("window 50%", e.act.SetWindowOpening(VentilationWindow))
	}
	ev.Alerts = append(ev.Alerts, "Poor air quality - Ventilating")
}

func hazardDetail(r sensor.Reading, th Thresholds) string {
	if !math.IsNaN(r.CO2) && r.CO2 >= th.CO2Hazard {
		return "CO2 at " + formatFloat(r.CO2) + " ppm"
	}
	return "air quality index " + formatFloat(r.AirQuality)
}

// climate drives the fan from the heat index and closes the window on rain.
// The fan is left alone while ventilating.
func (e *Engine) climate(r sensor.Reading, th Thresholds, ev *Evaluation) {
	if !e.ventilating && !math.IsNaN(r.Temperature) && !math.IsNaN(r.Humidity) {
		before := e.act.Snapshot().Fan
		speed, applied := e.act.UpdateFanControl(r.Temperature, r.Humidity, th.Temperature)
		ev.act("fan "+speed.String(), applied && speed != before)
	}

	if r.Raining && e.act.Snapshot().WindowOpening > 0 {
		if e.act.SetWindowOpening(0) {
			ev.act("window closed", true)
			ev.Alerts = append(ev.Alerts, "Rain detected - Windows closed")
		}
	}
}

// lighting turns the light on for motion in the dark.
func (e *Engine) lighting(r sensor.Reading, th Thresholds, ev *Evaluation) {
	if !r.Motion || math.IsNaN(r.LightLevel) || r.LightLevel >= th.Light {
		return
	}
	snap := e.act.Snapshot()
	if snap.Light.Brightness > 0 || snap.LightShow.Active {
		return
	}
	level := actuator.LightAmbient.PresetBrightness()
	if snap.Modes.Has(mode.Night) {
		level = actuator.LightNight.PresetBrightness()
	}
	ev.act("light on", e.act.SetLight(level, e.opts.LightFade))
}

// energySaving turns the light off in daylight when nobody is moving.
// Light shows are left running.
func (e *Engine) energySaving(r sensor.Reading, th Thresholds, ev *Evaluation) {
	if r.Motion || math.IsNaN(r.LightLevel) || r.LightLevel <= th.Light {
		return
	}
	snap := e.act.Snapshot()
	if snap.Light.Brightness == 0 || snap.LightShow.Active {
		return
	}
	ev.act("light off", e.act.SetLight(0, e.opts.LightFade))
}

func (e *Engine) trip(ctx context.Context, reason emergency.Reason, detail string, ev *Evaluation) {
	if e.opts.Emergency == nil {
		e.log.Error("emergency condition with no emergency controller", "reason", reason, "detail", detail)
		return
	}
	event := e.opts.Emergency.Trigger(ctx, reason, detail)
	ev.Emergency = &event
}

// updateEnergy estimates the current draw from the fan and light outputs
// and integrates it into the daily total, which resets at local midnight.
func (e *Engine) updateEnergy(snap actuator.Snapshot, now time.Time) EnergyStats {
	e.mu.RLock()
	stats := e.energy
	e.mu.RUnlock()

	current := FanPowerW*float64(snap.FanDuty)/255 + LightPowerW*float64(snap.Light.Level)/255

	day := now.In(e.opts.Location).Format(time.DateOnly)
	if day != e.energyDay {
		stats.DailyKWh = 0
		e.energyDay = day
	} else if !e.energyAt.IsZero() && now.After(e.energyAt) {
		stats.DailyKWh += stats.CurrentW * now.Sub(e.energyAt).Hours() / 1000
	}
	e.energyAt = now

	stats.CurrentW = current
	stats.BaselineW = BaselineConsumptionW
	stats.SavingsPercent = math.Max(0, (BaselineConsumptionW-current)/BaselineConsumptionW*100)
	return stats
}

// ComfortIndex scores conditions from 0 to 100 as the mean of a
// temperature factor (1 at target, 0 at 10 °C off), a humidity factor
// (1 at target, 0 at 30 points off) and the air quality index.
func ComfortIndex(r sensor.Reading, targetTemp, targetHumidity float64) float64 {
	if math.IsNaN(r.Temperature) || math.IsNaN(r.Humidity) || math.IsNaN(r.AirQuality) {
		return 0
	}
	tempFactor := 1 - math.Abs(r.Temperature-targetTemp)/10
	humidityFactor := 1 - math.Abs(r.Humidity-targetHumidity)/30
	airFactor := r.AirQuality / 100

	index := (tempFactor + humidityFactor + airFactor) / 3 * 100
	return math.Max(0, math.Min(100, index))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
