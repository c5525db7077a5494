package influxdb

import (
	"context"
	"math"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/sensor"
)

// Measurement names.
const (
	MeasurementSensors   = "sensors"
	MeasurementActuators = "actuators"
	MeasurementEnergy    = "energy"
	MeasurementEmergency = "emergency"
)

// WriteReading records a filtered sensor reading.
func (c *Client) WriteReading(r sensor.Reading) {
	c.write(ReadingPoint(c.site, r))
}

// WriteSnapshot records actuator state.
func (c *Client) WriteSnapshot(s actuator.Snapshot) {
	c.write(SnapshotPoint(c.site, s))
}

// WriteEnergy records the energy estimate.
func (c *Client) WriteEnergy(e automation.EnergyStats, at time.Time) {
	c.write(EnergyPoint(c.site, e, at))
}

// Notify implements emergency.Notifier.
func (c *Client) Notify(_ context.Context, e emergency.Event) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.write(EmergencyPoint(c.site, e))
	return nil
}

// ReadingPoint builds a sensors point. NaN fields are left out.
func ReadingPoint(site string, r sensor.Reading) *write.Point {
	fields := map[string]interface{}{
		"motion":  r.Motion,
		"raining": r.Raining,
	}
	for _, f := range sensor.Fields {
		if v := r.Get(f); !math.IsNaN(v) {
			fields[string(f)] = v
		}
	}
	return write.NewPoint(MeasurementSensors, map[string]string{"site": site}, fields, timestamp(r.Time))
}

// SnapshotPoint builds an actuators point.
func SnapshotPoint(site string, s actuator.Snapshot) *write.Point {
	fields := map[string]interface{}{
		"door":           s.Door.String(),
		"door_angle":     s.DoorAngle,
		"window_opening": s.WindowOpening,
		"fan":            s.Fan.String(),
		"fan_duty":       s.FanDuty,
		"light":          s.Light.Brightness,
		"light_level":    s.Light.Level,
		"light_mode":     s.Light.Mode.String(),
		"buzzer":         s.Buzzer,
		"system_active":  s.SystemActive,
		"modes":          s.Modes.String(),
	}
	return write.NewPoint(MeasurementActuators, map[string]string{"site": site}, fields, timestamp(s.TakenAt))
}

// EnergyPoint builds an energy point.
func EnergyPoint(site string, e automation.EnergyStats, at time.Time) *write.Point {
	return write.NewPoint(MeasurementEnergy, map[string]string{"site": site}, map[string]interface{}{
		"power_watts":     e.CurrentW,
		"energy_kwh":      e.DailyKWh,
		"savings_percent": e.SavingsPercent,
	}, timestamp(at))
}

// EmergencyPoint builds an emergency point.
func EmergencyPoint(site string, e emergency.Event) *write.Point {
	tags := map[string]string{"site": site, "kind": e.Kind}
	if e.Reason != "" {
		tags["reason"] = string(e.Reason)
	}
	return write.NewPoint(MeasurementEmergency, tags, map[string]interface{}{
		"id":     e.ID,
		"detail": e.Detail,
	}, timestamp(e.At))
}

func timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
