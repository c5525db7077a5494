package actuator

import (
	"time"

	"github.com/nerrad567/hearth/internal/hardware"
)

// motion is a ramp in flight on one output. done runs once the ramp
// reaches its target.
type motion struct {
	ramp hardware.Ramp
	last time.Time
	done func()
}

// logicalMax is the top of each device's logical scale: degrees for the
// servos, 8-bit duty for fan and light, on/off for the buzzer.
func logicalMax(d Device) int {
	switch d {
	case DeviceDoor, DeviceWindow:
		return hardware.AngleRange.Max
	case DeviceBuzzer:
		return 1
	default:
		return hardware.DutyRange.Max
	}
}

// toChannel rescales a logical value onto ch's range. Any non-zero value
// stays above the channel minimum so a dim light on a relay still turns on.
func toChannel(ch hardware.Channel, v, max int) int {
	r := ch.Range()
	if max <= 0 || (r.Min == 0 && r.Max == max) {
		return r.Clamp(v)
	}
	span := r.Max - r.Min
	out := r.Min + (v*span+max/2)/max
	if v > 0 && out == r.Min {
		out = r.Min + 1
	}
	return r.Clamp(out)
}

// fromChannel is the inverse of toChannel.
func fromChannel(ch hardware.Channel, v, max int) int {
	r := ch.Range()
	span := r.Max - r.Min
	if span <= 0 || (r.Min == 0 && r.Max == max) {
		return v
	}
	return (v - r.Min) * max / span
}

// travel scales a full-range travel time to the distance actually moved.
func travel(full time.Duration, ch hardware.Channel, from, to int) time.Duration {
	span := ch.Range().Max - ch.Range().Min
	if full <= 0 || span <= 0 {
		return 0
	}
	dist := to - from
	if dist < 0 {
		dist = -dist
	}
	return full * time.Duration(dist) / time.Duration(span)
}

// move ramps d to logical value v at full-range speed fullTravel.
func (c *Controller) move(d Device, v int, fullTravel time.Duration, done func()) {
	ch := c.out.channel(d)
	if ch == nil {
		return
	}
	target := toChannel(ch, v, logicalMax(d))
	c.startMotion(d, ch, target, travel(fullTravel, ch, ch.Value(), target), done)
}

// fade ramps d to logical value v over exactly dur.
func (c *Controller) fade(d Device, v int, dur time.Duration, done func()) {
	ch := c.out.channel(d)
	if ch == nil {
		return
	}
	c.startMotion(d, ch, toChannel(ch, v, logicalMax(d)), dur, done)
}

// startMotion replaces any motion on d with a ramp from the channel's
// current value. A ramp that is already complete is written immediately.
func (c *Controller) startMotion(d Device, ch hardware.Channel, target int, dur time.Duration, done func()) {
	delete(c.motions, d)

	r := hardware.NewRamp(ch.Value(), target, dur)
	if r.Done() {
		c.write(d, ch, target)
		if done != nil {
			done()
		}
		return
	}
	c.motions[d] = &motion{ramp: r, last: c.now(), done: done}
}

// advanceMotions steps every ramp to now in device order.
func (c *Controller) advanceMotions(now time.Time) {
	for _, d := range Devices {
		m, ok := c.motions[d]
		if !ok {
			continue
		}
		ch := c.out.channel(d)

		dt := now.Sub(m.last)
		m.last = now
		v, done := m.ramp.Advance(dt)
		if v != ch.Value() {
			c.write(d, ch, v)
		}
		if d == DeviceLight {
			c.renderStrip()
		}
		if done {
			delete(c.motions, d)
			if m.done != nil {
				m.done()
			}
		}
	}
}

// writeNow cancels motion on d and writes logical value v directly.
func (c *Controller) writeNow(d Device, v int) {
	delete(c.motions, d)
	ch := c.out.channel(d)
	if ch == nil {
		return
	}
	c.write(d, ch, toChannel(ch, v, logicalMax(d)))
}

func (c *Controller) write(d Device, ch hardware.Channel, v int) {
	if _, err := ch.Write(v); err != nil {
		c.logger.Error("output write failed", "device", d, "value", v, "error", err)
	}
}

// level returns the logical value currently on d's output.
func (c *Controller) level(d Device) int {
	ch := c.out.channel(d)
	if ch == nil {
		return 0
	}
	return fromChannel(ch, ch.Value(), logicalMax(d))
}
