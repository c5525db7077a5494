package actuator

import (
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/nerrad567/hearth/internal/hardware"
	"github.com/nerrad567/hearth/internal/mode"
)

// WindowAngle converts an opening percentage to a servo angle.
func WindowAngle(pct int) int {
	return pct * hardware.AngleRange.Max / 100
}

func clampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SetWindowOpening opens the window to pct percent, clamped to 0..100.
func (c *Controller) SetWindowOpening(pct int) bool {
	if !c.guard("window", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.deviceReady(DeviceWindow) {
		return false
	}
	c.setWindow(clampPercent(pct))
	return true
}

func (c *Controller) setWindow(pct int) {
	if c.out.Window == nil {
		return
	}
	if pct == c.window && !c.Moving(DeviceWindow) {
		return
	}
	c.window = pct
	c.changed()
	c.move(DeviceWindow, WindowAngle(pct), c.opts.WindowTravel, nil)
}

// SetFan runs the fan at speed. Refused while inactive and in night mode.
func (c *Controller) SetFan(speed FanSpeed) bool {
	if !c.guard("fan", mode.FanAllowed(c.Modes())) {
		return false
	}
	if !c.deviceReady(DeviceFan) {
		return false
	}
	if !speed.Valid() {
		c.logger.Warn("fan command with invalid speed", "speed", int(speed))
		return false
	}
	if speed == c.fan {
		return true
	}
	c.fan = speed
	c.changed()
	c.move(DeviceFan, speed.Duty(), c.opts.FanTravel, nil)
	return true
}

// stopFan silences the fan without a ramp.
func (c *Controller) stopFan() {
	if c.fan != FanOff {
		c.changed()
	}
	c.fan = FanOff
	c.writeNow(DeviceFan, FanOff.Duty())
}

func (c *Controller) lightAvailable() bool {
	if c.out.Light == nil && c.out.Strip == nil {
		c.logger.Debug("command rejected, device inactive", "device", DeviceLight)
		return false
	}
	return true
}

// SetLight fades the light to brightness (0..255) over fade. Any running
// light show stops.
func (c *Controller) SetLight(brightness int, fade time.Duration) bool {
	if !c.guard("light", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.lightAvailable() {
		return false
	}
	c.stopShow()
	c.setLightLevel(hardware.DutyRange.Clamp(brightness), fade)
	return true
}

func (c *Controller) setLightLevel(brightness int, fade time.Duration) {
	c.light.Brightness = brightness
	c.changed()
	if c.show.Active {
		return
	}
	c.fade(DeviceLight, brightness, fade, nil)
	c.renderStrip()
}

// SetLightMode switches to m and its preset brightness. Party and alert
// start their light shows.
func (c *Controller) SetLightMode(m LightMode) bool {
	if !c.guard("light-mode", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.lightAvailable() {
		return false
	}
	if _, ok := lightModeNames[m]; !ok {
		return false
	}
	c.applyLightMode(m)
	return true
}

var alertRed = colorful.Color{R: 1}

func (c *Controller) applyLightMode(m LightMode) {
	c.light.Mode = m
	switch m {
	case LightParty:
		c.startShow(PatternRainbow, partyShowDuration)
	case LightAlert:
		c.startShow(PatternAlert, alertShowDuration)
	default:
		c.stopShow()
	}
	c.setLightLevel(m.PresetBrightness(), c.opts.LightFade)
}

// SetLightColor sets the strip colour used outside light shows.
func (c *Controller) SetLightColor(col colorful.Color) bool {
	if !c.guard("light-color", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.lightAvailable() {
		return false
	}
	c.light.Color = col.Clamped()
	c.changed()
	c.renderStrip()
	return true
}

// StartLightShow runs pattern for d, replacing any running show.
func (c *Controller) StartLightShow(p Pattern, d time.Duration) bool {
	if !c.guard("light-show", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.lightAvailable() {
		return false
	}
	if d <= 0 {
		return false
	}
	c.startShow(p, d)
	return true
}

// TriggerBuzzer sounds the buzzer for d. freqHz is used when the output
// can produce a tone.
func (c *Controller) TriggerBuzzer(d time.Duration, freqHz int) bool {
	if !c.guard("buzzer", mode.CanActuate(c.Modes())) {
		return false
	}
	if !c.deviceReady(DeviceBuzzer) {
		return false
	}
	if d <= 0 {
		return false
	}

	c.writeNow(DeviceBuzzer, 1)
	if t, ok := c.out.Buzzer.(hardware.Toner); ok && freqHz > 0 {
		if err := t.Tone(freqHz); err != nil {
			c.logger.Warn("buzzer tone failed", "freq_hz", freqHz, "error", err)
		}
	}
	c.buzzerOn = true
	c.buzzerUntil = c.now().Add(d)
	c.changed()
	return true
}

func (c *Controller) silenceBuzzer() {
	c.buzzerOn = false
	c.buzzerUntil = time.Time{}
	if c.out.Buzzer == nil {
		return
	}
	c.writeNow(DeviceBuzzer, 0)
	if t, ok := c.out.Buzzer.(hardware.Toner); ok {
		if err := t.Tone(0); err != nil {
			c.logger.Warn("buzzer silence failed", "error", err)
		}
	}
}
