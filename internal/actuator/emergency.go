package actuator

import (
	"time"

	"github.com/nerrad567/hearth/internal/mode"
)

// EmergencyShutdown forces the safe state: system inactive, light off, fan
// off, buzzer off, door locked, window closed. All motion, queued door
// requests, light shows and deadlines are discarded and the outputs are
// written directly. It cannot fail; write errors are logged.
func (c *Controller) EmergencyShutdown() {
	c.policy.Shutdown()

	c.motions = make(map[Device]*motion)
	c.show = LightShow{}
	c.doorQueued = nil
	c.autoCloseAt = time.Time{}

	c.light.Brightness = 0
	c.light.Mode = LightNormal
	c.writeNow(DeviceLight, 0)

	c.fan = FanOff
	c.writeNow(DeviceFan, 0)

	c.silenceBuzzer()
	c.lockNow()

	c.window = 0
	c.writeNow(DeviceWindow, 0)

	c.renderStrip()
	c.changed()
	c.logger.Warn("emergency shutdown: outputs forced to safe state")
}

// RestoreSystem re-enables commands and clears every mode. No output
// moves; the system stays in the safe state until a new command arrives.
func (c *Controller) RestoreSystem() {
	c.policy.Restore()
	c.changed()
	c.logger.Info("system restored")
}

// SetMode switches a mode flag and applies the actuator changes the
// switch requires. Refused while the system is inactive.
func (c *Controller) SetMode(f mode.Flag, on bool) (bool, error) {
	if !c.guard("mode", mode.CanActuate(c.Modes())) {
		return false, nil
	}
	effects, err := c.policy.Apply(f, on)
	if err != nil {
		return false, err
	}
	c.applyEffects(effects)
	c.changed()
	c.logger.Info("mode changed", "mode", f, "on", on, "modes", c.Modes().String())
	return true, nil
}

func (c *Controller) applyEffects(effects []mode.Effect) {
	for _, e := range effects {
		switch e.Kind {
		case mode.ForceDoorLocked:
			c.lockNow()
		case mode.ForceWindow:
			c.setWindow(clampPercent(e.Value))
		case mode.CapWindow:
			if c.window > e.Value {
				c.setWindow(clampPercent(e.Value))
			}
		case mode.ForceFanOff:
			c.stopFan()
		case mode.SetLight:
			if c.out.Light == nil && c.out.Strip == nil {
				continue
			}
			c.applyLightMode(lightModeForPreset(e.Preset))
		}
	}
}

func lightModeForPreset(p mode.LightPreset) LightMode {
	switch p {
	case mode.PresetNight:
		return LightNight
	case mode.PresetParty:
		return LightParty
	default:
		return LightNormal
	}
}
