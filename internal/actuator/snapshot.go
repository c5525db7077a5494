package actuator

import (
	"time"

	"github.com/nerrad567/hearth/internal/mode"
)

// LightSnapshot is the JSON form of LightState.
type LightSnapshot struct {
	Brightness int       `json:"brightness"`
	Level      int       `json:"level"`
	Mode       LightMode `json:"mode"`
	Color      string    `json:"color"`
}

// Snapshot is a point-in-time copy of every actuator's state. It shares
// nothing with the Controller and is safe to hand to other goroutines.
type Snapshot struct {
	Version           uint64          `json:"version"`
	Modes             mode.Set        `json:"modes"`
	SystemActive      bool            `json:"system_active"`
	Door              DoorState       `json:"door"`
	DoorTarget        DoorState       `json:"door_target"`
	DoorAngle         int             `json:"door_angle"`
	LastDoorOperation time.Time       `json:"last_door_operation,omitempty"`
	AutoCloseAt       *time.Time      `json:"auto_close_at,omitempty"`
	WindowOpening     int             `json:"window_opening"`
	WindowAngle       int             `json:"window_angle"`
	Fan               FanSpeed        `json:"fan"`
	FanDuty           int             `json:"fan_duty"`
	Light             LightSnapshot   `json:"light"`
	LightShow         LightShow       `json:"light_show"`
	Buzzer            bool            `json:"buzzer"`
	TargetTemperature float64         `json:"target_temperature"`
	Devices           map[Device]bool `json:"devices"`
	Moving            []Device        `json:"moving,omitempty"`
	TakenAt           time.Time       `json:"taken_at"`
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Version:           c.version,
		Modes:             c.Modes(),
		SystemActive:      c.SystemActive(),
		Door:              c.door,
		DoorTarget:        c.doorTarget,
		DoorAngle:         c.level(DeviceDoor),
		LastDoorOperation: c.lastDoorOp,
		WindowOpening:     c.window,
		WindowAngle:       c.level(DeviceWindow),
		Fan:               c.fan,
		FanDuty:           c.level(DeviceFan),
		Light: LightSnapshot{
			Brightness: c.light.Brightness,
			Level:      c.level(DeviceLight),
			Mode:       c.light.Mode,
			Color:      c.light.Color.Hex(),
		},
		LightShow:         c.show,
		Buzzer:            c.buzzerOn,
		TargetTemperature: c.TargetTemperature(),
		Devices:           make(map[Device]bool, len(Devices)),
		TakenAt:           c.now(),
	}

	if !c.autoCloseAt.IsZero() {
		at := c.autoCloseAt
		s.AutoCloseAt = &at
	}
	for _, d := range Devices {
		s.Devices[d] = c.DeviceActive(d)
		if c.Moving(d) {
			s.Moving = append(s.Moving, d)
		}
	}
	if c.out.Light == nil {
		s.Light.Level = c.light.Brightness
	}

	return s
}
