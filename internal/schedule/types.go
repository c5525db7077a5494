package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
)

// Schedule applies Value to Device while the site-local hour is inside
// [StartHour, EndHour).
type Schedule struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Device       actuator.Device `json:"device"`
	StartHour    int             `json:"start_hour"`
	EndHour      int             `json:"end_hour"`
	Enabled      bool            `json:"enabled"`
	Value        string          `json:"value"`
	WrapMidnight bool            `json:"wrap_midnight"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsActive reports whether hour falls inside the window. A window with
// StartHour > EndHour is empty unless WrapMidnight is set, in which case
// it runs from StartHour through midnight to EndHour.
func (s *Schedule) IsActive(hour int) bool {
	if s.WrapMidnight && s.StartHour > s.EndHour {
		return hour >= s.StartHour || hour < s.EndHour
	}
	return s.StartHour <= hour && hour < s.EndHour
}

// Payload decodes Value for the schedule's device.
func (s *Schedule) Payload() (Payload, error) {
	return ParsePayload(s.Device, s.Value)
}

// DeepCopy returns an independent copy.
func (s *Schedule) DeepCopy() *Schedule {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Payload is a decoded device target. Only the field for Device is used.
type Payload struct {
	Device actuator.Device    `json:"device"`
	Fan    actuator.FanSpeed  `json:"fan,omitempty"`
	Window int                `json:"window,omitempty"`
	Door   actuator.DoorState `json:"door,omitempty"`
}

// DefaultPayload is the target applied outside a schedule's window: fan
// OFF, window 0%, door LOCKED.
func DefaultPayload(d actuator.Device) Payload {
	return Payload{Device: d, Fan: actuator.FanOff, Window: 0, Door: actuator.DoorLocked}
}

// ParsePayload decodes value for device d. Fan accepts a band name or
// ordinal, window a percentage 0..100, door a lock state name.
func ParsePayload(d actuator.Device, value string) (Payload, error) {
	p := DefaultPayload(d)
	switch d {
	case actuator.DeviceFan:
		f, err := actuator.ParseFanSpeed(value)
		if err != nil {
			return p, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		p.Fan = f
	case actuator.DeviceWindow:
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), "%"))
		if err != nil || n < 0 || n > 100 {
			return p, fmt.Errorf("%w: window opening %q must be 0-100", ErrInvalidValue, value)
		}
		p.Window = n
	case actuator.DeviceDoor:
		s, err := actuator.ParseDoorState(value)
		if err != nil {
			return p, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		p.Door = s
	default:
		return p, fmt.Errorf("%w: %q", ErrUnsupportedDevice, d)
	}
	return p, nil
}

// String renders the payload value.
func (p Payload) String() string {
	switch p.Device {
	case actuator.DeviceFan:
		return p.Fan.String()
	case actuator.DeviceWindow:
		return strconv.Itoa(p.Window)
	case actuator.DeviceDoor:
		return p.Door.String()
	}
	return ""
}

// Decision records what a tick did for one schedule.
type Decision struct {
	ScheduleID string          `json:"schedule_id"`
	Device     actuator.Device `json:"device"`
	Active     bool            `json:"active"`
	Payload    Payload         `json:"payload"`
	Applied    bool            `json:"applied"`
	Overridden bool            `json:"overridden"`
}
