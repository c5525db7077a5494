package actuator

import (
	"context"
	"time"
)

// History source values.
const (
	SourceCommand    = "command"
	SourceSchedule   = "schedule"
	SourceAutomation = "automation"
	SourceScene      = "scene"
	SourceEmergency  = "emergency"
	SourceSystem     = "system"
)

// HistoryEntry is one recorded device state change.
type HistoryEntry struct {
	ID        int64          `json:"id"`
	Device    Device         `json:"device"`
	State     map[string]any `json:"state"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoryRepository stores and retrieves device state history.
//
// Implementations must be safe for concurrent use and store UTC timestamps.
type HistoryRepository interface {
	// RecordChange stores a state change for device.
	RecordChange(ctx context.Context, device Device, state map[string]any, source string) error

	// GetHistory returns up to limit entries for device, newest first.
	GetHistory(ctx context.Context, device Device, limit int) ([]HistoryEntry, error)
}

// Changes compares two snapshots and returns the per-device state of every
// device that differs. Door changes are reported on commit only.
func Changes(prev, cur Snapshot) map[Device]map[string]any {
	out := make(map[Device]map[string]any)

	if prev.Door != cur.Door {
		out[DeviceDoor] = map[string]any{"state": cur.Door.String(), "angle": cur.Door.Angle()}
	}
	if prev.WindowOpening != cur.WindowOpening {
		out[DeviceWindow] = map[string]any{"opening": cur.WindowOpening}
	}
	if prev.Fan != cur.Fan {
		out[DeviceFan] = map[string]any{"speed": cur.Fan.String(), "duty": cur.Fan.Duty()}
	}
	if prev.Light.Brightness != cur.Light.Brightness || prev.Light.Mode != cur.Light.Mode || prev.Light.Color != cur.Light.Color {
		out[DeviceLight] = map[string]any{
			"brightness": cur.Light.Brightness,
			"mode":       cur.Light.Mode.String(),
			"color":      cur.Light.Color,
		}
	}
	if prev.Buzzer != cur.Buzzer {
		out[DeviceBuzzer] = map[string]any{"on": cur.Buzzer}
	}

	return out
}
