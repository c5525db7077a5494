package actuator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Device identifies one output.
type Device string

// Devices.
const (
	DeviceDoor   Device = "door"
	DeviceWindow Device = "window"
	DeviceFan    Device = "fan"
	DeviceLight  Device = "light"
	DeviceBuzzer Device = "buzzer"
)

// Devices lists every output in a fixed order.
var Devices = []Device{DeviceDoor, DeviceWindow, DeviceFan, DeviceLight, DeviceBuzzer}

// ParseDevice converts a wire name into a Device.
func ParseDevice(s string) (Device, error) {
	d := Device(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Devices {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDevice, s)
}

// DoorState is the door's lock position.
type DoorState int

// Door states.
const (
	DoorLocked DoorState = iota
	DoorUnlocked
	DoorPartiallyOpen
)

var doorNames = map[DoorState]string{
	DoorLocked:        "LOCKED",
	DoorUnlocked:      "UNLOCKED",
	DoorPartiallyOpen: "PARTIALLY_OPEN",
}

// Angle returns the servo angle for the state.
func (d DoorState) Angle() int {
	switch d {
	case DoorUnlocked:
		return 90
	case DoorPartiallyOpen:
		return 45
	default:
		return 0
	}
}

// String returns the wire name.
func (d DoorState) String() string {
	if name, ok := doorNames[d]; ok {
		return name
	}
	return "DoorState(" + strconv.Itoa(int(d)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (d DoorState) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DoorState) UnmarshalText(b []byte) error {
	v, err := ParseDoorState(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDoorState accepts the wire name, lower case, or "open"/"closed" aliases.
func ParseDoorState(s string) (DoorState, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOCKED", "LOCK", "CLOSED", "CLOSE":
		return DoorLocked, nil
	case "UNLOCKED", "UNLOCK", "OPEN":
		return DoorUnlocked, nil
	case "PARTIALLY_OPEN", "PARTIAL", "AJAR":
		return DoorPartiallyOpen, nil
	}
	return DoorLocked, fmt.Errorf("%w: door state %q", ErrInvalidValue, s)
}

// FanSpeed is a fan band. The value is the PWM duty.
type FanSpeed int

// Fan speeds.
const (
	FanOff    FanSpeed = 0
	FanLow    FanSpeed = 85
	FanMedium FanSpeed = 170
	FanHigh   FanSpeed = 255
)

var fanOrder = []FanSpeed{FanOff, FanLow, FanMedium, FanHigh}

// Duty returns the PWM duty for the speed.
func (f FanSpeed) Duty() int { return int(f) }

// Ordinal returns 0 for off through 3 for high.
func (f FanSpeed) Ordinal() int {
	for i, s := range fanOrder {
		if s == f {
			return i
		}
	}
	return 0
}

// Valid reports whether f is one of the four bands.
func (f FanSpeed) Valid() bool {
	for _, s := range fanOrder {
		if s == f {
			return true
		}
	}
	return false
}

// String returns the wire name.
func (f FanSpeed) String() string {
	switch f {
	case FanOff:
		return "OFF"
	case FanLow:
		return "LOW"
	case FanMedium:
		return "MEDIUM"
	case FanHigh:
		return "HIGH"
	}
	return "FanSpeed(" + strconv.Itoa(int(f)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (f FanSpeed) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FanSpeed) UnmarshalText(b []byte) error {
	v, err := ParseFanSpeed(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FanSpeedFromOrdinal converts 0..3 into a speed.
func FanSpeedFromOrdinal(n int) (FanSpeed, error) {
	if n < 0 || n >= len(fanOrder) {
		return FanOff, fmt.Errorf("%w: fan ordinal %d", ErrInvalidValue, n)
	}
	return fanOrder[n], nil
}

// ParseFanSpeed accepts a band name, an ordinal 0..3 or an exact duty.
func ParseFanSpeed(s string) (FanSpeed, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return FanOff, nil
	case "LOW":
		return FanLow, nil
	case "MEDIUM", "MED":
		return FanMedium, nil
	case "HIGH":
		return FanHigh, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return FanOff, fmt.Errorf("%w: fan speed %q", ErrInvalidValue, s)
	}
	if f := FanSpeed(n); f.Valid() {
		return f, nil
	}
	return FanSpeedFromOrdinal(n)
}

// LightMode is the lighting mode.
type LightMode int

// Light modes.
const (
	LightNormal LightMode = iota
	LightAmbient
	LightNight
	LightParty
	LightAlert
)

var lightModeNames = map[LightMode]string{
	LightNormal:  "NORMAL",
	LightAmbient: "AMBIENT",
	LightNight:   "NIGHT",
	LightParty:   "PARTY",
	LightAlert:   "ALERT",
}

// String returns the wire name.
func (m LightMode) String() string {
	if name, ok := lightModeNames[m]; ok {
		return name
	}
	return "LightMode(" + strconv.Itoa(int(m)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (m LightMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *LightMode) UnmarshalText(b []byte) error {
	v, err := ParseLightMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseLightMode converts a wire name into a LightMode.
func ParseLightMode(s string) (LightMode, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range lightModeNames {
		if name == key {
			return m, nil
		}
	}
	return LightNormal, fmt.Errorf("%w: light mode %q", ErrInvalidValue, s)
}

// Preset brightness per light mode.
var lightModeBrightness = map[LightMode]int{
	LightNormal:  255,
	LightAmbient: 120,
	LightNight:   20,
	LightParty:   255,
	LightAlert:   255,
}

// PresetBrightness returns the brightness a mode switches to.
func (m LightMode) PresetBrightness() int {
	return lightModeBrightness[m]
}

// Pattern is a light show animation.
type Pattern string

// Light show patterns.
const (
	PatternRainbow Pattern = "rainbow"
	PatternPulse   Pattern = "pulse"
	PatternStrobe  Pattern = "strobe"
	PatternAlert   Pattern = "alert"
)

// ParsePattern converts a wire name into a Pattern.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PatternRainbow, PatternPulse, PatternStrobe, PatternAlert:
		return p, nil
	}
	return "", fmt.Errorf("%w: pattern %q", ErrInvalidValue, s)
}

// LightShow is an ephemeral animation. It deactivates once Duration has
// elapsed since Start.
type LightShow struct {
	Active   bool          `json:"active"`
	Start    time.Time     `json:"start,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Pattern  Pattern       `json:"pattern,omitempty"`
}

// Expired reports whether the show has run its course at now.
func (s LightShow) Expired(now time.Time) bool {
	return !s.Active || !now.Before(s.Start.Add(s.Duration))
}
