package intent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/mode"
)

// Kind identifies what an intent asks for.
type Kind string

// Intent kinds.
const (
	LightsOn       Kind = "lights_on"
	LightsOff      Kind = "lights_off"
	SetTemperature Kind = "set_temperature"
	OpenWindows    Kind = "open_windows"
	CloseWindows   Kind = "close_windows"
	LockDoor       Kind = "lock_door"
	UnlockDoor     Kind = "unlock_door"
	FanUp          Kind = "fan_up"
	FanDown        Kind = "fan_down"
	ToggleAutoFan  Kind = "toggle_auto_fan"
	ToggleDoor     Kind = "toggle_door"
	Emergency      Kind = "emergency"

	SecurityStatus Kind = "security_status"
	EnergyReport   Kind = "energy_report"
	WeatherReport  Kind = "weather_report"
)

// Intent is one recognised request.
type Intent struct {
	Kind  Kind   `json:"kind"`
	Param string `json:"param,omitempty"`
}

// Query reports whether the intent asks for information rather than an
// action.
func (i Intent) Query() bool {
	switch i.Kind {
	case SecurityStatus, EnergyReport, WeatherReport:
		return true
	}
	return false
}

// phrases are matched in order against the normalised utterance; the
// first hit wins. "unlock" precedes "lock" so it is not shadowed.
var phrases = []struct {
	keyword string
	kind    Kind
}{
	{"lights on", LightsOn},
	{"light on", LightsOn},
	{"turn on lights", LightsOn},
	{"turn on light", LightsOn},
	{"switch on lights", LightsOn},
	{"switch on light", LightsOn},
	{"lights off", LightsOff},
	{"light off", LightsOff},
	{"turn off lights", LightsOff},
	{"turn off light", LightsOff},
	{"switch off lights", LightsOff},
	{"switch off light", LightsOff},
	{"temperature", SetTemperature},
	{"open windows", OpenWindows},
	{"open window", OpenWindows},
	{"close windows", CloseWindows},
	{"close window", CloseWindows},
	{"unlock door", UnlockDoor},
	{"lock door", LockDoor},
	{"security status", SecurityStatus},
	{"energy report", EnergyReport},
	{"weather", WeatherReport},
}

// fillers are dropped before matching.
var fillers = map[string]bool{
	"the": true, "a": true, "an": true, "my": true, "all": true, "please": true,
}

// normalise lower-cases text, collapses whitespace and drops fillers.
func normalise(text string) string {
	words := strings.Fields(strings.ToLower(text))
	kept := words[:0]
	for _, w := range words {
		if !fillers[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// ParseUtterance matches text against the keyword table. The parameter is
// whatever follows the first " to ".
func ParseUtterance(text string) (Intent, error) {
	norm := normalise(text)
	for _, p := range phrases {
		if strings.Contains(norm, p.keyword) {
			return Intent{Kind: p.kind, Param: parameter(norm)}, nil
		}
	}
	return Intent{}, fmt.Errorf("%w: %q", ErrNotRecognized, text)
}

func parameter(text string) string {
	_, after, ok := strings.Cut(text, " to ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}

// Command turns an action intent into a command. Relative intents (fan
// up, toggles) read the current state from snap.
func (i Intent) Command(snap actuator.Snapshot) (automation.Command, error) {
	cmd := automation.Command{Type: automation.ControlDevice, Source: automation.SourceIntent}

	switch i.Kind {
	case LightsOn:
		cmd.Target, cmd.Value = "light", "255"
	case LightsOff:
		cmd.Target, cmd.Value = "light", "0"
	case OpenWindows:
		cmd.Target, cmd.Value = "window", "100"
	case CloseWindows:
		cmd.Target, cmd.Value = "window", "0"
	case LockDoor:
		cmd.Target, cmd.Value = "door", automation.Value(actuator.DoorLocked.String())
	case UnlockDoor:
		cmd.Target, cmd.Value = "door", automation.Value(actuator.DoorUnlocked.String())

	case ToggleDoor:
		next := actuator.DoorLocked
		if snap.DoorTarget == actuator.DoorLocked {
			next = actuator.DoorUnlocked
		}
		cmd.Target, cmd.Value = "door", automation.Value(next.String())

	case FanUp, FanDown:
		step := 1
		if i.Kind == FanDown {
			step = -1
		}
		n := min(max(snap.Fan.Ordinal()+step, 0), 3)
		speed, err := actuator.FanSpeedFromOrdinal(n)
		if err != nil {
			return automation.Command{}, err
		}
		cmd.Target, cmd.Value = "fan", automation.Value(speed.String())

	case ToggleAutoFan:
		cmd.Type = automation.SetMode
		cmd.Target = mode.AutoFan.String()
		cmd.Value = automation.Value(strconv.FormatBool(!snap.Modes.Has(mode.AutoFan)))

	case SetTemperature:
		if i.Param == "" {
			return automation.Command{}, fmt.Errorf("%w: temperature", ErrMissingParameter)
		}
		t, err := leadingNumber(i.Param)
		if err != nil {
			return automation.Command{}, err
		}
		cmd.Type = automation.SetThreshold
		cmd.Target = "target_temperature"
		cmd.Value = automation.Value(strconv.FormatFloat(t, 'f', -1, 64))

	default:
		return automation.Command{}, fmt.Errorf("%w: %s", ErrNotCommand, i.Kind)
	}

	if err := cmd.Normalize(); err != nil {
		return automation.Command{}, err
	}
	return cmd, nil
}

// leadingNumber parses the number at the start of s ("24 degrees" -> 24).
func leadingNumber(s string) (float64, error) {
	field, _, _ := strings.Cut(s, " ")
	v, err := strconv.ParseFloat(strings.TrimSuffix(field, "c"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a temperature", automation.ErrInvalidValue, s)
	}
	return v, nil
}
