package automation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/mode"
)

// Type is the closed set of command types.
type Type int

// Command types.
const (
	SetMode Type = iota + 1
	SetThreshold
	ControlDevice
	UpdateSchedule
	SceneControl
	AutomationRule
)

var typeNames = map[Type]string{
	SetMode:        "SET_MODE",
	SetThreshold:   "SET_THRESHOLD",
	ControlDevice:  "CONTROL_DEVICE",
	UpdateSchedule: "UPDATE_SCHEDULE",
	SceneControl:   "SCENE_CONTROL",
	AutomationRule: "AUTOMATION_RULE",
}

// String returns the wire name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType converts a wire name into a Type.
func ParseType(s string) (Type, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Extra CONTROL_DEVICE targets beyond the actuator devices.
const (
	TargetLightMode  = "light_mode"
	TargetLightColor = "light_color"
	TargetLightShow  = "light_show"
)

// Schedule actions carried in an UPDATE_SCHEDULE value.
const (
	ScheduleCreate  = "create"
	ScheduleUpdate  = "update"
	ScheduleDelete  = "delete"
	ScheduleEnable  = "enable"
	ScheduleDisable = "disable"
)

// Scene actions carried in a SCENE_CONTROL value.
const (
	SceneActivate = "activate"
	SceneSchedule = "schedule"
	SceneCancel   = "cancel"
	SceneOptimize = "optimize"
)

// Sources recorded on commands.
const (
	SourceAPI       = "api"
	SourceWebSocket = "websocket"
	SourceMQTT      = "mqtt"
	SourceIntent    = "intent"
	SourceSystem    = "system"
)

// Value is a command value. JSON strings, numbers and booleans are all
// accepted and kept in their text form.
type Value string

// UnmarshalJSON accepts any JSON scalar.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		return fmt.Errorf("%w: value must be a string, number or boolean", ErrInvalidCommand)
	default:
		*v = Value(b)
	}
	return nil
}

// Int parses the value as an integer.
func (v Value) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(string(v)), "%"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, string(v))
	}
	return n, nil
}

// Float parses the value as a number.
func (v Value) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, string(v))
	}
	return f, nil
}

// Bool parses the value as an on/off switch. Positive numbers are true.
func (v Value) Bool() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(string(v))) {
	case "true", "on", "yes", "enable", "enabled":
		return true, nil
	case "false", "off", "no", "disable", "disabled", "":
		return false, nil
	}
	if f, err := v.Float(); err == nil {
		return f > 0, nil
	}
	return false, fmt.Errorf("%w: %q is not a switch value", ErrInvalidValue, string(v))
}

// Command is the envelope every control surface submits.
type Command struct {
	ID         string            `json:"id"`
	Type       Type              `json:"type"`
	Target     string            `json:"target"`
	Value      Value             `json:"value"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Source     string            `json:"source,omitempty"`
}

// ParseCommand decodes and validates a JSON command. source is recorded
// when the envelope does not name one.
func ParseCommand(data []byte, source string) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if cmd.Source == "" {
		cmd.Source = source
	}
	if err := cmd.Normalize(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// Normalize validates the type and target, lower-cases the target and
// assigns an ID when missing.
func (c *Command) Normalize() error {
	if _, ok := typeNames[c.Type]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, c.Type)
	}
	c.Target = strings.TrimSpace(c.Target)
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Source == "" {
		c.Source = SourceAPI
	}

	switch c.Type {
	case SetMode:
		c.Target = strings.ToLower(c.Target)
		f, err := mode.ParseFlag(c.Target)
		if err != nil || f == mode.Active {
			return fmt.Errorf("%w: mode %q", ErrUnknownTarget, c.Target)
		}
	case SetThreshold:
		c.Target = strings.ToLower(c.Target)
		if _, ok := thresholdFields[c.Target]; !ok {
			return fmt.Errorf("%w: threshold %q", ErrUnknownTarget, c.Target)
		}
	case ControlDevice:
		c.Target = strings.ToLower(c.Target)
		switch c.Target {
		case TargetLightMode, TargetLightColor, TargetLightShow:
		default:
			if _, err := actuator.ParseDevice(c.Target); err != nil {
				return fmt.Errorf("%w: device %q", ErrUnknownTarget, c.Target)
			}
		}
	case UpdateSchedule:
		action := strings.ToLower(string(c.Value))
		switch action {
		case ScheduleCreate:
		case ScheduleUpdate, ScheduleDelete, ScheduleEnable, ScheduleDisable:
			if c.Target == "" {
				return fmt.Errorf("%w: schedule id required for %s", ErrInvalidCommand, action)
			}
		default:
			return fmt.Errorf("%w: schedule action %q", ErrInvalidValue, string(c.Value))
		}
		c.Value = Value(action)
	case SceneControl:
		if c.Target == "" {
			return fmt.Errorf("%w: scene required", ErrInvalidCommand)
		}
		action := strings.ToLower(string(c.Value))
		if action == "" {
			action = SceneActivate
		}
		switch action {
		case SceneActivate, SceneSchedule, SceneCancel, SceneOptimize:
		default:
			return fmt.Errorf("%w: scene action %q", ErrInvalidValue, string(c.Value))
		}
		c.Value = Value(action)
	case AutomationRule:
		c.Target = strings.ToLower(c.Target)
		if _, ok := ruleNames[Rule(c.Target)]; !ok {
			return fmt.Errorf("%w: rule %q", ErrUnknownTarget, c.Target)
		}
	}
	return nil
}

// Param returns a parameter or "".
func (c Command) Param(key string) string {
	return c.Parameters[key]
}

// Result reports what a command did.
type Result struct {
	CommandID string `json:"command_id"`
	Type      Type   `json:"type"`
	Target    string `json:"target"`
	Applied   bool   `json:"applied"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}
