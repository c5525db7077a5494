package mode

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is one system mode.
type Flag uint8

// Mode flags.
const (
	Active Flag = 1 << iota
	Night
	Vacation
	Party
	Eco
	AutoFan
)

// Flags lists every flag in display order.
var Flags = []Flag{Active, Night, Vacation, Party, Eco, AutoFan}

var flagNames = map[Flag]string{
	Active:   "active",
	Night:    "night",
	Vacation: "vacation",
	Party:    "party",
	Eco:      "eco",
	AutoFan:  "auto_fan",
}

// String returns the flag's wire name.
func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("flag(%d)", uint8(f))
}

// ParseFlag converts a wire name into a Flag.
func ParseFlag(s string) (Flag, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "autofan" || key == "auto-fan" {
		key = "auto_fan"
	}
	for f, name := range flagNames {
		if name == key {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFlag, s)
}

// Set is an immutable set of mode flags.
type Set uint8

// NewSet builds a Set from flags.
func NewSet(flags ...Flag) Set {
	var s Set
	for _, f := range flags {
		s = s.With(f)
	}
	return s
}

// Has reports whether every given flag is set.
func (s Set) Has(flags ...Flag) bool {
	for _, f := range flags {
		if uint8(s)&uint8(f) == 0 {
			return false
		}
	}
	return true
}

// With returns s with f set.
func (s Set) With(f Flag) Set { return s | Set(f) }

// Without returns s with f cleared.
func (s Set) Without(f Flag) Set { return s &^ Set(f) }

// Toggle returns s with f set to on.
func (s Set) Toggle(f Flag, on bool) Set {
	if on {
		return s.With(f)
	}
	return s.Without(f)
}

// Flags returns the set flags in display order.
func (s Set) Flags() []Flag {
	var out []Flag
	for _, f := range Flags {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// String renders the set as "active|night".
func (s Set) String() string {
	flags := s.Flags()
	if len(flags) == 0 {
		return "none"
	}
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.String()
	}
	return strings.Join(names, "|")
}

// MarshalJSON renders the set as an object of booleans.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, len(Flags))
	for _, f := range Flags {
		out[f.String()] = s.Has(f)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the object form written by MarshalJSON.
func (s *Set) UnmarshalJSON(data []byte) error {
	var in map[string]bool
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var out Set
	for name, on := range in {
		f, err := ParseFlag(name)
		if err != nil {
			return err
		}
		out = out.Toggle(f, on)
	}
	*s = out
	return nil
}
