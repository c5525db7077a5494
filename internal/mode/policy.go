package mode

import "math"

// Set-points in °C.
const (
	DefaultTemperature = 23.0
	NightTemperature   = 20.0
	PartyTemperature   = 22.0
	EcoRaise           = 1.0
)

// NightWindowCap is the largest window opening, in percent, left in place
// when night mode is switched on.
const NightWindowCap = 20

// LightPreset names a lighting mode requested by a mode change.
type LightPreset string

// Light presets.
const (
	PresetNormal LightPreset = "normal"
	PresetNight  LightPreset = "night"
	PresetParty  LightPreset = "party"
)

// EffectKind identifies an actuator change required by a mode change.
type EffectKind int

// Effect kinds.
const (
	// ForceDoorLocked locks the door immediately.
	ForceDoorLocked EffectKind = iota + 1
	// ForceWindow sets the window to Value percent.
	ForceWindow
	// CapWindow lowers the window to Value percent if it is open wider.
	CapWindow
	// ForceFanOff stops the fan.
	ForceFanOff
	// SetLight switches the light to Preset.
	SetLight
)

// Effect is one actuator change required by a mode change.
type Effect struct {
	Kind   EffectKind
	Value  int
	Preset LightPreset
}

// CanActuate reports whether any actuator may change.
func CanActuate(s Set) bool {
	return s.Has(Active)
}

// DoorAllowed reports whether the door may move. locking is true when the
// requested state is locked; vacation mode only ever permits locking.
func DoorAllowed(s Set, locking bool) bool {
	return CanActuate(s) && (locking || !s.Has(Vacation))
}

// FanAllowed reports whether a manual fan command may run.
func FanAllowed(s Set) bool {
	return CanActuate(s) && !s.Has(Night)
}

// AutoFanEnabled reports whether automatic fan control runs.
func AutoFanEnabled(s Set) bool {
	return s.Has(Active, AutoFan)
}

// Policy holds the current mode set and the comfort set-point.
// It is owned by the control loop and is not safe for concurrent use.
type Policy struct {
	set  Set
	base float64
}

// NewPolicy returns an active policy with no other modes.
func NewPolicy(baseTemperature float64) *Policy {
	if baseTemperature == 0 {
		baseTemperature = DefaultTemperature
	}
	return &Policy{set: NewSet(Active), base: baseTemperature}
}

// Modes returns the current mode set.
func (p *Policy) Modes() Set { return p.set }

// Apply switches flag f and returns the actuator effects the change
// requires. Active is reserved for Shutdown and Restore. Switching a flag
// to its current value returns no effects.
func (p *Policy) Apply(f Flag, on bool) ([]Effect, error) {
	if f == Active {
		return nil, ErrReservedFlag
	}
	if _, ok := flagNames[f]; !ok {
		return nil, ErrUnknownFlag
	}
	if p.set.Has(f) == on {
		return nil, nil
	}
	p.set = p.set.Toggle(f, on)

	if on {
		return activationEffects(f), nil
	}
	return p.deactivationEffects(f), nil
}

func activationEffects(f Flag) []Effect {
	switch f {
	case Vacation:
		return []Effect{
			{Kind: ForceDoorLocked},
			{Kind: ForceWindow, Value: 0},
			{Kind: ForceFanOff},
		}
	case Night:
		return []Effect{
			{Kind: ForceFanOff},
			{Kind: SetLight, Preset: PresetNight},
			{Kind: CapWindow, Value: NightWindowCap},
		}
	case Party:
		return []Effect{{Kind: SetLight, Preset: PresetParty}}
	default:
		return nil
	}
}

// deactivationEffects hands the light back to whichever lighting mode is
// still on.
func (p *Policy) deactivationEffects(f Flag) []Effect {
	if f != Night && f != Party {
		return nil
	}
	preset := PresetNormal
	switch {
	case p.set.Has(Night):
		preset = PresetNight
	case p.set.Has(Party):
		preset = PresetParty
	}
	return []Effect{{Kind: SetLight, Preset: preset}}
}

// Shutdown clears Active and leaves the other flags untouched.
func (p *Policy) Shutdown() {
	p.set = p.set.Without(Active)
}

// Restore sets Active and clears every other mode.
func (p *Policy) Restore() {
	p.set = NewSet(Active)
}

// SetBaseTemperature replaces the comfort set-point used when no mode
// lowers it.
func (p *Policy) SetBaseTemperature(t float64) {
	p.base = t
}

// BaseTemperature returns the comfort set-point before mode adjustments.
func (p *Policy) BaseTemperature() float64 { return p.base }

// TargetTemperature is the lowest set-point among the active comfort
// modes, raised by EcoRaise in eco mode.
func (p *Policy) TargetTemperature() float64 {
	t := p.base
	if p.set.Has(Party) {
		t = math.Min(t, PartyTemperature)
	}
	if p.set.Has(Night) {
		t = math.Min(t, NightTemperature)
	}
	if p.set.Has(Eco) {
		t += EcoRaise
	}
	return t
}
