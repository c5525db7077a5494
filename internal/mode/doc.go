// Package mode tracks Hearth's system-wide modes and the guards they impose.
//
// Modes are independent flags held in a Set bitset, so night, vacation,
// party and eco can all be on at once. Guards are evaluated as the AND of
// every applicable restriction; there is no precedence between modes.
//
// Turning a mode on can require immediate actuator changes (vacation forces
// the window shut, night silences the fan). Policy.Set returns those as
// Effects for the actuator layer to apply; the policy itself never touches
// hardware.
package mode
