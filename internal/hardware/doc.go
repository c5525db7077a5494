// Package hardware drives Hearth's physical outputs.
//
// Every output (door servo, window servo, fan PWM, light, buzzer) is a
// Channel: a bounded integer output that clamps on write and reports the
// value it actually applied. Drivers:
//
//   - FakeChannel: in-memory, used in tests and on development machines
//   - DigitalChannel: on/off line through the Linux GPIO character device
//   - PWMChannel: servo angle or duty cycle through periph.io
//
// Movement is expressed as a Ramp value object that the control loop
// advances once per tick, so a long servo travel never blocks sensor
// polling and can be abandoned at any point. RampTo is the blocking form
// used by the startup self-test.
//
// Attach wraps driver initialisation with bounded retries. A channel that
// cannot be attached is reported with ErrInitFailed and its device is
// treated as inactive by the caller.
package hardware
