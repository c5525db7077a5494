// Package actuator owns the authoritative state of every Hearth output and
// the tick-driven motion engine that moves them.
//
// # Ownership
//
// Controller holds one hardware.Channel per output and is the only code
// that writes to them. Schedules, automation rules, scenes and the API all
// go through Controller's command surface. Controller is owned by the
// control loop goroutine and is not safe for concurrent use; other
// goroutines read state through Snapshot copies published by the loop.
//
// # Guards
//
// Every mutator first consults the mode.Set. While the system is inactive
// all mutators are soft no-ops: they return false, log at debug and leave
// state unchanged. Vacation mode only permits locking the door; night mode
// refuses fan commands.
//
// # Motion
//
// Servo travel, fan spin-up and light fades are hardware.Ramp values
// advanced by Tick. A door movement commits its new DoorState only when the
// servo reaches the target angle. A door request that arrives mid-travel is
// queued and started when the current travel completes, so the door never
// reverses mid-ramp. EmergencyShutdown discards all motion and writes the
// safe state directly.
package actuator
