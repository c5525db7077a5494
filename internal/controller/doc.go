// Package controller runs the Hearth control loop.
//
// One goroutine (Run) owns the actuator controller, the automation engine,
// the schedule engine and the scene manager. It selects over four sources:
//
//   - the control tick (default 50ms), which advances ramps, light shows,
//     the buzzer and the door auto-close deadline
//   - the sensor poll (default 2s), which reads, filters and smooths a
//     reading, runs the automation rules and refreshes the display
//   - the schedule tick (default 1 min), which applies time-of-day
//     schedules and fires scene timers
//   - the command channel, fed by Submit from any goroutine
//
// Emergency requests travel on a separate channel that is drained before
// anything else on every iteration, so a trip never waits behind queued
// commands.
//
// After every iteration the loop publishes a State copy under a mutex and,
// when something changed, records device history and calls the registered
// listeners (WebSocket hub, MQTT bridge). Listeners run on the loop
// goroutine and must not block.
package controller
