// Package emergency forces the actuators into their safe state.
//
// Trigger is unconditional: it runs whatever the mode flags say, abandons
// motion in progress, and leaves the system inactive until an operator
// calls Restore. There is no automatic re-arm.
//
// Each trigger and restore is kept in a bounded in-memory history and
// fanned out to the configured notifiers (display, MQTT, audit, metrics).
// Notifier failures are logged and never block the shutdown.
package emergency
