// Package display renders controller state for a status display.
//
// A Sink is fire-and-forget: it never returns an error to the caller and
// never blocks the control loop for long. LogSink writes to the structured
// log, MQTTSink publishes to hearth/display/status and hearth/display/alert
// for a remote panel, and Multi fans out to several sinks.
package display
