// Package logging provides structured logging for Hearth.
//
// It wraps log/slog so every entry carries the service name and build
// version, and components tag themselves with Component("name").
//
// Configuration:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Component("scheduler").Info("schedule applied", "device", "fan")
//
// Never log the MQTT password, API token or InfluxDB token.
package logging
