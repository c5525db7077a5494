// Package metrics exports controller state as Prometheus metrics.
//
// Gauges mirror the latest actuator snapshot, sensor reading and automation
// evaluation; counters track commands, emergencies and rejected sensor
// values. The control loop feeds the collector after each iteration, so a
// scrape never touches actuator state directly.
package metrics
