// Package sensor acquires, validates and smooths environmental readings.
//
// A Source produces raw Readings: SimulatedSource for benches without
// hardware, MQTTSource for sensor nodes publishing JSON. Filter replaces
// NaN or out-of-range fields with the last valid value and keeps a short
// ErrorLog of what it replaced. Smoother averages each field over a
// rolling window of recent readings for the automation rules.
package sensor
