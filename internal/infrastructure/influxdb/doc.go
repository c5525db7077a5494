// Package influxdb writes Hearth telemetry to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library: Connect pings the
// server, then every write goes through the non-blocking batched WriteAPI
// so the control loop never waits on the network.
//
// Measurements:
//   - sensors: one point per filtered reading (every numeric field plus
//     motion and rain)
//   - actuators: one point per actuator state change
//   - energy: estimated draw and daily total after each rule pass
//   - emergency: one point per trigger or restore
//
// Every point is tagged with the site ID.
//
// Write errors arrive asynchronously and are delivered to the callback set
// with SetOnError. Connection and health check errors are returned directly.
package influxdb
