package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemStatus is the /system response.
type SystemStatus struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	WebSocket     WSMetrics       `json:"websocket"`
	Components    map[string]bool `json:"components"`
	Tripped       bool            `json:"emergency_tripped"`
	Modes         string          `json:"modes"`
	StateVersion  uint64          `json:"state_version"`
	SensorErrors  []string        `json:"sensor_errors"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// handleSystem reports runtime and component status.
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := s.ctrl.State()
	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(mem.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(mem.TotalAlloc) / 1024 / 1024,
			NumGC:         mem.NumGC,
		},
		WebSocket:    WSMetrics{ConnectedClients: s.hub.ClientCount()},
		Components:   make(map[string]bool, len(s.health)),
		Tripped:      st.Tripped,
		Modes:        st.Actuators.Modes.String(),
		StateVersion: st.Actuators.Version,
		SensorErrors: st.SensorErrors,
	}
	if status.SensorErrors == nil {
		status.SensorErrors = []string{}
	}
	for name, hc := range s.health {
		status.Components[name] = hc.HealthCheck(r.Context()) == nil
	}

	writeJSON(w, http.StatusOK, status)
}
