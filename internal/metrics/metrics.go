package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/mode"
	"github.com/nerrad567/hearth/internal/sensor"
)

const namespace = "hearth"

// Command results recorded in hearth_commands_total.
const (
	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds every collector.
type Metrics struct {
	sensor       *prometheus.GaugeVec
	motion       prometheus.Gauge
	raining      prometheus.Gauge
	output       *prometheus.GaugeVec
	deviceActive *prometheus.GaugeVec
	mode         *prometheus.GaugeVec
	systemActive prometheus.Gauge
	comfort      prometheus.Gauge
	powerW       prometheus.Gauge
	dailyKWh     prometheus.Gauge
	savings      prometheus.Gauge

	commands   *prometheus.CounterVec
	emergency  *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	loopTiming prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sensor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_value",
			Help:      "Latest filtered sensor value.",
		}, []string{"field"}),
		motion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_motion",
			Help:      "1 when motion was detected in the latest reading.",
		}),
		raining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_raining",
			Help:      "1 when rain was detected in the latest reading.",
		}),
		output: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_level",
			Help:      "Current hardware level per output (angle, duty or 0/1).",
		}, []string{"device"}),
		deviceActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_active",
			Help:      "1 when the output attached and accepts commands.",
		}, []string{"device"}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mode_enabled",
			Help:      "1 when the mode flag is set.",
		}, []string{"mode"}),
		systemActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_active",
			Help:      "1 while the system accepts commands.",
		}),
		comfort: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "comfort_index",
			Help:      "Comfort index from 0 to 100.",
		}),
		powerW: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_watts",
			Help:      "Estimated draw of the managed outputs.",
		}),
		dailyKWh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_today_kwh",
			Help:      "Estimated energy used by the managed outputs since local midnight.",
		}),
		savings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_savings_percent",
			Help:      "Current draw below the baseline household consumption.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled by type, source and result.",
		}, []string{"type", "source", "result"}),
		emergency: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emergency_events_total",
			Help:      "Emergency triggers and restores by reason.",
		}, []string{"kind", "reason"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_fallbacks_total",
			Help:      "Sensor values rejected and replaced with the last valid value.",
		}, []string{"field"}),
		loopTiming: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loop_iteration_seconds",
			Help:      "Time spent in one control loop iteration.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
	}

	reg.MustRegister(
		m.sensor, m.motion, m.raining, m.output, m.deviceActive, m.mode,
		m.systemActive, m.comfort, m.powerW, m.dailyKWh, m.savings,
		m.commands, m.emergency, m.fallbacks, m.loopTiming,
	)
	return m
}

// NewRegistry returns a registry with the Go runtime and process
// collectors already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveSnapshot mirrors actuator state.
func (m *Metrics) ObserveSnapshot(s actuator.Snapshot) {
	m.output.WithLabelValues(string(actuator.DeviceDoor)).Set(float64(s.DoorAngle))
	m.output.WithLabelValues(string(actuator.DeviceWindow)).Set(float64(s.WindowAngle))
	m.output.WithLabelValues(string(actuator.DeviceFan)).Set(float64(s.FanDuty))
	m.output.WithLabelValues(string(actuator.DeviceLight)).Set(float64(s.Light.Level))
	m.output.WithLabelValues(string(actuator.DeviceBuzzer)).Set(boolToFloat(s.Buzzer))

	for d, active := range s.Devices {
		m.deviceActive.WithLabelValues(string(d)).Set(boolToFloat(active))
	}
	for _, f := range mode.Flags {
		m.mode.WithLabelValues(f.String()).Set(boolToFloat(s.Modes.Has(f)))
	}
	m.systemActive.Set(boolToFloat(s.SystemActive))
}

// ObserveReading mirrors a filtered reading and counts replaced fields.
func (m *Metrics) ObserveReading(r sensor.Reading, replaced []sensor.Field) {
	for _, f := range sensor.Fields {
		m.sensor.WithLabelValues(string(f)).Set(r.Get(f))
	}
	m.motion.Set(boolToFloat(r.Motion))
	m.raining.Set(boolToFloat(r.Raining))
	for _, f := range replaced {
		m.fallbacks.WithLabelValues(string(f)).Inc()
	}
}

// ObserveEvaluation records the comfort and energy figures.
func (m *Metrics) ObserveEvaluation(ev automation.Evaluation) {
	m.comfort.Set(ev.Comfort)
	m.powerW.Set(ev.Energy.CurrentW)
	m.dailyKWh.Set(ev.Energy.DailyKWh)
	m.savings.Set(ev.Energy.SavingsPercent)
}

// CommandHandled counts one command.
func (m *Metrics) CommandHandled(cmd automation.Command, applied bool, err error) {
	result := ResultApplied
	switch {
	case err != nil:
		result = ResultError
	case !applied:
		result = ResultRejected
	}
	m.commands.WithLabelValues(cmd.Type.String(), cmd.Source, result).Inc()
}

// ObserveLoop records the duration of one loop iteration.
func (m *Metrics) ObserveLoop(d time.Duration) {
	m.loopTiming.Observe(d.Seconds())
}

// Notify implements emergency.Notifier.
func (m *Metrics) Notify(_ context.Context, e emergency.Event) error {
	m.emergency.WithLabelValues(e.Kind, string(e.Reason)).Inc()
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
