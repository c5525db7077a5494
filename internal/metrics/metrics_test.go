package metrics

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/mode"
	"github.com/nerrad567/hearth/internal/sensor"
)

func TestObserveSnapshot(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSnapshot(actuator.Snapshot{
		Modes:        mode.NewSet(mode.Active, mode.Night),
		SystemActive: true,
		DoorAngle:    90,
		WindowAngle:  45,
		FanDuty:      170,
		Light:        actuator.LightSnapshot{Level: 20},
		Buzzer:       true,
		Devices:      map[actuator.Device]bool{actuator.DeviceDoor: true, actuator.DeviceFan: false},
	})

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"door", m.output.WithLabelValues("door"), 90},
		{"window", m.output.WithLabelValues("window"), 45},
		{"fan", m.output.WithLabelValues("fan"), 170},
		{"light", m.output.WithLabelValues("light"), 20},
		{"buzzer", m.output.WithLabelValues("buzzer"), 1},
		{"fan inactive", m.deviceActive.WithLabelValues("fan"), 0},
		{"door active", m.deviceActive.WithLabelValues("door"), 1},
		{"night", m.mode.WithLabelValues("night"), 1},
		{"vacation", m.mode.WithLabelValues("vacation"), 0},
		{"system", m.systemActive, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestObserveReading(t *testing.T) {
	m := New(prometheus.NewRegistry())
	r := sensor.Nominal()
	r.Motion = true

	m.ObserveReading(r, []sensor.Field{sensor.FieldCO2, sensor.FieldCO2})

	if got := testutil.ToFloat64(m.sensor.WithLabelValues("temperature")); got != 22 {
		t.Errorf("temperature = %v, want 22", got)
	}
	if got := testutil.ToFloat64(m.motion); got != 1 {
		t.Errorf("motion = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fallbacks.WithLabelValues("co2")); got != 2 {
		t.Errorf("co2 fallbacks = %v, want 2", got)
	}
}

func TestCommandHandled(t *testing.T) {
	m := New(prometheus.NewRegistry())
	cmd := automation.Command{Type: automation.ControlDevice, Source: automation.SourceAPI}

	m.CommandHandled(cmd, true, nil)
	m.CommandHandled(cmd, true, nil)
	m.CommandHandled(cmd, false, nil)
	m.CommandHandled(cmd, false, errors.New("bad"))

	for result, want := range map[string]float64{ResultApplied: 2, ResultRejected: 1, ResultError: 1} {
		got := testutil.ToFloat64(m.commands.WithLabelValues("CONTROL_DEVICE", "api", result))
		if got != want {
			t.Errorf("%s = %v, want %v", result, got, want)
		}
	}
}

func TestNotifyAndEvaluation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	if err := m.Notify(context.Background(), emergency.Event{Kind: emergency.KindTrigger, Reason: emergency.ReasonSecurity}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if got := testutil.ToFloat64(m.emergency.WithLabelValues("trigger", "security")); got != 1 {
		t.Errorf("emergency counter = %v, want 1", got)
	}

	m.ObserveEvaluation(automation.Evaluation{
		Comfort: 87.5,
		Energy:  automation.EnergyStats{CurrentW: 100, DailyKWh: 0.4, SavingsPercent: 90},
	})
	if got := testutil.ToFloat64(m.comfort); got != 87.5 {
		t.Errorf("comfort = %v", got)
	}
	if got := testutil.ToFloat64(m.dailyKWh); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("daily kWh = %v", got)
	}
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.ObserveLoop(3 * time.Millisecond)
	m.ObserveSnapshot(actuator.Snapshot{SystemActive: true})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"hearth_system_active 1", "hearth_loop_iteration_seconds_count 1", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
