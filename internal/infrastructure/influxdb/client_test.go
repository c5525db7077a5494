package influxdb_test

import (
	"context"
	"errors"
	"math"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/infrastructure/config"
	"github.com/nerrad567/hearth/internal/infrastructure/influxdb"
	"github.com/nerrad567/hearth/internal/mode"
	"github.com/nerrad567/hearth/internal/sensor"
)

// testConfig matches the local development InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "hearth-dev-token",
		Org:           "hearth",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// skipIfNoInfluxDB skips the test unless a server answers.
func skipIfNoInfluxDB(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") != "" {
		return
	}
	client, err := influxdb.Connect(context.Background(), testConfig(), "test")
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	client.Close()
}

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func line(p *write.Point) string {
	return write.PointToLineProtocol(p, time.Second)
}

func TestReadingPoint(t *testing.T) {
	r := sensor.Nominal()
	r.Time = at
	r.Motion = true
	r.CO2 = math.NaN()

	got := line(influxdb.ReadingPoint("home-001", r))

	for _, want := range []string{"sensors,site=home-001 ", "temperature=22", "motion=true", "raining=false"} {
		if !strings.Contains(got, want) {
			t.Errorf("line %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "co2=") {
		t.Errorf("NaN field written: %q", got)
	}
	if !strings.HasSuffix(strings.TrimSpace(got), " 1772366400") {
		t.Errorf("line %q has wrong timestamp", got)
	}
}

func TestSnapshotPoint(t *testing.T) {
	s := actuator.Snapshot{
		Modes:         mode.NewSet(mode.Active, mode.Night),
		SystemActive:  true,
		Door:          actuator.DoorUnlocked,
		DoorAngle:     90,
		WindowOpening: 20,
		Fan:           actuator.FanOff,
		Light:         actuator.LightSnapshot{Brightness: 20, Level: 20, Mode: actuator.LightNight},
		TakenAt:       at,
	}

	got := line(influxdb.SnapshotPoint("home-001", s))

	for _, want := range []string{`door="UNLOCKED"`, "door_angle=90i", "window_opening=20i", `fan="OFF"`, `light_mode="NIGHT"`, `modes="active|night"`} {
		if !strings.Contains(got, want) {
			t.Errorf("line %q missing %q", got, want)
		}
	}
}

func TestEnergyAndEmergencyPoints(t *testing.T) {
	got := line(influxdb.EnergyPoint("home-001", automation.EnergyStats{CurrentW: 100, DailyKWh: 0.5, SavingsPercent: 90}, at))
	for _, want := range []string{"energy,site=home-001", "power_watts=100", "energy_kwh=0.5"} {
		if !strings.Contains(got, want) {
			t.Errorf("energy line %q missing %q", got, want)
		}
	}

	e := emergency.Event{ID: "e1", Kind: emergency.KindTrigger, Reason: emergency.ReasonSecurity, Detail: "motion", At: at}
	got = line(influxdb.EmergencyPoint("home-001", e))
	if !strings.HasPrefix(got, "emergency,kind=trigger,reason=security,site=home-001 ") {
		t.Errorf("emergency line = %q", got)
	}

	restore := emergency.Event{ID: "e2", Kind: emergency.KindRestore, At: at}
	if got := line(influxdb.EmergencyPoint("home-001", restore)); strings.Contains(got, "reason=") {
		t.Errorf("restore line has a reason tag: %q", got)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	if _, err := influxdb.Connect(context.Background(), cfg, "test"); !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999"

	if _, err := influxdb.Connect(context.Background(), cfg, "test"); !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *influxdb.Client
	if c.IsConnected() {
		t.Error("nil client reports connected")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
	if got := c.Stats(); got != (influxdb.Stats{}) {
		t.Errorf("Stats() on nil = %+v", got)
	}
}

func TestConnectAndWrite(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(context.Background(), testConfig(), "test")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var writeErr error
	var mu sync.Mutex
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})

	client.WriteReading(sensor.Nominal())
	client.WriteSnapshot(actuator.Snapshot{TakenAt: time.Now()})
	client.WriteEnergy(automation.EnergyStats{CurrentW: 40}, time.Now())
	if err := client.Notify(context.Background(), emergency.Event{ID: "t", Kind: emergency.KindRestore}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
	client.Flush()

	if got := client.Stats().Points; got != 4 {
		t.Errorf("Stats().Points = %d, want 4", got)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if writeErr != nil {
		t.Errorf("write error = %v", writeErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestCloseDisconnects(t *testing.T) {
	skipIfNoInfluxDB(t)

	client, err := influxdb.Connect(context.Background(), testConfig(), "test")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close = %v", err)
	}
}
