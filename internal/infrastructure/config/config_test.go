package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-home"
  timezone: "Europe/London"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
hardware:
  attach_backoff: 250ms
  door:
    driver: servo
    pin: GPIO18
    min_pulse_us: 500
    max_pulse_us: 2500
    ramp_duration: 2s
controller:
  failure_policy: system
automation:
  thresholds:
    temperature: 27.5
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-home" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-home")
	}
	if cfg.Location().String() != "Europe/London" {
		t.Errorf("Location() = %q, want Europe/London", cfg.Location())
	}
	if cfg.Hardware.AttachBackoff != 250*time.Millisecond {
		t.Errorf("Hardware.AttachBackoff = %v, want 250ms", cfg.Hardware.AttachBackoff)
	}
	if cfg.Hardware.Door.Driver != DriverServo || cfg.Hardware.Door.RampDuration != 2*time.Second {
		t.Errorf("Hardware.Door = %+v, want servo with 2s ramp", cfg.Hardware.Door)
	}
	// Unset outputs keep their defaults.
	if cfg.Hardware.Window.Driver != DriverFake {
		t.Errorf("Hardware.Window.Driver = %q, want %q", cfg.Hardware.Window.Driver, DriverFake)
	}
	if cfg.Controller.FailurePolicy != FailurePolicySystem {
		t.Errorf("Controller.FailurePolicy = %q, want %q", cfg.Controller.FailurePolicy, FailurePolicySystem)
	}
	if cfg.Automation.Thresholds.Temperature != 27.5 {
		t.Errorf("Thresholds.Temperature = %v, want 27.5", cfg.Automation.Thresholds.Temperature)
	}
	if cfg.Automation.Thresholds.Humidity != 60 {
		t.Errorf("Thresholds.Humidity = %v, want default 60", cfg.Automation.Thresholds.Humidity)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Site.Timezone != "Europe/London" {
		t.Errorf("Site.Timezone = %q, want Europe/London", cfg.Site.Timezone)
	}
	if cfg.Database.HistoryRetention != 30 {
		t.Errorf("Database.HistoryRetention = %d, want 30", cfg.Database.HistoryRetention)
	}
	if cfg.Hardware.Window.RampDuration != 2*time.Second {
		t.Errorf("Hardware.Window.RampDuration = %v, want 2s", cfg.Hardware.Window.RampDuration)
	}
	if cfg.Controller.FailurePolicy != FailurePolicyDevice {
		t.Errorf("Controller.FailurePolicy = %q, want %q", cfg.Controller.FailurePolicy, FailurePolicyDevice)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: true},
		{name: "unknown timezone", mutate: func(c *Config) { c.Site.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "negative history retention", mutate: func(c *Config) { c.Database.HistoryRetention = -1 }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "influx enabled without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true }, wantErr: true},
		{name: "zero attach attempts", mutate: func(c *Config) { c.Hardware.AttachAttempts = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Hardware.Fan.Driver = "i2c" }, wantErr: true},
		{
			name: "servo without pin",
			mutate: func(c *Config) {
				c.Hardware.Door.Driver = DriverServo
			},
			wantErr: true,
		},
		{
			name: "servo pulse range inverted",
			mutate: func(c *Config) {
				c.Hardware.Door.Driver = DriverServo
				c.Hardware.Door.Pin = "GPIO18"
				c.Hardware.Door.MinPulseUS = 2500
				c.Hardware.Door.MaxPulseUS = 500
			},
			wantErr: true,
		},
		{name: "negative ramp", mutate: func(c *Config) { c.Hardware.Window.RampDuration = -time.Second }, wantErr: true},
		{name: "strip without pixels", mutate: func(c *Config) { c.Hardware.Strip = StripConfig{Enabled: true, Driver: DriverFake} }, wantErr: true},
		{name: "strip unknown driver", mutate: func(c *Config) { c.Hardware.Strip = StripConfig{Enabled: true, Driver: "dmx", Pixels: 8} }, wantErr: true},
		{name: "nrzled strip", mutate: func(c *Config) {
			c.Hardware.Strip = StripConfig{Enabled: true, Driver: DriverNRZLED, Port: "/dev/spidev0.0", Pixels: 60}
		}},
		{name: "zero tick", mutate: func(c *Config) { c.Controller.TickInterval = 0 }, wantErr: true},
		{name: "unknown failure policy", mutate: func(c *Config) { c.Controller.FailurePolicy = "ignore" }, wantErr: true},
		{name: "unknown sensor source", mutate: func(c *Config) { c.Controller.SensorSource = "serial" }, wantErr: true},
		{name: "zero smoothing window", mutate: func(c *Config) { c.Controller.SmoothingWindow = 0 }, wantErr: true},
		{name: "zero motion count", mutate: func(c *Config) { c.Automation.Thresholds.MotionAlertCount = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateReportsAllErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Site.ID = ""
	cfg.Database.Path = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"site.id", "database.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("HEARTH_DATABASE_PATH", "/custom/path.db")
	t.Setenv("HEARTH_MQTT_HOST", "mqtt.example.com")
	t.Setenv("HEARTH_MQTT_USERNAME", "testuser")
	t.Setenv("HEARTH_MQTT_PASSWORD", "testpass")
	t.Setenv("HEARTH_API_HOST", "192.168.1.1")
	t.Setenv("HEARTH_API_TOKEN", "api-token")
	t.Setenv("HEARTH_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("HEARTH_SITE_TIMEZONE", "America/New_York")
	t.Setenv("HEARTH_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	checks := []struct {
		field, got, want string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"API.Token", cfg.API.Token, "api-token"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Site.Timezone", cfg.Site.Timezone, "America/New_York"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Hardware.AttachAttempts != 3 {
		t.Errorf("defaultConfig Hardware.AttachAttempts = %d, want 3", cfg.Hardware.AttachAttempts)
	}
	if cfg.Hardware.AttachBackoff != 100*time.Millisecond {
		t.Errorf("defaultConfig Hardware.AttachBackoff = %v, want 100ms", cfg.Hardware.AttachBackoff)
	}
	if cfg.Controller.ScheduleInterval != time.Minute {
		t.Errorf("defaultConfig Controller.ScheduleInterval = %v, want 1m", cfg.Controller.ScheduleInterval)
	}
	if cfg.Controller.FailurePolicy != FailurePolicyDevice {
		t.Errorf("defaultConfig Controller.FailurePolicy = %q, want %q", cfg.Controller.FailurePolicy, FailurePolicyDevice)
	}
	if cfg.Schedule.WrapMidnight {
		t.Error("defaultConfig Schedule.WrapMidnight should be false")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate, got %v", err)
	}
}
