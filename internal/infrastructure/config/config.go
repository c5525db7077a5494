package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Output driver names accepted in hardware.<output>.driver.
const (
	DriverFake  = "fake"
	DriverGPIO  = "gpio"
	DriverPWM   = "pwm"
	DriverServo = "servo"

	// DriverNRZLED is accepted only in hardware.strip.driver.
	DriverNRZLED = "nrzled"
)

// Failure policies accepted in controller.failure_policy.
const (
	// FailurePolicyDevice marks only the failed output inactive.
	FailurePolicyDevice = "device"
	// FailurePolicySystem clears system-active when any output fails to attach.
	FailurePolicySystem = "system"
)

// Sensor sources accepted in controller.sensor_source.
const (
	SensorSourceSimulated = "simulated"
	SensorSourceMQTT      = "mqtt"
)

// Config is the root configuration structure for Hearth.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Database   DatabaseConfig   `yaml:"database"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Hardware   HardwareConfig   `yaml:"hardware"`
	Controller ControllerConfig `yaml:"controller"`
	Automation AutomationConfig `yaml:"automation"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Scene      SceneConfig      `yaml:"scene"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetention is how many days of actuator history to keep.
	// Zero disables pruning.
	HistoryRetention int `yaml:"history_retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Token    string           `yaml:"token"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
	PushInterval   int    `yaml:"push_interval"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HardwareConfig describes the physical outputs.
type HardwareConfig struct {
	// Chip is the GPIO character device used by gpio outputs (e.g. "gpiochip0").
	Chip string `yaml:"chip"`

	// AttachAttempts bounds output initialisation retries. Default: 3
	AttachAttempts int `yaml:"attach_attempts"`

	// AttachBackoff is the delay between attach attempts. Default: 100ms
	AttachBackoff time.Duration `yaml:"attach_backoff"`

	// SelfTest sweeps every output through its range once at startup.
	SelfTest bool `yaml:"self_test"`

	Door   OutputConfig `yaml:"door"`
	Window OutputConfig `yaml:"window"`
	Fan    OutputConfig `yaml:"fan"`
	Light  OutputConfig `yaml:"light"`
	Buzzer OutputConfig `yaml:"buzzer"`
	Strip  StripConfig  `yaml:"strip"`
}

// OutputConfig configures one physical output.
type OutputConfig struct {
	// Driver is one of fake, gpio, pwm, servo.
	Driver string `yaml:"driver"`

	// Pin is the periph.io pin name for pwm and servo drivers (e.g. "GPIO18").
	Pin string `yaml:"pin"`

	// Line is the gpiochip line offset for the gpio driver.
	Line int `yaml:"line"`

	// FrequencyHz is the PWM carrier frequency. Servos default to 50 Hz.
	FrequencyHz int `yaml:"frequency_hz"`

	// MinPulseUS and MaxPulseUS bound the servo pulse width in microseconds.
	MinPulseUS int `yaml:"min_pulse_us"`
	MaxPulseUS int `yaml:"max_pulse_us"`

	// RampDuration is the full-travel ramp time. Zero writes immediately.
	RampDuration time.Duration `yaml:"ramp_duration"`
}

// StripConfig configures the optional addressable LED strip.
type StripConfig struct {
	Enabled bool `yaml:"enabled"`

	// Driver is "fake" or "nrzled" (WS281x over SPI).
	Driver string `yaml:"driver"`

	// Port names the SPI port, e.g. "/dev/spidev0.0". Empty picks the
	// first registered port.
	Port   string `yaml:"port"`
	Pixels int    `yaml:"pixels"`
}

// ControllerConfig contains control loop settings.
type ControllerConfig struct {
	TickInterval     time.Duration `yaml:"tick_interval"`
	SensorInterval   time.Duration `yaml:"sensor_interval"`
	ScheduleInterval time.Duration `yaml:"schedule_interval"`
	FailurePolicy    string        `yaml:"failure_policy"`
	AutoCloseDelay   time.Duration `yaml:"auto_close_delay"`
	SensorSource     string        `yaml:"sensor_source"`
	SmoothingWindow  int           `yaml:"smoothing_window"`
}

// AutomationConfig contains rule thresholds and rule switches.
type AutomationConfig struct {
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Rules      RulesConfig     `yaml:"rules"`
}

// ThresholdConfig holds automation thresholds.
type ThresholdConfig struct {
	Temperature       float64       `yaml:"temperature"`
	Humidity          float64       `yaml:"humidity"`
	Light             float64       `yaml:"light"`
	Moisture          float64       `yaml:"moisture"`
	AirQuality        float64       `yaml:"air_quality"`
	CO2Hazard         float64       `yaml:"co2_hazard"`
	TargetTemperature float64       `yaml:"target_temperature"`
	TargetHumidity    float64       `yaml:"target_humidity"`
	MotionAlertCount  int           `yaml:"motion_alert_count"`
	MotionWindow      time.Duration `yaml:"motion_window"`
}

// RulesConfig switches individual automation rules.
type RulesConfig struct {
	Climate    bool `yaml:"climate"`
	Security   bool `yaml:"security"`
	AirQuality bool `yaml:"air_quality"`
	Energy     bool `yaml:"energy"`
	Lighting   bool `yaml:"lighting"`
}

// ScheduleConfig contains schedule engine settings.
type ScheduleConfig struct {
	// WrapMidnight is the default for new schedules whose start hour is after
	// the end hour. Off by default: such windows are never active.
	WrapMidnight bool `yaml:"wrap_midnight"`
}

// SceneConfig contains scene settings.
type SceneConfig struct {
	TransitionDuration time.Duration `yaml:"transition_duration"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HEARTH_SECTION_KEY
// For example: HEARTH_DATABASE_PATH, HEARTH_API_TOKEN
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
// Used when no config file is given.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	servo := func(ramp time.Duration) OutputConfig {
		return OutputConfig{
			Driver:       DriverFake,
			FrequencyHz:  50,
			MinPulseUS:   500,
			MaxPulseUS:   2500,
			RampDuration: ramp,
		}
	}

	return &Config{
		Site: SiteConfig{
			ID:       "home-001",
			Name:     "Hearth",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:             "./data/hearth.db",
			WALMode:          true,
			BusyTimeout:      5,
			HistoryRetention: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hearth",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
			PushInterval:   2,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Hardware: HardwareConfig{
			Chip:           "gpiochip0",
			AttachAttempts: 3,
			AttachBackoff:  100 * time.Millisecond,
			Door:           servo(time.Second),
			Window:         servo(2 * time.Second),
			Fan:            OutputConfig{Driver: DriverFake, FrequencyHz: 25000, RampDuration: time.Second},
			Light:          OutputConfig{Driver: DriverFake, FrequencyHz: 1000, RampDuration: 500 * time.Millisecond},
			Buzzer:         OutputConfig{Driver: DriverFake},
			Strip:          StripConfig{Driver: DriverFake, Pixels: 30},
		},
		Controller: ControllerConfig{
			TickInterval:     50 * time.Millisecond,
			SensorInterval:   2 * time.Second,
			ScheduleInterval: time.Minute,
			FailurePolicy:    FailurePolicyDevice,
			AutoCloseDelay:   30 * time.Second,
			SensorSource:     SensorSourceSimulated,
			SmoothingWindow:  5,
		},
		Automation: AutomationConfig{
			Thresholds: ThresholdConfig{
				Temperature:       25,
				Humidity:          60,
				Light:             300,
				Moisture:          40,
				AirQuality:        30,
				CO2Hazard:         5000,
				TargetTemperature: 23,
				TargetHumidity:    50,
				MotionAlertCount:  5,
				MotionWindow:      time.Minute,
			},
			Rules: RulesConfig{
				Climate:    true,
				Security:   true,
				AirQuality: true,
				Energy:     true,
				Lighting:   true,
			},
		},
		Scene: SceneConfig{
			TransitionDuration: 2 * time.Second,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HEARTH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEARTH_SITE_TIMEZONE"); v != "" {
		cfg.Site.Timezone = v
	}

	if v := os.Getenv("HEARTH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("HEARTH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HEARTH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HEARTH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("HEARTH_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("HEARTH_API_TOKEN"); v != "" {
		cfg.API.Token = v
	}

	if v := os.Getenv("HEARTH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("HEARTH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("site.timezone %q is not a known zone", c.Site.Timezone))
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.HistoryRetention < 0 {
		errs = append(errs, "database.history_retention_days must not be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	errs = append(errs, c.Hardware.validate()...)
	errs = append(errs, c.Controller.validate()...)

	if c.Automation.Thresholds.MotionAlertCount < 1 {
		errs = append(errs, "automation.thresholds.motion_alert_count must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (h HardwareConfig) validate() []string {
	var errs []string

	if h.AttachAttempts < 1 {
		errs = append(errs, "hardware.attach_attempts must be at least 1")
	}
	if h.AttachBackoff < 0 {
		errs = append(errs, "hardware.attach_backoff must not be negative")
	}

	outputs := map[string]OutputConfig{
		"door":   h.Door,
		"window": h.Window,
		"fan":    h.Fan,
		"light":  h.Light,
		"buzzer": h.Buzzer,
	}
	for name, o := range outputs {
		switch o.Driver {
		case DriverFake, DriverGPIO, DriverPWM, DriverServo:
		default:
			errs = append(errs, fmt.Sprintf("hardware.%s.driver %q must be one of fake, gpio, pwm, servo", name, o.Driver))
		}
		if o.Driver == DriverServo && o.MinPulseUS >= o.MaxPulseUS {
			errs = append(errs, fmt.Sprintf("hardware.%s.min_pulse_us must be below max_pulse_us", name))
		}
		if (o.Driver == DriverPWM || o.Driver == DriverServo) && o.Pin == "" {
			errs = append(errs, fmt.Sprintf("hardware.%s.pin is required for the %s driver", name, o.Driver))
		}
		if o.RampDuration < 0 {
			errs = append(errs, fmt.Sprintf("hardware.%s.ramp_duration must not be negative", name))
		}
	}

	if h.Strip.Enabled {
		if h.Strip.Pixels < 1 {
			errs = append(errs, "hardware.strip.pixels must be at least 1")
		}
		switch h.Strip.Driver {
		case DriverFake, DriverNRZLED:
		default:
			errs = append(errs, fmt.Sprintf("hardware.strip.driver %q must be one of fake, nrzled", h.Strip.Driver))
		}
	}

	return errs
}

func (c ControllerConfig) validate() []string {
	var errs []string

	if c.TickInterval <= 0 {
		errs = append(errs, "controller.tick_interval must be positive")
	}
	if c.SensorInterval <= 0 {
		errs = append(errs, "controller.sensor_interval must be positive")
	}
	if c.ScheduleInterval <= 0 {
		errs = append(errs, "controller.schedule_interval must be positive")
	}
	if c.FailurePolicy != FailurePolicyDevice && c.FailurePolicy != FailurePolicySystem {
		errs = append(errs, "controller.failure_policy must be device or system")
	}
	if c.SensorSource != SensorSourceSimulated && c.SensorSource != SensorSourceMQTT {
		errs = append(errs, "controller.sensor_source must be simulated or mqtt")
	}
	if c.SmoothingWindow < 1 {
		errs = append(errs, "controller.smoothing_window must be at least 1")
	}

	return errs
}

// Location returns the site timezone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
