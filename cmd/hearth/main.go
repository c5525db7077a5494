// Hearth - single-controller home automation core.
//
// Hearth drives a door servo, a window servo, a PWM fan, a light output and
// a buzzer from one control loop. It evaluates mode policy, time-of-day
// schedules, sensor-driven automation and emergency shutdown, and exposes
// the result over REST, WebSocket and MQTT.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/nerrad567/hearth/migrations"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/api"
	"github.com/nerrad567/hearth/internal/audit"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/controller"
	"github.com/nerrad567/hearth/internal/display"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/infrastructure/config"
	"github.com/nerrad567/hearth/internal/infrastructure/database"
	"github.com/nerrad567/hearth/internal/infrastructure/influxdb"
	"github.com/nerrad567/hearth/internal/infrastructure/logging"
	"github.com/nerrad567/hearth/internal/infrastructure/mqtt"
	"github.com/nerrad567/hearth/internal/metrics"
	"github.com/nerrad567/hearth/internal/mode"
	"github.com/nerrad567/hearth/internal/scene"
	"github.com/nerrad567/hearth/internal/schedule"
	"github.com/nerrad567/hearth/internal/sensor"
)

// Version information, set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

// selfTestTravel is the sweep time for each direction of the startup self-test.
const selfTestTravel = 500 * time.Millisecond

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application, separated from main for testability. It returns
// nil on a clean shutdown.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // startup wiring is linear
	log := logging.Default()
	log.Info("starting Hearth", "version", version, "commit", commit, "build_date", date)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath, "site", cfg.Site.ID)
	loc := cfg.Location()

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	schedules := schedule.NewRegistry(schedule.NewSQLiteRepository(db.DB))
	schedules.SetLogger(log.Component("schedule"))
	if err := schedules.RefreshCache(ctx); err != nil {
		return fmt.Errorf("loading schedules: %w", err)
	}
	scenes := scene.NewRegistry(scene.NewSQLiteRepository(db.DB))
	scenes.SetLogger(log.Component("scene"))
	if err := scenes.RefreshCache(ctx); err != nil {
		return fmt.Errorf("loading scenes: %w", err)
	}
	log.Info("registries loaded", "schedules", schedules.GetScheduleCount(), "scenes", scenes.GetSceneCount())

	history := actuator.NewSQLiteHistoryRepository(db.DB)
	go pruneHistory(ctx, history, cfg.Database.HistoryRetention, pruneInterval, log.Component("history"))
	auditRepo := audit.NewSQLiteRepository(db.DB)
	health := map[string]api.HealthChecker{"database": db}

	// Hardware
	outputs, failed := attachOutputs(ctx, cfg.Hardware, log.Component("hardware"))
	defer closeOutputs(outputs, log)
	if cfg.Hardware.SelfTest {
		if err := selfTest(ctx, outputs, log); err != nil {
			return fmt.Errorf("self-test: %w", err)
		}
	}

	act := actuator.New(outputs, mode.NewPolicy(mode.DefaultTemperature), actuator.Options{
		DoorTravel:        cfg.Hardware.Door.RampDuration,
		WindowTravel:      cfg.Hardware.Window.RampDuration,
		FanTravel:         cfg.Hardware.Fan.RampDuration,
		LightFade:         cfg.Hardware.Light.RampDuration,
		SystemWideFailure: cfg.Controller.FailurePolicy == config.FailurePolicySystem,
		Logger:            log.Component("actuator"),
	})

	// Observability sinks
	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB, cfg.Site.ID)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			st := influxClient.Stats()
			log.Info("closing InfluxDB connection", "points", st.Points, "failures", st.Failures)
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		health["influxdb"] = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	}

	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			st := mqttClient.Stats()
			log.Info("disconnecting from MQTT", "published", st.Published, "received", st.Received, "handler_errors", st.HandlerErrors)
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		health["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	sinks := display.Multi{display.NewLogSink(log.Component("display"))}
	if mqttClient != nil {
		sinks = append(sinks, display.NewMQTTSink(mqttClient, log.Component("display")))
	}

	// Emergency, schedules, scenes and automation
	notifiers := []emergency.Notifier{m}
	if influxClient != nil {
		notifiers = append(notifiers, influxClient)
	}
	em := emergency.New(act, emergency.Options{Notifiers: notifiers, Logger: log.Component("emergency")})

	if len(failed) > 0 {
		detail := "outputs failed to attach: " + strings.Join(failed, ", ")
		sinks.ShowAlert(detail)
		if cfg.Controller.FailurePolicy == config.FailurePolicySystem {
			em.Trigger(ctx, emergency.ReasonHardwareFault, detail)
		}
	}

	scheduleEngine := schedule.NewEngine(schedules, act, loc)
	scheduleEngine.SetLogger(log.Component("schedule"))
	sceneManager := scene.NewManager(scenes, act, cfg.Scene.TransitionDuration, loc)
	sceneManager.SetLogger(log.Component("scene"))

	engine := automation.NewEngine(act, automation.Options{
		Thresholds:     automation.ThresholdsFromConfig(cfg.Automation.Thresholds),
		Rules:          automation.RulesFromConfig(cfg.Automation.Rules),
		AutoCloseDelay: cfg.Controller.AutoCloseDelay,
		LightFade:      cfg.Hardware.Light.RampDuration,
		WrapMidnight:   cfg.Schedule.WrapMidnight,
		Schedules:      schedules,
		Overrides:      scheduleEngine,
		Scenes:         sceneManager,
		SceneStore:     scenes,
		Emergency:      em,
		Display:        sinks,
		Location:       loc,
		Logger:         log.Component("automation"),
	})

	// Sensors
	source, err := sensorSource(cfg, mqttClient)
	if err != nil {
		return err
	}
	var smoother *sensor.Smoother
	if cfg.Controller.SmoothingWindow > 1 {
		smoother = sensor.NewSmoother(cfg.Controller.SmoothingWindow)
	}

	// Control loop
	ctrlOpts := controller.Options{
		TickInterval:     cfg.Controller.TickInterval,
		SensorInterval:   cfg.Controller.SensorInterval,
		ScheduleInterval: cfg.Controller.ScheduleInterval,
		Engine:           engine,
		Emergency:        em,
		Schedules:        scheduleEngine,
		Scenes:           sceneManager,
		Source:           source,
		Smoother:         smoother,
		Display:          sinks,
		History:          history,
		Audit:            audit.NewRecorder(auditRepo, log.Component("audit")),
		Metrics:          m,
		Logger:           log.Component("controller"),
	}
	if influxClient != nil {
		ctrlOpts.Telemetry = influxClient
	}
	ctrl := controller.New(act, ctrlOpts)

	var bridge *controller.MQTTBridge
	if mqttClient != nil {
		bridge = controller.NewMQTTBridge(ctrl, mqttClient, log.Component("mqtt-bridge"))
		if err := bridge.Start(ctx); err != nil {
			return fmt.Errorf("starting MQTT bridge: %w", err)
		}
		em.AddNotifier(bridge)
		defer bridge.Wait()
	}

	// API
	srv, err := api.New(api.Deps{
		Config:         cfg.API,
		WS:             cfg.WebSocket,
		Metrics:        cfg.Metrics,
		MetricsHandler: metrics.Handler(reg),
		Logger:         log.Component("api"),
		Controller:     ctrl,
		Events:         em,
		Schedules:      schedules,
		Scenes:         scenes,
		History:        history,
		Audit:          auditRepo,
		Health:         health,
		Version:        version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	em.AddNotifier(srv.Hub())
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, health); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete", "failed_outputs", failed)

	// Run blocks until ctx is cancelled.
	if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("control loop: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")
	log.Info("Hearth stopped")
	return nil
}

// getConfigPath returns HEARTH_CONFIG when set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies every infrastructure connection.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, hc := range checks {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// sensorSource picks the configured reading source.
func sensorSource(cfg *config.Config, mqttClient *mqtt.Client) (sensor.Source, error) {
	switch cfg.Controller.SensorSource {
	case config.SensorSourceMQTT:
		if mqttClient == nil {
			return nil, fmt.Errorf("sensor source mqtt requires mqtt.enabled")
		}
		src, err := sensor.NewMQTTSource(mqttClient, mqtt.Topics{}.SensorState(), 3*cfg.Controller.SensorInterval)
		if err != nil {
			return nil, fmt.Errorf("subscribing to sensors: %w", err)
		}
		return src, nil
	default:
		return sensor.NewSimulatedSource(uint64(time.Now().UnixNano()), nil), nil
	}
}
