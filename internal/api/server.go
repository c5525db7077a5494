package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
	"github.com/nerrad567/hearth/internal/audit"
	"github.com/nerrad567/hearth/internal/automation"
	"github.com/nerrad567/hearth/internal/controller"
	"github.com/nerrad567/hearth/internal/emergency"
	"github.com/nerrad567/hearth/internal/infrastructure/config"
	"github.com/nerrad567/hearth/internal/infrastructure/logging"
	"github.com/nerrad567/hearth/internal/intent"
	"github.com/nerrad567/hearth/internal/scene"
	"github.com/nerrad567/hearth/internal/schedule"
)

// gracefulShutdownTimeout bounds how long Close waits for in-flight
// requests.
const gracefulShutdownTimeout = 10 * time.Second

// Controller is the control loop surface the API drives.
// *controller.Controller implements it.
type Controller interface {
	State() controller.State
	Submit(ctx context.Context, cmd automation.Command) (automation.Result, error)
	HandleIntent(ctx context.Context, i intent.Intent) (controller.Reply, error)
	Emergency(ctx context.Context, reason emergency.Reason, detail string) (emergency.Event, error)
	Restore(ctx context.Context) (emergency.Event, error)
	Subscribe(l controller.Listener) (cancel func())
}

// EventLog lists emergency events. *emergency.Controller implements it.
type EventLog interface {
	Events() []emergency.Event
}

// ScheduleStore is the schedule registry.
type ScheduleStore interface {
	GetSchedule(ctx context.Context, id string) (*schedule.Schedule, error)
	ListSchedules(ctx context.Context) ([]schedule.Schedule, error)
	CreateSchedule(ctx context.Context, s *schedule.Schedule) error
	UpdateSchedule(ctx context.Context, s *schedule.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
}

// SceneStore is the scene registry.
type SceneStore interface {
	GetScene(ctx context.Context, id string) (*scene.Scene, error)
	ListScenes(ctx context.Context) ([]scene.Scene, error)
	CreateScene(ctx context.Context, s *scene.Scene) error
	UpdateScene(ctx context.Context, s *scene.Scene) error
	DeleteScene(ctx context.Context, id string) error
}

// HealthChecker is implemented by the database and the MQTT client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the server's dependencies. Controller and Logger are
// required; missing stores make their endpoints answer 503.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Metrics config.MetricsConfig

	// MetricsHandler serves Metrics.Path when Metrics.Enabled.
	MetricsHandler http.Handler

	Logger     *logging.Logger
	Controller Controller
	Events     EventLog
	Schedules  ScheduleStore
	Scenes     SceneStore
	History    actuator.HistoryRepository
	Audit      audit.Repository

	// Health checks reported by /health, keyed by component name.
	Health map[string]HealthChecker

	Version string
}

// Server is the HTTP API server.
type Server struct {
	cfg            config.APIConfig
	wsCfg          config.WebSocketConfig
	metricsCfg     config.MetricsConfig
	metricsHandler http.Handler
	logger         *logging.Logger

	ctrl      Controller
	events    EventLog
	schedules ScheduleStore
	scenes    SceneStore
	history   actuator.HistoryRepository
	auditRepo audit.Repository
	health    map[string]HealthChecker
	version   string
	startTime time.Time

	hub      *Hub
	tickets  *ticketLedger
	auditCh  chan *audit.Entry
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a server. It does not listen until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}

	s := &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		metricsCfg:     deps.Metrics,
		metricsHandler: deps.MetricsHandler,
		logger:         deps.Logger,
		ctrl:           deps.Controller,
		events:         deps.Events,
		schedules:      deps.Schedules,
		scenes:         deps.Scenes,
		history:        deps.History,
		auditRepo:      deps.Audit,
		health:         deps.Health,
		version:        deps.Version,
		startTime:      time.Now(),
		tickets:        newTicketLedger(),
		auditCh:        make(chan *audit.Entry, auditChanSize),
		done:           make(chan struct{}),
	}
	s.hub = NewHub(deps.WS, deps.Logger, deps.Controller)
	return s, nil
}

// Hub returns the WebSocket hub. It is an emergency.Notifier.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	unsubscribe := s.ctrl.Subscribe(s.hub.OnState)
	go func() {
		defer close(s.done)
		defer unsubscribe()
		s.hub.Run(srvCtx, s.ctrl.State)
	}()
	go s.drainAuditLog(srvCtx)

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close stops the hub and shuts the server down gracefully.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	s.cancel()
	<-s.done

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
