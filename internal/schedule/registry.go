package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger is the logging interface used by the schedule package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry caches schedules over a Repository. All methods are safe for
// concurrent use.
type Registry struct {
	repo    Repository
	cache   map[string]*Schedule
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a schedule registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Schedule),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all schedules from the repository.
func (r *Registry) RefreshCache(ctx context.Context) error {
	schedules, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading schedules: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Schedule, len(schedules))
	for i := range schedules {
		r.cache[schedules[i].ID] = schedules[i].DeepCopy()
	}

	r.logger.Info("schedule cache refreshed", "count", len(schedules))
	return nil
}

// GetSchedule returns a copy of the schedule with id.
func (r *Registry) GetSchedule(_ context.Context, id string) (*Schedule, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if s, ok := r.cache[id]; ok {
		return s.DeepCopy(), nil
	}
	return nil, ErrScheduleNotFound
}

// ListSchedules returns copies of all schedules ordered by creation time.
// This is the order in which the engine applies them.
func (r *Registry) ListSchedules(_ context.Context) ([]Schedule, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	schedules := make([]Schedule, 0, len(r.cache))
	for _, s := range r.cache {
		schedules = append(schedules, *s.DeepCopy())
	}
	sortSchedules(schedules)
	return schedules, nil
}

func sortSchedules(schedules []Schedule) {
	sort.Slice(schedules, func(i, j int) bool {
		if !schedules[i].CreatedAt.Equal(schedules[j].CreatedAt) {
			return schedules[i].CreatedAt.Before(schedules[j].CreatedAt)
		}
		return schedules[i].ID < schedules[j].ID
	})
}

// CreateSchedule validates, persists and caches a new schedule.
func (r *Registry) CreateSchedule(ctx context.Context, s *Schedule) error {
	if s.ID == "" {
		s.ID = GenerateID()
	}
	if err := ValidateSchedule(s); err != nil {
		return err
	}
	if err := r.repo.Create(ctx, s); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[s.ID] = s.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("schedule created", "id", s.ID, "name", s.Name, "device", s.Device)
	return nil
}

// UpdateSchedule validates, persists and re-caches a schedule.
func (r *Registry) UpdateSchedule(ctx context.Context, s *Schedule) error {
	if err := ValidateSchedule(s); err != nil {
		return err
	}

	r.cacheMu.RLock()
	existing, ok := r.cache[s.ID]
	r.cacheMu.RUnlock()
	if !ok {
		return ErrScheduleNotFound
	}
	s.CreatedAt = existing.CreatedAt

	if err := r.repo.Update(ctx, s); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[s.ID] = s.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("schedule updated", "id", s.ID, "name", s.Name)
	return nil
}

// DeleteSchedule removes a schedule.
func (r *Registry) DeleteSchedule(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("schedule deleted", "id", id)
	return nil
}

// GetScheduleCount returns the number of cached schedules.
func (r *Registry) GetScheduleCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
