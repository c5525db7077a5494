package scene

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Logger is the logging interface used by the scene package.
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

// Registry caches scenes over a Repository. The cache is loaded by
// RefreshCache and kept in step by the CRUD methods.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Scene
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a scene registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Scene),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all scenes from the repository.
func (r *Registry) RefreshCache(ctx context.Context) error {
	scenes, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading scenes: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Scene, len(scenes))
	for i := range scenes {
		r.cache[scenes[i].ID] = scenes[i].DeepCopy()
	}

	r.logger.Info("scene cache refreshed", "count", len(scenes))
	return nil
}

// GetScene returns a copy of the scene with id.
func (r *Registry) GetScene(_ context.Context, id string) (*Scene, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if !ok {
		return nil, ErrSceneNotFound
	}
	return cached.DeepCopy(), nil
}

// Resolve finds a scene by ID, slug or case-insensitive name, in that order.
func (r *Registry) Resolve(_ context.Context, ref string) (*Scene, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if s, ok := r.cache[ref]; ok {
		return s.DeepCopy(), nil
	}
	for _, s := range r.cache {
		if s.Slug == ref {
			return s.DeepCopy(), nil
		}
	}
	for _, s := range r.cache {
		if strings.EqualFold(s.Name, ref) {
			return s.DeepCopy(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, ref)
}

// ListScenes returns copies sorted by sort_order then name.
func (r *Registry) ListScenes(_ context.Context) ([]Scene, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	scenes := make([]Scene, 0, len(r.cache))
	for _, s := range r.cache {
		scenes = append(scenes, *s.DeepCopy())
	}
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].SortOrder != scenes[j].SortOrder {
			return scenes[i].SortOrder < scenes[j].SortOrder
		}
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// CreateScene validates, persists and caches a new scene. The ID and slug
// are generated when empty.
func (r *Registry) CreateScene(ctx context.Context, s *Scene) error {
	if s.ID == "" {
		s.ID = GenerateID()
	}
	if s.Slug == "" {
		s.Slug = GenerateSlug(s.Name)
	}
	if err := ValidateScene(s); err != nil {
		return err
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if len(r.cache) >= MaxScenes {
		return fmt.Errorf("%w: at most %d scenes", ErrTooManyScenes, MaxScenes)
	}
	if err := r.repo.Create(ctx, s); err != nil {
		return err
	}
	r.cache[s.ID] = s.DeepCopy()

	r.logger.Info("scene created", "id", s.ID, "name", s.Name)
	return nil
}

// UpdateScene validates, persists and re-caches a scene.
func (r *Registry) UpdateScene(ctx context.Context, s *Scene) error {
	if s.Slug == "" {
		s.Slug = GenerateSlug(s.Name)
	}
	if err := ValidateScene(s); err != nil {
		return err
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	existing, ok := r.cache[s.ID]
	if !ok {
		return ErrSceneNotFound
	}
	s.CreatedAt = existing.CreatedAt

	if err := r.repo.Update(ctx, s); err != nil {
		return err
	}
	r.cache[s.ID] = s.DeepCopy()

	r.logger.Info("scene updated", "id", s.ID, "name", s.Name)
	return nil
}

// DeleteScene removes a scene from persistence and the cache.
func (r *Registry) DeleteScene(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("scene deleted", "id", id)
	return nil
}

// GetSceneCount returns the number of cached scenes.
func (r *Registry) GetSceneCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
