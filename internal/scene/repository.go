package scene

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/hearth/internal/actuator"
)

// Repository defines scene persistence.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Scene, error)
	GetBySlug(ctx context.Context, slug string) (*Scene, error)
	List(ctx context.Context) ([]Scene, error)
	Create(ctx context.Context, s *Scene) error
	Update(ctx context.Context, s *Scene) error
	Delete(ctx context.Context, id string) error
}

const sceneColumns = `id, name, slug, description, enabled, temperature, light_level,
			light_mode, fan_speed, window_opening, sort_order, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a scene by ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Scene, error) {
	return r.getOne(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id)
}

// GetBySlug retrieves a scene by slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*Scene, error) {
	return r.getOne(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE slug = ?`, slug)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg string) (*Scene, error) {
	s, err := scanScene(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("querying scene: %w", err)
	}
	return s, nil
}

// List retrieves all scenes ordered by sort_order then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Scene, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+sceneColumns+` FROM scenes ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("querying scenes: %w", err)
	}
	defer rows.Close()

	var scenes []Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scene: %w", err)
		}
		scenes = append(scenes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scenes: %w", err)
	}
	return scenes, nil
}

// Create inserts a new scene.
func (r *SQLiteRepository) Create(ctx context.Context, s *Scene) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `
		INSERT INTO scenes (
			id, name, slug, description, enabled, temperature, light_level,
			light_mode, fan_speed, window_opening, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		s.Slug,
		nullableString(s.Description),
		boolToInt(s.Enabled),
		s.Temperature,
		s.LightLevel,
		s.LightMode.String(),
		s.FanSpeed.String(),
		s.WindowOpening,
		s.SortOrder,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrSceneExists
		}
		return fmt.Errorf("inserting scene: %w", err)
	}
	return nil
}

// Update modifies an existing scene.
func (r *SQLiteRepository) Update(ctx context.Context, s *Scene) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE scenes SET
			name = ?, slug = ?, description = ?, enabled = ?, temperature = ?,
			light_level = ?, light_mode = ?, fan_speed = ?, window_opening = ?,
			sort_order = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.Slug,
		nullableString(s.Description),
		boolToInt(s.Enabled),
		s.Temperature,
		s.LightLevel,
		s.LightMode.String(),
		s.FanSpeed.String(),
		s.WindowOpening,
		s.SortOrder,
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrSceneExists
		}
		return fmt.Errorf("updating scene: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// Delete removes a scene by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scenes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting scene: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSceneNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScene(scanner rowScanner) (*Scene, error) {
	var s Scene
	var description sql.NullString
	var lightMode, fanSpeed, createdAt, updatedAt string
	var enabled int

	err := scanner.Scan(
		&s.ID,
		&s.Name,
		&s.Slug,
		&description,
		&enabled,
		&s.Temperature,
		&s.LightLevel,
		&lightMode,
		&fanSpeed,
		&s.WindowOpening,
		&s.SortOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		s.Description = &description.String
	}
	s.Enabled = enabled != 0

	if s.LightMode, err = actuator.ParseLightMode(lightMode); err != nil {
		return nil, err
	}
	if s.FanSpeed, err = actuator.ParseFanSpeed(fanSpeed); err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		s.CreatedAt = t
	}
	if t, parseErr := time.Parse(time.RFC3339, updatedAt); parseErr == nil {
		s.UpdatedAt = t
	}

	return &s, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
