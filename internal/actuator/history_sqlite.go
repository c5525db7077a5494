package actuator

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200

	// historyTimeFormat has fixed width so stored timestamps sort as text.
	historyTimeFormat = "2006-01-02T15:04:05.000Z"
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
//
// It stores state snapshots as JSON in the actuator_history table.
type SQLiteHistoryRepository struct {
	db *sql.DB
}

// NewSQLiteHistoryRepository creates a new SQLite history repository.
func NewSQLiteHistoryRepository(db *sql.DB) *SQLiteHistoryRepository {
	return &SQLiteHistoryRepository{db: db}
}

// RecordChange inserts a new history entry for a device.
func (r *SQLiteHistoryRepository) RecordChange(ctx context.Context, device Device, state map[string]any, source string) error {
	if device == "" {
		return fmt.Errorf("device is required")
	}
	if source == "" {
		source = SourceSystem
	}
	if state == nil {
		state = map[string]any{}
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO actuator_history (device, state, source, created_at) VALUES (?, ?, ?, ?)",
		string(device),
		string(stateJSON),
		source,
		time.Now().UTC().Format(historyTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting actuator history: %w", err)
	}

	return nil
}

// GetHistory returns recent entries for a device, newest first
// (default 50, max 200).
func (r *SQLiteHistoryRepository) GetHistory(ctx context.Context, device Device, limit int) ([]HistoryEntry, error) {
	if device == "" {
		return nil, fmt.Errorf("device is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device, state, source, created_at
		 FROM actuator_history
		 WHERE device = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		string(device),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying actuator history: %w", err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0, limit)
	for rows.Next() {
		var entry HistoryEntry
		var dev, stateJSON, createdAt string

		if err := rows.Scan(&entry.ID, &dev, &stateJSON, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning actuator history: %w", err)
		}
		entry.Device = Device(dev)

		if err := json.Unmarshal([]byte(stateJSON), &entry.State); err != nil {
			return nil, fmt.Errorf("unmarshalling state: %w", err)
		}

		entry.CreatedAt, err = time.Parse(historyTimeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating actuator history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes entries older than olderThan and returns the count.
func (r *SQLiteHistoryRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(historyTimeFormat)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM actuator_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting actuator history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
