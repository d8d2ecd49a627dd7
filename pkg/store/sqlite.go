package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"watego/pkg/db"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Failed to read persistent state", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now())
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}

// --- Terrain cells ---

func (s *SQLiteStore) GetTerrainCell(cell string) (bool, bool, error) {
	var isLand bool
	err := s.db.QueryRow("SELECT is_land FROM terrain_cells WHERE cell = ?", cell).Scan(&isLand)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return isLand, true, nil
}

func (s *SQLiteStore) PutTerrainCell(cell string, isLand bool) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO terrain_cells (cell, is_land, created_at) VALUES (?, ?, ?)`,
		cell, isLand, time.Now())
	return err
}
