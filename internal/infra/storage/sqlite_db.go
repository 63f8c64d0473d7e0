package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite initializes the local SQLite database and creates the
// schemas for the event ledger and per-round block snapshots.
func InitSQLite(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return db, nil
}

// InitSQLiteInMemory opens a throwaway in-memory database. Used by tests.
func InitSQLiteInMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory sqlite: %w", err)
	}
	if err := createSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS block_snapshots (
			game_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			block_index INTEGER NOT NULL,
			kind TEXT NOT NULL,
			healthy INTEGER NOT NULL,
			infected INTEGER NOT NULL,
			incubating INTEGER NOT NULL,
			material INTEGER NOT NULL,
			working BOOLEAN NOT NULL DEFAULT 0,
			quarantined BOOLEAN NOT NULL DEFAULT 0,
			recorded_at DATETIME NOT NULL,
			PRIMARY KEY (game_id, round, block_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_game_id ON events(game_id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_round ON events(game_id, round);`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(game_id, event_type);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_round ON block_snapshots(game_id, round);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
