// Package storage - postgres.go
// PostgreSQL implementations of the repositories, for deployments where
// several game servers share one ledger.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// OpenPostgres connects to PostgreSQL and ensures the schemas exist.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			payload JSONB NOT NULL
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
			working BOOLEAN NOT NULL DEFAULT FALSE,
			quarantined BOOLEAN NOT NULL DEFAULT FALSE,
			recorded_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (game_id, round, block_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_round ON events(game_id, round);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return nil, fmt.Errorf("failed to create postgres schemas: %w", err)
		}
	}
	return db, nil
}

// PostgresEventRepository implements EventRepository using PostgreSQL.
type PostgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payloadJSON, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, game_id, timestamp, event_type, actor_id, round, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.GameID, event.Timestamp, event.EventType, event.ActorID,
		event.Round, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadRaw []byte
		err := rows.Scan(&e.ID, &e.GameID, &e.Timestamp, &e.EventType, &e.ActorID, &e.Round, &payloadRaw)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payloadRaw, &e.Payload); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *PostgresEventRepository) GetByGameID(ctx context.Context, gameID string) ([]StoredEvent, error) {
	query := `SELECT id, game_id, timestamp, event_type, actor_id, round, payload FROM events WHERE game_id = $1 ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID)
}

func (r *PostgresEventRepository) GetByRound(ctx context.Context, gameID string, round int) ([]StoredEvent, error) {
	query := `SELECT id, game_id, timestamp, event_type, actor_id, round, payload FROM events WHERE game_id = $1 AND round = $2 ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, round)
}

func (r *PostgresEventRepository) GetByEventType(ctx context.Context, gameID string, eventType string) ([]StoredEvent, error) {
	query := `SELECT id, game_id, timestamp, event_type, actor_id, round, payload FROM events WHERE game_id = $1 AND event_type = $2 ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, eventType)
}

// PostgresSnapshotRepository implements SnapshotRepository using PostgreSQL.
type PostgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) Upsert(ctx context.Context, s BlockSnapshot) error {
	query := `
		INSERT INTO block_snapshots (game_id, round, block_index, kind, healthy, infected, incubating, material, working, quarantined, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id, round, block_index) DO UPDATE SET
			kind=EXCLUDED.kind,
			healthy=EXCLUDED.healthy,
			infected=EXCLUDED.infected,
			incubating=EXCLUDED.incubating,
			material=EXCLUDED.material,
			working=EXCLUDED.working,
			quarantined=EXCLUDED.quarantined,
			recorded_at=EXCLUDED.recorded_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.GameID, s.Round, s.BlockIndex, s.Kind, s.Healthy, s.Infected,
		s.Incubating, s.Material, s.Working, s.Quarantined, s.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert block snapshot: %w", err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) GetRound(ctx context.Context, gameID string, round int) ([]BlockSnapshot, error) {
	query := `
		SELECT game_id, round, block_index, kind, healthy, infected, incubating, material, working, quarantined, recorded_at
		FROM block_snapshots WHERE game_id = $1 AND round = $2 ORDER BY block_index ASC
	`
	rows, err := r.db.QueryContext(ctx, query, gameID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BlockSnapshot
	for rows.Next() {
		var s BlockSnapshot
		err := rows.Scan(&s.GameID, &s.Round, &s.BlockIndex, &s.Kind, &s.Healthy,
			&s.Infected, &s.Incubating, &s.Material, &s.Working, &s.Quarantined, &s.RecordedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *PostgresSnapshotRepository) LatestRound(ctx context.Context, gameID string) (int, error) {
	query := `SELECT COALESCE(MAX(round), 0) FROM block_snapshots WHERE game_id = $1`
	var round int
	if err := r.db.QueryRowContext(ctx, query, gameID).Scan(&round); err != nil {
		return 0, err
	}
	return round, nil
}
