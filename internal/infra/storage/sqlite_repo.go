package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event StoredEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, game_id, timestamp, event_type, actor_id, round, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.GameID, event.Timestamp, event.EventType, event.ActorID,
		event.Round, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]StoredEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var payloadStr string
		err := rows.Scan(&e.ID, &e.GameID, &e.Timestamp, &e.EventType, &e.ActorID, &e.Round, &payloadStr)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *SQLiteEventRepository) GetByGameID(ctx context.Context, gameID string) ([]StoredEvent, error) {
	query := `SELECT id, game_id, timestamp, event_type, actor_id, round, payload FROM events WHERE game_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID)
}

func (r *SQLiteEventRepository) GetByRound(ctx context.Context, gameID string, round int) ([]StoredEvent, error) {
	query := `SELECT id, game_id, timestamp, event_type, actor_id, round, payload FROM events WHERE game_id = ? AND round = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, round)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, gameID string, eventType string) ([]StoredEvent, error) {
	query := `SELECT id, game_id, timestamp, event_type, actor_id, round, payload FROM events WHERE game_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, gameID, eventType)
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Upsert(ctx context.Context, s BlockSnapshot) error {
	query := `
		INSERT INTO block_snapshots (game_id, round, block_index, kind, healthy, infected, incubating, material, working, quarantined, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, round, block_index) DO UPDATE SET
			kind=excluded.kind,
			healthy=excluded.healthy,
			infected=excluded.infected,
			incubating=excluded.incubating,
			material=excluded.material,
			working=excluded.working,
			quarantined=excluded.quarantined,
			recorded_at=excluded.recorded_at
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

func (r *SQLiteSnapshotRepository) GetRound(ctx context.Context, gameID string, round int) ([]BlockSnapshot, error) {
	query := `
		SELECT game_id, round, block_index, kind, healthy, infected, incubating, material, working, quarantined, recorded_at
		FROM block_snapshots WHERE game_id = ? AND round = ? ORDER BY block_index ASC
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

func (r *SQLiteSnapshotRepository) LatestRound(ctx context.Context, gameID string) (int, error) {
	query := `SELECT COALESCE(MAX(round), 0) FROM block_snapshots WHERE game_id = ?`
	var round int
	if err := r.db.QueryRowContext(ctx, query, gameID).Scan(&round); err != nil {
		return 0, err
	}
	return round, nil
}
