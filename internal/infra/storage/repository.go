// Package storage provides the persistence layer for the simulation
// server. It implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// StoredEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type StoredEvent struct {
	ID        string                 `json:"id" db:"id"`
	GameID    string                 `json:"game_id" db:"game_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	Round     int                    `json:"round" db:"round"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// BlockSnapshot is one block's committed counters after a settled round.
type BlockSnapshot struct {
	GameID      string    `json:"game_id" db:"game_id"`
	Round       int       `json:"round" db:"round"`
	BlockIndex  int       `json:"block_index" db:"block_index"`
	Kind        string    `json:"kind" db:"kind"`
	Healthy     int       `json:"healthy" db:"healthy"`
	Infected    int       `json:"infected" db:"infected"`
	Incubating  int       `json:"incubating" db:"incubating"`
	Material    int       `json:"material" db:"material"`
	Working     bool      `json:"working" db:"working"`
	Quarantined bool      `json:"quarantined" db:"quarantined"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event StoredEvent) error

	// GetByGameID retrieves all events for a specific game (for replay).
	GetByGameID(ctx context.Context, gameID string) ([]StoredEvent, error)

	// GetByRound retrieves all events from a specific round.
	GetByRound(ctx context.Context, gameID string, round int) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, gameID string, eventType string) ([]StoredEvent, error)
}

// SnapshotRepository persists per-round block snapshots for recovery and
// replay tooling.
type SnapshotRepository interface {
	// Upsert writes one block's state for a round.
	Upsert(ctx context.Context, snapshot BlockSnapshot) error

	// GetRound retrieves the whole board at a round.
	GetRound(ctx context.Context, gameID string, round int) ([]BlockSnapshot, error)

	// LatestRound returns the highest round persisted for a game, 0 when
	// none exist.
	LatestRound(ctx context.Context, gameID string) (int, error)
}
