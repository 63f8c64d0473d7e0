// Package cache provides a key/value-backed cache for quick state reads.
// The latest board snapshot is cached here so hot /state requests never
// touch the engine lock. Not the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/outbreakworks/cordon/internal/engine"
)

// KVClient is the interface to the backing store (Redis in deployment).
// This allows for easy mocking in tests.
type KVClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// SnapshotCache provides fast access to the latest board snapshot.
type SnapshotCache struct {
	client     KVClient
	expiration time.Duration
}

// NewSnapshotCache creates a new snapshot cache instance.
func NewSnapshotCache(client KVClient) *SnapshotCache {
	return &SnapshotCache{
		client:     client,
		expiration: 30 * time.Second,
	}
}

func snapshotKey(gameID string) string {
	return fmt.Sprintf("cordon:board:%s", gameID)
}

// Store caches the board snapshot for a game.
func (c *SnapshotCache) Store(ctx context.Context, gameID string, snap engine.BoardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal board snapshot: %w", err)
	}
	return c.client.Set(ctx, snapshotKey(gameID), string(data), c.expiration)
}

// Load returns the cached snapshot, or ok=false on a miss.
func (c *SnapshotCache) Load(ctx context.Context, gameID string) (engine.BoardSnapshot, bool) {
	raw, err := c.client.Get(ctx, snapshotKey(gameID))
	if err != nil || raw == "" {
		return engine.BoardSnapshot{}, false
	}
	var snap engine.BoardSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return engine.BoardSnapshot{}, false
	}
	return snap, true
}

// Invalidate drops the cached snapshot for a game.
func (c *SnapshotCache) Invalidate(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, snapshotKey(gameID))
}

// MemoryKV is the single-node fallback when no Redis is configured.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an in-process KVClient.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", fmt.Errorf("key %s not found", key)
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("memory kv only stores strings, got %T", value)
	}
	m.mu.Lock()
	m.data[key] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}
