package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/outbreakworks/cordon/internal/engine"
)

// fakeKV is an in-memory KVClient for tests.
type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	c := NewSnapshotCache(newFakeKV())
	ctx := context.Background()

	snap := engine.BoardSnapshot{
		Round:        12,
		GameDay:      1,
		TotalHealthy: 900,
		Blocks: []engine.BlockState{
			{Index: 0, Kind: "Factory", Healthy: 400, Material: 120, Working: true},
		},
	}
	if err := c.Store(ctx, "GAME_1", snap); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, ok := c.Load(ctx, "GAME_1")
	if !ok {
		t.Fatalf("Expected a cache hit after Store")
	}
	if got.Round != 12 || got.TotalHealthy != 900 {
		t.Errorf("Expected round 12 / healthy 900, got %d/%d", got.Round, got.TotalHealthy)
	}
	if len(got.Blocks) != 1 || got.Blocks[0].Kind != "Factory" {
		t.Errorf("Expected the factory block to round-trip, got %+v", got.Blocks)
	}

	if _, ok := c.Load(ctx, "GAME_2"); ok {
		t.Errorf("Expected a miss for an unknown game")
	}

	if err := c.Invalidate(ctx, "GAME_1"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok := c.Load(ctx, "GAME_1"); ok {
		t.Errorf("Expected a miss after Invalidate")
	}
}
