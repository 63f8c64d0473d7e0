// Package metrics provides observability for the simulation server.
// Round latency and event throughput feed the load-test analysis.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Round metrics
	RoundCount      int64
	RoundLatencySum int64 // nanoseconds
	RoundLatencyMax int64

	// Event metrics
	EventsWritten    int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// Board
	BlockCount int64

	StartTime time.Time
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// Reset clears all counters. Intended for tests.
func Reset() {
	collector = &Collector{StartTime: time.Now()}
}

// RecordRound records a completed settlement round.
func (c *Collector) RecordRound(latency time.Duration) {
	atomic.AddInt64(&c.RoundCount, 1)
	atomic.AddInt64(&c.RoundLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.RoundLatencyMax) {
		atomic.StoreInt64(&c.RoundLatencyMax, int64(latency))
	}
}

// RecordEventWrite records an event persisted to storage.
func (c *Collector) RecordEventWrite(err error) {
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
		return
	}
	atomic.AddInt64(&c.EventsWritten, 1)
}

// RecordWSConnect tracks an opened websocket connection.
func (c *Collector) RecordWSConnect() {
	atomic.AddInt64(&c.WSConnectionsActive, 1)
}

// RecordWSDisconnect tracks a closed websocket connection.
func (c *Collector) RecordWSDisconnect() {
	atomic.AddInt64(&c.WSConnectionsActive, -1)
}

// RecordWSMessage tracks websocket traffic in the given direction.
func (c *Collector) RecordWSMessage(inbound bool) {
	if inbound {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError tracks a websocket failure.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// SetBlockCount records the board size.
func (c *Collector) SetBlockCount(n int) {
	atomic.StoreInt64(&c.BlockCount, int64(n))
}

// Snapshot is the JSON shape served by the metrics endpoint.
type Snapshot struct {
	UptimeSeconds     float64 `json:"uptime_seconds"`
	Rounds            int64   `json:"rounds"`
	RoundLatencyAvgMs float64 `json:"round_latency_avg_ms"`
	RoundLatencyMaxMs float64 `json:"round_latency_max_ms"`
	EventsWritten     int64   `json:"events_written"`
	EventWriteErrors  int64   `json:"event_write_errors"`
	WSConnections     int64   `json:"ws_connections"`
	WSMessagesIn      int64   `json:"ws_messages_in"`
	WSMessagesOut     int64   `json:"ws_messages_out"`
	WSErrors          int64   `json:"ws_errors"`
	Blocks            int64   `json:"blocks"`
}

// SnapshotNow returns the current counter values.
func (c *Collector) SnapshotNow() Snapshot {
	rounds := atomic.LoadInt64(&c.RoundCount)
	latSum := atomic.LoadInt64(&c.RoundLatencySum)
	avgMs := 0.0
	if rounds > 0 {
		avgMs = float64(latSum) / float64(rounds) / 1e6
	}
	return Snapshot{
		UptimeSeconds:     time.Since(c.StartTime).Seconds(),
		Rounds:            rounds,
		RoundLatencyAvgMs: avgMs,
		RoundLatencyMaxMs: float64(atomic.LoadInt64(&c.RoundLatencyMax)) / 1e6,
		EventsWritten:     atomic.LoadInt64(&c.EventsWritten),
		EventWriteErrors:  atomic.LoadInt64(&c.EventWriteErrors),
		WSConnections:     atomic.LoadInt64(&c.WSConnectionsActive),
		WSMessagesIn:      atomic.LoadInt64(&c.WSMessagesIn),
		WSMessagesOut:     atomic.LoadInt64(&c.WSMessagesOut),
		WSErrors:          atomic.LoadInt64(&c.WSErrors),
		Blocks:            atomic.LoadInt64(&c.BlockCount),
	}
}

// Handler serves the collector state as JSON.
// GET /metrics
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(Get().SnapshotNow())
}
