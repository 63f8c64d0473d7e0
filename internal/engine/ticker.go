// Package engine contains the board arena, the round driver and the game
// heartbeat.
//
// ARCHITECTURAL RULE: the Ticker does NOT mutate block state directly. It
// emits RoundTick events to the EventLog; the Engine reacts to them.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/outbreakworks/cordon/internal/events"
	"github.com/outbreakworks/cordon/internal/platform/logger"
)

// Ticker manages the game heartbeat. It knows nothing about blocks, only
// round and day progression.
type Ticker struct {
	eventLog     *events.EventLog
	logger       *logger.Logger
	interval     time.Duration
	roundsPerDay int
	round        int
	gameDay      int
	stopChan     chan struct{}
}

// NewTicker creates a heartbeat emitting one RoundTick per interval.
func NewTicker(eventLog *events.EventLog, log *logger.Logger, interval time.Duration, roundsPerDay int) *Ticker {
	if roundsPerDay <= 0 {
		roundsPerDay = 24
	}
	return &Ticker{
		eventLog:     eventLog,
		logger:       log,
		interval:     interval,
		roundsPerDay: roundsPerDay,
		round:        0,
		gameDay:      1,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the heartbeat. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("Round ticker started.")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Round ticker stopped by context.")
			return
		case <-t.stopChan:
			t.logger.Info("Round ticker stopped manually.")
			return
		case <-ticker.C:
			t.tick()
		}
	}
}

// Stop gracefully stops the ticker.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

// SetRound allows bootstrapping commands to set the clock directly.
func (t *Ticker) SetRound(round, day int) {
	t.round = round
	t.gameDay = day
}

// CurrentRound returns the current round number and in-game day.
func (t *Ticker) CurrentRound() (int, int) {
	return t.round, t.gameDay
}

// tick emits one heartbeat event.
func (t *Ticker) tick() {
	t.round++
	if t.round%t.roundsPerDay == 0 {
		t.gameDay++
		t.logger.Info(fmt.Sprintf("A new day dawns on the board: day %d", t.gameDay))
	}

	t.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeRoundTick,
		ActorID:   "SYSTEM_TICKER",
		Round:     t.round,
		Payload: events.RoundTickPayload{
			Round:   t.round,
			GameDay: t.gameDay,
		},
	})
}
