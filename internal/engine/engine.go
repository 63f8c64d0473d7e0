package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/outbreakworks/cordon/internal/config"
	"github.com/outbreakworks/cordon/internal/events"
	"github.com/outbreakworks/cordon/internal/platform/logger"
	"github.com/outbreakworks/cordon/internal/platform/metrics"
)

// BlockState is the read-only view of one block for display layers.
type BlockState struct {
	Index       int    `json:"index"`
	Kind        string `json:"kind"`
	Healthy     int    `json:"healthy"`
	Infected    int    `json:"infected"`
	Incubating  int    `json:"incubating"`
	Material    int    `json:"material"`
	Working     bool   `json:"working"`
	Quarantined bool   `json:"quarantined"`
	OutEdges    []int  `json:"out_edges"`
}

// BoardSnapshot is the full board view broadcast after each round.
type BoardSnapshot struct {
	Round         int          `json:"round"`
	GameDay       int          `json:"game_day"`
	TotalHealthy  int          `json:"total_healthy"`
	TotalInfected int          `json:"total_infected"`
	TotalMaterial int          `json:"total_material"`
	TaxPot        int          `json:"tax_pot"`
	Blocks        []BlockState `json:"blocks"`
}

// Engine is the central orchestrator wiring the event log to the board.
// All board mutations happen on its event-processing goroutine; the
// ticker and the network layer only ever append events.
type Engine struct {
	board    *Board
	eventLog *events.EventLog
	logger   *logger.Logger
	ticker   *Ticker

	defaultQuarantine int

	mu                 sync.RWMutex
	lastProcessedEvent int
	currentRound       int
	gameDay            int
	taxPot             int

	onRoundSettled func(BoardSnapshot)
}

// NewEngine initializes the orchestrator and its heartbeat.
func NewEngine(board *Board, eventLog *events.EventLog, log *logger.Logger, tuning config.Tuning) *Engine {
	interval := time.Duration(tuning.RoundIntervalMs) * time.Millisecond
	e := &Engine{
		board:             board,
		eventLog:          eventLog,
		logger:            log,
		ticker:            NewTicker(eventLog, log, interval, tuning.RoundsPerDay),
		defaultQuarantine: tuning.DefaultQuarantinePeriod,
		gameDay:           1,
	}
	metrics.Get().SetBlockCount(board.Len())
	return e
}

// SetOnRoundSettled registers a hook invoked with the fresh snapshot after
// every committed round. Used by the websocket hub.
func (e *Engine) SetOnRoundSettled(fn func(BoardSnapshot)) {
	e.onRoundSettled = fn
}

// Start spawns the Ticker and the event-processing loop.
func (e *Engine) Start(ctx context.Context) {
	e.logger.Info("Starting simulation engine...")
	go e.ticker.Start(ctx)
	go e.processEvents(ctx)
}

// OverrideClock sets the round counter directly for bootstrap commands.
func (e *Engine) OverrideClock(round, day int) {
	e.ticker.SetRound(round, day)
	e.mu.Lock()
	e.currentRound = round
	e.gameDay = day
	e.mu.Unlock()
}

// PlayCard appends an externally triggered action to the event log. The
// mutation happens when the event is dispatched, between rounds.
func (e *Engine) PlayCard(t events.EventType, blockIndex, period int, actorID string) {
	e.mu.RLock()
	round := e.currentRound
	e.mu.RUnlock()

	e.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      t,
		ActorID:   actorID,
		Round:     round,
		Payload: events.CardPayload{
			BlockIndex: blockIndex,
			Period:     period,
		},
	})
}

// Snapshot returns a read-only copy of the current board state.
func (e *Engine) Snapshot() BoardSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() BoardSnapshot {
	snap := BoardSnapshot{
		Round:   e.currentRound,
		GameDay: e.gameDay,
		TaxPot:  e.taxPot,
		Blocks:  make([]BlockState, 0, e.board.Len()),
	}
	for i := 0; i < e.board.Len(); i++ {
		b := e.board.Block(i)
		snap.Blocks = append(snap.Blocks, BlockState{
			Index:       i,
			Kind:        string(b.Kind()),
			Healthy:     b.Healthy(),
			Infected:    b.Infected(),
			Incubating:  b.Incubating(),
			Material:    b.Material(),
			Working:     b.IsWorking(),
			Quarantined: b.IsQuarantined(),
			OutEdges:    e.board.OutEdges(i),
		})
	}
	snap.TotalHealthy, snap.TotalInfected, _, snap.TotalMaterial = e.board.Totals()
	return snap
}

// processEvents listens to the EventLog and dispatches new entries.
func (e *Engine) processEvents(ctx context.Context) {
	poll := time.NewTicker(100 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Event processor stopped.")
			return
		case <-poll.C:
			all := e.eventLog.Replay()
			if len(all) <= e.lastProcessedEvent {
				continue
			}
			for _, event := range all[e.lastProcessedEvent:] {
				e.dispatch(event)
			}
			e.lastProcessedEvent = len(all)
		}
	}
}

// dispatch routes one event to the board.
func (e *Engine) dispatch(event events.GameEvent) {
	switch event.Type {
	case events.EventTypeRoundTick:
		round, day := event.Round, 1
		if p, ok := roundTickPayload(event); ok {
			round, day = p.Round, p.GameDay
		}
		e.runRound(round, day)

	case events.EventTypeCardTax:
		e.withBlock(event, func(idx int, _ events.CardPayload) {
			amount := e.board.Block(idx).Taxed()
			e.taxPot += amount
			e.logger.Event("TAX", event.ActorID, fmt.Sprintf("block %d taxed for %d material", idx, amount))
		})

	case events.EventTypeCardQuarantine:
		e.withBlock(event, func(idx int, p events.CardPayload) {
			period := p.Period
			if period <= 0 {
				period = e.defaultQuarantine
			}
			e.board.Block(idx).Quarantined(period)
			e.logger.Event("QUARANTINE", event.ActorID, fmt.Sprintf("block %d sealed for %d rounds", idx, period))
		})

	case events.EventTypeCardAid:
		e.withBlock(event, func(idx int, _ events.CardPayload) {
			e.board.Block(idx).Aided()
			e.logger.Event("AID", event.ActorID, fmt.Sprintf("block %d evacuated and rescued", idx))
		})

	case events.EventTypeWorkOrderStart:
		e.withBlock(event, func(idx int, _ events.CardPayload) {
			if !e.board.Block(idx).StartWorking() {
				e.logger.Warn(fmt.Sprintf("Work order rejected: block %d is not a factory", idx))
				return
			}
			e.logger.Event("WORK_START", event.ActorID, fmt.Sprintf("block %d started working", idx))
		})

	case events.EventTypeWorkOrderStop:
		e.withBlock(event, func(idx int, _ events.CardPayload) {
			e.board.Block(idx).StopWorking()
			e.logger.Event("WORK_STOP", event.ActorID, fmt.Sprintf("block %d stopped working", idx))
		})
	}
}

// withBlock parses a card payload, checks the index and runs fn under the
// board write lock.
func (e *Engine) withBlock(event events.GameEvent, fn func(idx int, p events.CardPayload)) {
	p, ok := cardPayload(event)
	if !ok {
		e.logger.Error("Unparseable card payload on event " + event.ID)
		return
	}
	if e.board.Block(p.BlockIndex) == nil {
		e.logger.Error(fmt.Sprintf("Card for unknown block %d on event %s", p.BlockIndex, event.ID))
		return
	}
	e.mu.Lock()
	fn(p.BlockIndex, p)
	e.mu.Unlock()
}

// runRound settles one round across the whole board.
func (e *Engine) runRound(round, day int) {
	start := time.Now()

	e.mu.Lock()
	e.board.RunRound()
	e.currentRound = round
	e.gameDay = day
	snap := e.snapshotLocked()
	e.mu.Unlock()

	metrics.Get().RecordRound(time.Since(start))

	e.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeRoundSettled,
		ActorID:   "SYSTEM_ENGINE",
		Round:     round,
		Payload: events.RoundSettledPayload{
			Round:         round,
			TotalHealthy:  snap.TotalHealthy,
			TotalInfected: snap.TotalInfected,
			TotalMaterial: snap.TotalMaterial,
			TaxCollected:  snap.TaxPot,
		},
	})

	if e.onRoundSettled != nil {
		e.onRoundSettled(snap)
	}
}

// roundTickPayload recovers the heartbeat payload, tolerating the generic
// map shape that comes back from JSON persistence.
func roundTickPayload(event events.GameEvent) (events.RoundTickPayload, bool) {
	if p, ok := event.Payload.(events.RoundTickPayload); ok {
		return p, true
	}
	if m, ok := event.Payload.(map[string]interface{}); ok {
		var p events.RoundTickPayload
		if v, ok := m["round"].(float64); ok {
			p.Round = int(v)
		}
		if v, ok := m["game_day"].(float64); ok {
			p.GameDay = int(v)
		}
		return p, true
	}
	return events.RoundTickPayload{}, false
}

// cardPayload recovers a card payload, tolerating the generic map shape.
func cardPayload(event events.GameEvent) (events.CardPayload, bool) {
	if p, ok := event.Payload.(events.CardPayload); ok {
		return p, true
	}
	if m, ok := event.Payload.(map[string]interface{}); ok {
		var p events.CardPayload
		if v, ok := m["block_index"].(float64); ok {
			p.BlockIndex = int(v)
		}
		if v, ok := m["period"].(float64); ok {
			p.Period = int(v)
		}
		return p, true
	}
	return events.CardPayload{}, false
}
