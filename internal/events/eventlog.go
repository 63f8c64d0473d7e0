// Package events provides the append-only event log for the simulation.
// Card plays, work orders and round settlements all pass through it, so a
// game can be replayed from its history.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a game event.
type EventType string

const (
	EventTypeRoundTick      EventType = "ROUND_TICK"
	EventTypeRoundSettled   EventType = "ROUND_SETTLED"
	EventTypeCardTax        EventType = "CARD_TAX"
	EventTypeCardQuarantine EventType = "CARD_QUARANTINE"
	EventTypeCardAid        EventType = "CARD_AID"
	EventTypeWorkOrderStart EventType = "WORK_ORDER_START"
	EventTypeWorkOrderStop  EventType = "WORK_ORDER_STOP"
	EventTypeBlockSnapshot  EventType = "BLOCK_SNAPSHOT"
)

// RoundTickPayload is attached to each heartbeat event.
type RoundTickPayload struct {
	Round   int `json:"round"`
	GameDay int `json:"game_day"`
}

// CardPayload carries a card played against a single block.
type CardPayload struct {
	BlockIndex int `json:"block_index"`
	// Period only applies to quarantine cards.
	Period int `json:"period,omitempty"`
}

// RoundSettledPayload summarizes the board after a committed round.
type RoundSettledPayload struct {
	Round         int `json:"round"`
	TotalHealthy  int `json:"total_healthy"`
	TotalInfected int `json:"total_infected"`
	TotalMaterial int `json:"total_material"`
	TaxCollected  int `json:"tax_collected,omitempty"`
}

// GameEvent represents an immutable record of an action in the game.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"` // Who played the card / which system fired
	Round     int         `json:"round"`
	Payload   interface{} `json:"payload"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog is the in-memory append-only log of game events.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister EventPersister
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.events = append(el.events, event)

	if el.persister != nil {
		// Write through to persistent storage off the hot path.
		go func(e GameEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByRound returns all events recorded during a specific round.
func (el *EventLog) GetByRound(round int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Round == round {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns all events of a specific type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events for state reconstruction.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.events
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.Must(uuid.NewV7()).String()
}
