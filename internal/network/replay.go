// Package network - replay.go
// JSON export of the game's event history, for moderators and post-game
// analysis tooling.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/outbreakworks/cordon/internal/events"
	"github.com/outbreakworks/cordon/internal/platform/logger"
)

// ReplayHandler provides the event-history API.
type ReplayHandler struct {
	eventLog *events.EventLog
	gameID   string
	logger   *logger.Logger
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(el *events.EventLog, gameID string, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{
		eventLog: el,
		gameID:   gameID,
		logger:   log,
	}
}

// ReplayEvent is the export shape of one logged event.
type ReplayEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Round     int         `json:"round"`
	Type      string      `json:"type"`
	ActorID   string      `json:"actor_id"`
	Payload   interface{} `json:"payload,omitempty"`
}

// ReplayResponse is the API response for the replay endpoint.
type ReplayResponse struct {
	GameID      string        `json:"game_id"`
	TotalEvents int           `json:"total_events"`
	FilteredBy  string        `json:"filtered_by,omitempty"`
	Events      []ReplayEvent `json:"events"`
}

// ServeHTTP exports the event history. Optional query filters:
// ?round=N for one round, ?type=CARD_TAX for one event type.
// GET /replay
func (rh *ReplayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var history []events.GameEvent
	filteredBy := ""

	if roundStr := r.URL.Query().Get("round"); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil {
			http.Error(w, "invalid round filter", http.StatusBadRequest)
			return
		}
		history = rh.eventLog.GetByRound(round)
		filteredBy = "round=" + roundStr
	} else if typeStr := r.URL.Query().Get("type"); typeStr != "" {
		history = rh.eventLog.GetByType(events.EventType(typeStr))
		filteredBy = "type=" + typeStr
	} else {
		history = rh.eventLog.Replay()
	}

	resp := ReplayResponse{
		GameID:      rh.gameID,
		TotalEvents: len(history),
		FilteredBy:  filteredBy,
		Events:      make([]ReplayEvent, 0, len(history)),
	}
	for _, e := range history {
		resp.Events = append(resp.Events, ReplayEvent{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Round:     e.Round,
			Type:      string(e.Type),
			ActorID:   e.ActorID,
			Payload:   e.Payload,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		rh.logger.Error("Failed to encode replay response: " + err.Error())
	}
}
