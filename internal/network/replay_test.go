package network

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/outbreakworks/cordon/internal/events"
	"github.com/outbreakworks/cordon/internal/platform/logger"
)

func seededLog() *events.EventLog {
	el := events.NewEventLog(nil)
	el.Append(events.GameEvent{
		ID: "e1", Timestamp: time.Now(), Type: events.EventTypeCardTax,
		ActorID: "MOD", Round: 1,
	})
	el.Append(events.GameEvent{
		ID: "e2", Timestamp: time.Now(), Type: events.EventTypeRoundSettled,
		ActorID: "SYSTEM_ENGINE", Round: 1,
	})
	el.Append(events.GameEvent{
		ID: "e3", Timestamp: time.Now(), Type: events.EventTypeCardAid,
		ActorID: "MOD", Round: 2,
	})
	return el
}

func TestReplayFullHistory(t *testing.T) {
	rh := NewReplayHandler(seededLog(), "GAME_1", logger.NewLogger())

	req := httptest.NewRequest("GET", "/replay", nil)
	rec := httptest.NewRecorder()
	rh.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp ReplayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.TotalEvents != 3 || len(resp.Events) != 3 {
		t.Errorf("Expected 3 events, got %d", resp.TotalEvents)
	}
	if resp.GameID != "GAME_1" {
		t.Errorf("Expected game id GAME_1, got %s", resp.GameID)
	}
}

func TestReplayRoundFilter(t *testing.T) {
	rh := NewReplayHandler(seededLog(), "GAME_1", logger.NewLogger())

	req := httptest.NewRequest("GET", "/replay?round=2", nil)
	rec := httptest.NewRecorder()
	rh.ServeHTTP(rec, req)

	var resp ReplayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.TotalEvents != 1 || resp.Events[0].ID != "e3" {
		t.Errorf("Expected only event e3 for round 2, got %+v", resp.Events)
	}
}

func TestReplayTypeFilter(t *testing.T) {
	rh := NewReplayHandler(seededLog(), "GAME_1", logger.NewLogger())

	req := httptest.NewRequest("GET", "/replay?type=CARD_TAX", nil)
	rec := httptest.NewRecorder()
	rh.ServeHTTP(rec, req)

	var resp ReplayResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.TotalEvents != 1 || resp.Events[0].Type != "CARD_TAX" {
		t.Errorf("Expected only the tax card event, got %+v", resp.Events)
	}
	if resp.FilteredBy != "type=CARD_TAX" {
		t.Errorf("Expected filter echo, got %q", resp.FilteredBy)
	}
}

func TestReplayRejectsBadRound(t *testing.T) {
	rh := NewReplayHandler(seededLog(), "GAME_1", logger.NewLogger())

	req := httptest.NewRequest("GET", "/replay?round=soon", nil)
	rec := httptest.NewRecorder()
	rh.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Errorf("Expected 400 for a non-numeric round, got %d", rec.Code)
	}
}
