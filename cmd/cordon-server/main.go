// Package main is the entry point for the Cordon simulation server.
// It only handles dependency injection and server initialization.
// NO game logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/outbreakworks/cordon/internal/config"
	"github.com/outbreakworks/cordon/internal/engine"
	"github.com/outbreakworks/cordon/internal/events"
	"github.com/outbreakworks/cordon/internal/infra/cache"
	"github.com/outbreakworks/cordon/internal/infra/storage"
	"github.com/outbreakworks/cordon/internal/network"
	"github.com/outbreakworks/cordon/internal/platform/logger"
	"github.com/outbreakworks/cordon/internal/platform/metrics"
)

// PersisterAdapter translates domain events to storage events.
type PersisterAdapter struct {
	repo   storage.EventRepository
	gameID string
}

func (a *PersisterAdapter) Append(event events.GameEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	err := a.repo.Append(context.Background(), storage.StoredEvent{
		ID:        event.ID,
		GameID:    a.gameID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		Round:     event.Round,
		Payload:   payloadMap,
	})
	metrics.Get().RecordEventWrite(err)
	return err
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "cordon.db", "SQLite database path")
	postgresDSN := flag.String("postgres", "", "PostgreSQL DSN (overrides -db)")
	tuningPath := flag.String("tuning", "", "Tuning yaml (defaults compiled in)")
	scenarioPath := flag.String("scenario", "", "Board scenario yaml (default board compiled in)")
	gameID := flag.String("game", "GAME_1", "Game identifier for persistence")
	flag.Parse()

	log.Println("[CORDON-SERVER] Initializing authoritative simulation server...")
	appLogger := logger.NewLogger()

	tuning, err := config.Load(*tuningPath)
	if err != nil {
		appLogger.Error("Failed to load tuning: " + err.Error())
		os.Exit(1)
	}
	scenario, err := config.LoadScenario(*scenarioPath)
	if err != nil {
		appLogger.Error("Failed to load scenario: " + err.Error())
		os.Exit(1)
	}

	var eventRepo storage.EventRepository
	var snapRepo storage.SnapshotRepository
	if *postgresDSN != "" {
		appLogger.Info("Connecting to PostgreSQL...")
		db, err := storage.OpenPostgres(*postgresDSN)
		if err != nil {
			appLogger.Error("Failed to open PostgreSQL: " + err.Error())
			os.Exit(1)
		}
		eventRepo = storage.NewPostgresEventRepository(db)
		snapRepo = storage.NewPostgresSnapshotRepository(db)
	} else {
		appLogger.Info("Initializing SQLite database '" + *dbPath + "'...")
		db, err := storage.InitSQLite(*dbPath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite: " + err.Error())
			os.Exit(1)
		}
		eventRepo = storage.NewSQLiteEventRepository(db)
		snapRepo = storage.NewSQLiteSnapshotRepository(db)
	}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(&PersisterAdapter{repo: eventRepo, gameID: *gameID})

	appLogger.Info("Building board from scenario '" + scenario.Name + "'...")
	board, err := engine.BuildBoard(scenario, tuning)
	if err != nil {
		appLogger.Error("Failed to build board: " + err.Error())
		os.Exit(1)
	}

	gameEngine := engine.NewEngine(board, eventLog, appLogger, tuning)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resume the round clock from the last persisted board state.
	if lastRound, err := snapRepo.LatestRound(ctx, *gameID); err == nil && lastRound > 0 {
		day := 1 + lastRound/tuning.RoundsPerDay
		gameEngine.OverrideClock(lastRound, day)
		appLogger.Info("Restored round clock from database.")
	}

	hub := network.NewHub(gameEngine, appLogger)
	go hub.Run(ctx)

	snapCache := cache.NewSnapshotCache(cache.NewMemoryKV())

	gameEngine.SetOnRoundSettled(func(snap engine.BoardSnapshot) {
		hub.BroadcastSnapshot(snap)
		if err := snapCache.Store(ctx, *gameID, snap); err != nil {
			appLogger.Warn("Failed to cache board snapshot: " + err.Error())
		}
		go persistBoard(snapRepo, *gameID, snap, appLogger)
	})

	gameEngine.Start(ctx)

	replayHandler := network.NewReplayHandler(eventLog, *gameID, appLogger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/replay", replayHandler)
	mux.HandleFunc("/metrics", metrics.Handler)
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if snap, ok := snapCache.Load(r.Context(), *gameID); ok {
			json.NewEncoder(w).Encode(snap)
			return
		}
		json.NewEncoder(w).Encode(gameEngine.Snapshot())
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		appLogger.Info("HTTP server listening on " + *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed: " + err.Error())
			cancel()
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		appLogger.Info("Shutdown signal received.")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown error: " + err.Error())
	}
	cancel()
	appLogger.Info("Server stopped.")
}

// persistBoard writes every block's committed state for the round.
func persistBoard(repo storage.SnapshotRepository, gameID string, snap engine.BoardSnapshot, appLogger *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for _, b := range snap.Blocks {
		err := repo.Upsert(ctx, storage.BlockSnapshot{
			GameID:      gameID,
			Round:       snap.Round,
			BlockIndex:  b.Index,
			Kind:        b.Kind,
			Healthy:     b.Healthy,
			Infected:    b.Infected,
			Incubating:  b.Incubating,
			Material:    b.Material,
			Working:     b.Working,
			Quarantined: b.Quarantined,
			RecordedAt:  time.Now().UTC(),
		})
		if err != nil {
			appLogger.Error("Failed to persist block snapshot: " + err.Error())
			return
		}
	}
}
