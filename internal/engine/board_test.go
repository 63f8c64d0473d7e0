package engine

import (
	"testing"

	"github.com/outbreakworks/cordon/internal/config"
	"github.com/outbreakworks/cordon/internal/domain/block"
)

func quietTuning() config.Tuning {
	t := config.Default()
	// One inert stage: no reproduction, no deaths, no idle burn.
	t.StagePeriod = 100
	t.Stages = []block.Stage{{Reproduction: 0, DeathRate: 0}}
	t.Profiles = map[string]config.ProfileTuning{
		"Housing": {},
		"Factory": {WorkingMaterialRate: 1.0, TaxRate: 0.05},
	}
	return t
}

func TestBuildBoardWiresEdges(t *testing.T) {
	sc := config.Scenario{
		Seed: 1,
		Blocks: []config.ScenarioBlock{
			{Kind: "Factory", Healthy: 100, Working: true},
			{Kind: "Housing", Healthy: 200},
		},
		Edges: [][2]int{{0, 1}, {1, 0}},
	}

	bd, err := BuildBoard(sc, quietTuning())
	if err != nil {
		t.Fatalf("BuildBoard failed: %v", err)
	}
	if bd.Len() != 2 {
		t.Fatalf("Expected 2 blocks, got %d", bd.Len())
	}
	if !bd.Block(0).IsWorking() {
		t.Errorf("Expected scenario working flag applied to the factory")
	}
	if got := bd.OutEdges(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("Expected block 0 to have out-edge [1], got %v", got)
	}
}

func TestBuildBoardRejectsBadEdges(t *testing.T) {
	sc := config.Scenario{
		Blocks: []config.ScenarioBlock{{Kind: "Housing", Healthy: 10}},
		Edges:  [][2]int{{0, 5}},
	}
	if _, err := BuildBoard(sc, quietTuning()); err == nil {
		t.Errorf("Expected an error for an edge to a missing block")
	}
}

func TestRunRoundConservesPopulation(t *testing.T) {
	// With no deaths configured, RunRound must only move people around.
	sc := config.Scenario{
		Seed: 9,
		Blocks: []config.ScenarioBlock{
			{Kind: "Housing", Healthy: 500, Infected: 40},
			{Kind: "Housing", Healthy: 300},
			{Kind: "Housing", Healthy: 100},
		},
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 0}},
	}
	bd, err := BuildBoard(sc, quietTuning())
	if err != nil {
		t.Fatalf("BuildBoard failed: %v", err)
	}

	wantPop := 500 + 40 + 300 + 100
	for round := 0; round < 30; round++ {
		bd.RunRound()
		h, inf, inc, _ := bd.Totals()
		if h+inf+inc != wantPop {
			t.Fatalf("round %d: population changed from %d to %d with no deaths configured",
				round, wantPop, h+inf+inc)
		}
	}
}

func TestRunRoundBarrierOrdering(t *testing.T) {
	// A -> B and B -> A: if commits interleaved with propagation, one block
	// would broadcast values it received mid-round. With the three-barrier
	// driver, both ends exchange exactly half of their pre-round totals.
	sc := config.Scenario{
		Seed: 1,
		Blocks: []config.ScenarioBlock{
			{Kind: "Housing", Healthy: 100},
			{Kind: "Housing", Healthy: 0},
		},
		Edges: [][2]int{{0, 1}, {1, 0}},
	}
	bd, err := BuildBoard(sc, quietTuning())
	if err != nil {
		t.Fatalf("BuildBoard failed: %v", err)
	}

	bd.RunRound()

	if bd.Block(0).Healthy() != 50 || bd.Block(1).Healthy() != 50 {
		t.Errorf("Expected 50/50 after one round, got %d/%d",
			bd.Block(0).Healthy(), bd.Block(1).Healthy())
	}
}
