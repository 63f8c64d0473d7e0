// Package main - scenario-runner
// Headless deterministic simulation driver. Runs a board scenario for a
// fixed number of rounds without the server, prints per-round totals and
// verifies conservation invariants. Exits nonzero on any violation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/outbreakworks/cordon/internal/config"
	"github.com/outbreakworks/cordon/internal/engine"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Board scenario yaml (default board compiled in)")
	tuningPath := flag.String("tuning", "", "Tuning yaml (defaults compiled in)")
	rounds := flag.Int("rounds", 100, "Number of rounds to simulate")
	seed := flag.Int64("seed", 0, "Override scenario seed (0 keeps the scenario's)")
	verbose := flag.Bool("v", false, "Print every block each round instead of totals")
	flag.Parse()

	tuning, err := config.Load(*tuningPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tuning: %v\n", err)
		os.Exit(1)
	}
	scenario, err := config.LoadScenario(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scenario: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		scenario.Seed = *seed
	}

	board, err := engine.BuildBoard(scenario, tuning)
	if err != nil {
		fmt.Fprintf(os.Stderr, "board: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scenario %q: %d blocks, %d edges, seed %d, %d rounds\n",
		scenario.Name, len(scenario.Blocks), len(scenario.Edges), scenario.Seed, *rounds)

	h0, i0, n0, m0 := board.Totals()
	fmt.Printf("round %4d: healthy=%d infected=%d incubating=%d material=%d\n", 0, h0, i0, n0, m0)

	violations := 0
	for round := 1; round <= *rounds; round++ {
		board.RunRound()

		h, i, n, m := board.Totals()
		if *verbose {
			printBlocks(board, round)
		} else {
			fmt.Printf("round %4d: healthy=%d infected=%d incubating=%d material=%d\n", round, h, i, n, m)
		}

		violations += checkInvariants(board, round)

		// Population can only fall: deaths are the sole sink and there
		// are no births.
		if h+i+n > h0+i0+n0 {
			fmt.Fprintf(os.Stderr, "VIOLATION round %d: population grew from %d to %d\n",
				round, h0+i0+n0, h+i+n)
			violations++
		}
	}

	h, i, n, m := board.Totals()
	fmt.Printf("\nFinal: healthy=%d infected=%d incubating=%d material=%d\n", h, i, n, m)

	if violations > 0 {
		fmt.Fprintf(os.Stderr, "%d invariant violation(s)\n", violations)
		os.Exit(1)
	}
	fmt.Println("All invariants held.")
}

func printBlocks(board *engine.Board, round int) {
	for idx := 0; idx < board.Len(); idx++ {
		b := board.Block(idx)
		fmt.Printf("round %4d block %d [%s]: healthy=%d infected=%d incubating=%d material=%d working=%v quarantined=%v\n",
			round, idx, b.Kind(), b.Healthy(), b.Infected(), b.Incubating(), b.Material(),
			b.IsWorking(), b.IsQuarantined())
	}
}

// checkInvariants verifies every block's counters stayed in range after
// the commit barrier.
func checkInvariants(board *engine.Board, round int) int {
	violations := 0
	for idx := 0; idx < board.Len(); idx++ {
		b := board.Block(idx)
		if b.Healthy() < 0 || b.Infected() < 0 || b.Incubating() < 0 {
			fmt.Fprintf(os.Stderr, "VIOLATION round %d block %d: negative population (h=%d i=%d n=%d)\n",
				round, idx, b.Healthy(), b.Infected(), b.Incubating())
			violations++
		}
		if floor := b.Profile().ResourceFloor; b.Material() < floor {
			fmt.Fprintf(os.Stderr, "VIOLATION round %d block %d: material %d below floor %d\n",
				round, idx, b.Material(), floor)
			violations++
		}
	}
	return violations
}
