package engine

import (
	"fmt"
	"math/rand"

	"github.com/outbreakworks/cordon/internal/config"
	"github.com/outbreakworks/cordon/internal/domain/block"
)

// Board is the arena holding every block of one game, addressed by stable
// integer index. Edge lists live here, not on the blocks, and preserve
// insertion order: proportional allocation is order-sensitive.
type Board struct {
	blocks []*block.Block
	edges  [][]int
	rng    *rand.Rand
}

// NewBoard creates an empty board with a seeded random source shared by
// every block's death draws. A fixed seed makes a run reproducible.
func NewBoard(seed int64) *Board {
	return &Board{rng: rand.New(rand.NewSource(seed))}
}

// Rand exposes the board's random source for block construction.
func (bd *Board) Rand() *rand.Rand {
	return bd.rng
}

// AddBlock registers a block and returns its arena index.
func (bd *Board) AddBlock(b *block.Block) int {
	bd.blocks = append(bd.blocks, b)
	bd.edges = append(bd.edges, nil)
	return len(bd.blocks) - 1
}

// Connect registers a directed edge and links the two blocks' counters.
func (bd *Board) Connect(src, dst int) error {
	if src < 0 || src >= len(bd.blocks) || dst < 0 || dst >= len(bd.blocks) {
		return fmt.Errorf("connect %d->%d: index out of range (board has %d blocks)", src, dst, len(bd.blocks))
	}
	bd.edges[src] = append(bd.edges[src], dst)
	block.Link(bd.blocks[src], bd.blocks[dst])
	return nil
}

// Block returns the block at index i, or nil when out of range.
func (bd *Board) Block(i int) *block.Block {
	if i < 0 || i >= len(bd.blocks) {
		return nil
	}
	return bd.blocks[i]
}

// Len returns the number of blocks on the board.
func (bd *Board) Len() int {
	return len(bd.blocks)
}

// OutEdges returns the arena indices of a block's outgoing edges.
func (bd *Board) OutEdges(i int) []int {
	if i < 0 || i >= len(bd.edges) {
		return nil
	}
	return bd.edges[i]
}

// RunRound executes one full settlement round. The three barriers are the
// correctness invariant: every block finishes its local phase before any
// block propagates, and every block propagates before any block commits.
func (bd *Board) RunRound() {
	for _, b := range bd.blocks {
		b.EndInBlock()
	}
	for _, b := range bd.blocks {
		b.EndRound()
	}
	for _, b := range bd.blocks {
		b.Commit()
	}
}

// Totals sums the committed counters across the board.
func (bd *Board) Totals() (healthy, infected, incubating, material int) {
	for _, b := range bd.blocks {
		healthy += b.Healthy()
		infected += b.Infected()
		incubating += b.Incubating()
		material += b.Material()
	}
	return
}

// BuildBoard constructs a board from a scenario under the given tuning.
func BuildBoard(sc config.Scenario, tuning config.Tuning) (*Board, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	bd := NewBoard(sc.Seed)
	profiles := tuning.ProfileTable()

	for _, sb := range sc.Blocks {
		cfg := block.Config{
			Profile:     profiles.Lookup(block.Kind(sb.Kind)),
			StagePeriod: tuning.StagePeriod,
			Stages:      tuning.Stages,
			Ratios:      tuning.Ratios,
			Rand:        bd.Rand(),
		}
		b := block.New(cfg, sb.Healthy, sb.Infected, sb.Material)
		if sb.Working {
			b.StartWorking()
		}
		bd.AddBlock(b)
	}

	for _, e := range sc.Edges {
		if err := bd.Connect(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return bd, nil
}
