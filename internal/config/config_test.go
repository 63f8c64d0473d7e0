package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outbreakworks/cordon/internal/domain/block"
)

func TestDefaultTuning(t *testing.T) {
	tuning := Default()
	require.Greater(t, tuning.RoundIntervalMs, 0)
	require.Greater(t, tuning.RoundsPerDay, 0)
	require.NotEmpty(t, tuning.Stages)
	require.Equal(t, block.DefaultRatios(), tuning.Ratios)
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	tuning, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), tuning)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := `
round_interval_ms: 250
stage_period: 5
ratios:
  healthy: 0.25
  infected: 0.9
  incubating: 0.5
  material: 0.5
  hospital_offset: 2.0
profiles:
  Hospital:
    r0: 0.1
    death_rate: 0.005
    resource_floor: 40
    priority: 3
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	tuning, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 250, tuning.RoundIntervalMs)
	require.Equal(t, 5, tuning.StagePeriod)
	require.Equal(t, 0.25, tuning.Ratios.Healthy)
	// Untouched fields keep their defaults.
	require.Equal(t, Default().RoundsPerDay, tuning.RoundsPerDay)

	table := tuning.ProfileTable()
	hospital := table[block.KindHospital]
	require.Equal(t, 0.1, hospital.R0)
	require.Equal(t, 40, hospital.ResourceFloor)
	require.Equal(t, 3.0, hospital.Priority)
}

func TestLoadUnknownProfileKindIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := `
profiles:
  Castle:
    r0: 9.0
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	tuning, err := Load(path)
	require.NoError(t, err)
	table := tuning.ProfileTable()
	require.Len(t, table, 4)
}

func TestScenarioValidate(t *testing.T) {
	sc := DefaultScenario()
	require.NoError(t, sc.Validate())

	sc.Edges = append(sc.Edges, [2]int{0, 99})
	require.Error(t, sc.Validate())

	empty := Scenario{Name: "empty"}
	require.Error(t, empty.Validate())
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	raw := `
name: two-tile
seed: 77
blocks:
  - kind: Factory
    healthy: 120
    material: 10
    working: true
  - kind: Housing
    healthy: 300
    infected: 12
edges:
  - [0, 1]
  - [1, 0]
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Equal(t, "two-tile", sc.Name)
	require.Equal(t, int64(77), sc.Seed)
	require.Len(t, sc.Blocks, 2)
	require.True(t, sc.Blocks[0].Working)
	require.Equal(t, 12, sc.Blocks[1].Infected)
	require.Equal(t, [2]int{1, 0}, sc.Edges[1])
}
