// Package config loads the simulation tuning and board scenarios from
// yaml files, with compiled-in defaults so the server runs without any.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/outbreakworks/cordon/internal/domain/block"
)

// Tuning holds every externally adjustable simulation constant.
type Tuning struct {
	RoundIntervalMs int `yaml:"round_interval_ms"`
	RoundsPerDay    int `yaml:"rounds_per_day"`

	StagePeriod int           `yaml:"stage_period"`
	Stages      []block.Stage `yaml:"stages"`

	Ratios block.Ratios `yaml:"ratios"`

	DefaultQuarantinePeriod int `yaml:"default_quarantine_period"`

	Profiles map[string]ProfileTuning `yaml:"profiles"`
}

// ProfileTuning overrides the built-in constants for one block kind.
type ProfileTuning struct {
	R0                  float64 `yaml:"r0"`
	DeathRate           float64 `yaml:"death_rate"`
	MaterialRate        float64 `yaml:"material_rate"`
	WorkingMaterialRate float64 `yaml:"working_material_rate"`
	ResourceFloor       int     `yaml:"resource_floor"`
	TaxRate             float64 `yaml:"tax_rate"`
	Priority            float64 `yaml:"priority"`
}

// Default returns the tuning the game ships with.
func Default() Tuning {
	return Tuning{
		RoundIntervalMs: 5000,
		RoundsPerDay:    24,
		StagePeriod:     3,
		Stages: []block.Stage{
			{Reproduction: 0.6, DeathRate: 0.2}, // onset
			{Reproduction: 1.0, DeathRate: 1.0}, // peak
			{Reproduction: 0.3, DeathRate: 0.5}, // decline
		},
		Ratios:                  block.DefaultRatios(),
		DefaultQuarantinePeriod: 6,
	}
}

// Load reads a tuning file and applies it over the defaults. A missing
// path returns the defaults untouched.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if t.RoundIntervalMs <= 0 {
		t.RoundIntervalMs = Default().RoundIntervalMs
	}
	if t.RoundsPerDay <= 0 {
		t.RoundsPerDay = Default().RoundsPerDay
	}
	return t, nil
}

// ProfileTable builds the interned profile set, applying any overrides
// from the tuning file on top of the built-in table.
func (t Tuning) ProfileTable() block.ProfileTable {
	table := block.DefaultProfiles()
	for name, override := range t.Profiles {
		p, ok := table[block.Kind(name)]
		if !ok {
			continue
		}
		p.R0 = override.R0
		p.DeathRate = override.DeathRate
		p.MaterialRate = override.MaterialRate
		p.WorkingMaterialRate = override.WorkingMaterialRate
		p.ResourceFloor = override.ResourceFloor
		p.TaxRate = override.TaxRate
		p.Priority = override.Priority
	}
	return table
}
