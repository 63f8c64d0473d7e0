package block

// Kind identifies the board-tile type of a block.
type Kind string

const (
	KindFactory    Kind = "Factory"    // Produces material while working
	KindHousing    Kind = "Housing"    // Population reservoir
	KindHospital   Kind = "Hospital"   // Dampened spread, contained transfers
	KindQuarantine Kind = "Quarantine" // Holding zone for isolated cohorts
)

// Profile holds the immutable per-kind simulation constants. One instance
// per kind is interned in a ProfileTable and shared read-only by every
// block of that kind. Never mutated after construction.
type Profile struct {
	Kind Kind

	// Epidemiology base rates, scaled by the active timer stage.
	R0        float64 // Base reproduction number
	DeathRate float64 // Base per-head death probability

	// Economy.
	MaterialRate        float64 // Material change per head while idle
	WorkingMaterialRate float64 // Material change per head while working (factories)
	ResourceFloor       int     // Material never drops below this
	TaxRate             float64 // Fraction collected by Taxed()

	// Priority of this kind's counters as broadcast targets.
	Priority float64
}

// ProfileTable is the interned profile set indexed by kind. Built once at
// startup and passed by shared read-only reference.
type ProfileTable map[Kind]*Profile

// DefaultProfiles returns the built-in parameter table. Hospital overrides
// cut reproduction, deaths and material burn to model managed care.
func DefaultProfiles() ProfileTable {
	return ProfileTable{
		KindFactory: {
			Kind:                KindFactory,
			R0:                  1.0,
			DeathRate:           0.04,
			MaterialRate:        -0.01,
			WorkingMaterialRate: 1.0,
			ResourceFloor:       0,
			TaxRate:             0.05,
		},
		KindHousing: {
			Kind:          KindHousing,
			R0:            1.4,
			DeathRate:     0.04,
			MaterialRate:  -0.02,
			ResourceFloor: 0,
			TaxRate:       0.05,
		},
		KindHospital: {
			Kind:          KindHospital,
			R0:            0.2,
			DeathRate:     0.01,
			MaterialRate:  -0.005,
			ResourceFloor: 10,
			TaxRate:       0.02,
			Priority:      3,
		},
		KindQuarantine: {
			Kind:          KindQuarantine,
			R0:            0.8,
			DeathRate:     0.06,
			MaterialRate:  -0.03,
			ResourceFloor: 0,
			TaxRate:       0,
			Priority:      2,
		},
	}
}

// Lookup returns the profile for kind, falling back to Housing for unknown
// kinds so a malformed scenario degrades instead of failing.
func (pt ProfileTable) Lookup(kind Kind) *Profile {
	if p, ok := pt[kind]; ok {
		return p
	}
	return pt[KindHousing]
}
