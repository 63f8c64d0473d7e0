package block

import (
	"math"
	"math/rand"
)

// Ratios holds the per-round propagation fractions each counter gives to
// its neighbors, and the priority offset hospitals apply to infected
// transfers (only links at or above the offset receive them).
type Ratios struct {
	Healthy        float64 `yaml:"healthy"`
	Infected       float64 `yaml:"infected"`
	Incubating     float64 `yaml:"incubating"`
	Material       float64 `yaml:"material"`
	HospitalOffset float64 `yaml:"hospital_offset"`
}

// DefaultRatios returns the baseline game-balance propagation fractions.
func DefaultRatios() Ratios {
	return Ratios{
		Healthy:        0.5,
		Infected:       0.9,
		Incubating:     0.5,
		Material:       0.5,
		HospitalOffset: 2.0,
	}
}

// Config carries the shared construction parameters for a block.
type Config struct {
	Profile     *Profile
	StagePeriod int
	Stages      []Stage
	Ratios      Ratios
	Rand        *rand.Rand
}

// Block is one board tile: four buffered counters, two generation timers
// and the working/quarantine state. Settlement runs in three phases per
// round: EndInBlock (local), EndRound (propagation), Commit.
type Block struct {
	profile *Profile
	ratios  Ratios
	rng     *rand.Rand

	working          bool
	quarantined      bool
	quarantineTicks  int
	quarantinePeriod int

	healthy    *Value // healthy population
	infected   *Value // current-generation infected
	incubating *Value // next-generation infected
	material   *Value

	curTimer  *StageTimer // current generation's disease clock
	nextTimer *StageTimer // next generation's disease clock
}

// New constructs a block with initial committed counts. The profile is a
// shared interned reference; the stage slice may be shared across blocks.
func New(cfg Config, healthy, infected, material int) *Block {
	prio := cfg.Profile.Priority
	return &Block{
		profile:    cfg.Profile,
		ratios:     cfg.Ratios,
		rng:        cfg.Rand,
		healthy:    NewValue(healthy, prio),
		infected:   NewValue(infected, prio),
		incubating: NewValue(0, prio),
		material:   NewValue(material, prio),
		curTimer:   NewStageTimer(cfg.StagePeriod, cfg.Stages),
		nextTimer:  NewStageTimer(cfg.StagePeriod, cfg.Stages),
	}
}

// Link registers dst's counters as broadcast targets of src's counters,
// preserving insertion order. Called once per directed edge at setup.
func Link(src, dst *Block) {
	src.healthy.Link(dst.healthy)
	src.infected.Link(dst.infected)
	src.incubating.Link(dst.incubating)
	src.material.Link(dst.material)
}

// EndInBlock runs the local settlement phase. It must not touch any other
// block: only committed values of this block are read and written.
func (b *Block) EndInBlock() {
	// Generation boundary: the symptomatic cohort recovers, the incubating
	// cohort becomes symptomatic.
	if b.curTimer.Tick()+b.nextTimer.Tick() > 0 {
		b.healthy.Set(b.healthy.Get() + b.infected.Get())
		b.infected.Set(b.incubating.Get())
		b.incubating.Set(0)
	}

	// New infections, capped at the healthy pool.
	rCur := b.curTimer.Reproduction() * b.profile.R0
	rNext := b.nextTimer.Reproduction() * b.profile.R0
	newInfected := int(math.Floor(float64(b.infected.Get())*rCur + float64(b.incubating.Get())*rNext))
	if newInfected > b.healthy.Get() {
		newInfected = b.healthy.Get()
	}
	if newInfected > 0 {
		b.incubating.Set(b.incubating.Get() + newInfected)
		b.healthy.Set(b.healthy.Get() - newInfected)
	}

	// Deaths, drawn independently per cohort.
	b.subtractDeaths(b.infected, b.curTimer.DeathRate()*b.profile.DeathRate)
	b.subtractDeaths(b.incubating, b.nextTimer.DeathRate()*b.profile.DeathRate)

	// Material production or burn, floored at the profile's resource floor.
	rate := b.profile.MaterialRate
	if b.working && b.profile.Kind == KindFactory {
		rate = b.profile.WorkingMaterialRate
	}
	m := b.material.Get() + int(math.Floor(rate*float64(b.healthy.Get()+b.infected.Get())))
	if m < b.profile.ResourceFloor {
		m = b.profile.ResourceFloor
	}
	b.material.Set(m)
}

func (b *Block) subtractDeaths(v *Value, rate float64) {
	dead := SampleDeaths(b.rng, rate, v.Get())
	if dead <= 0 {
		return
	}
	remaining := v.Get() - dead
	if remaining < 0 {
		remaining = 0
	}
	v.Set(remaining)
}

// EndRound runs the propagation phase. A quarantined block counts down its
// window and sends nothing; everyone else broadcasts all four counters.
func (b *Block) EndRound() {
	if b.quarantined {
		b.quarantineTicks++
		if b.quarantineTicks >= b.quarantinePeriod {
			b.quarantined = false
		}
		return
	}

	b.healthy.Broadcast(b.ratios.Healthy, 0)

	offset := 0.0
	if b.profile.Kind == KindHospital {
		// Hospitals only discharge infected to high-priority neighbors.
		offset = b.ratios.HospitalOffset
	}
	b.infected.Broadcast(b.ratios.Infected, offset)

	b.incubating.Broadcast(b.ratios.Incubating, 0)
	b.material.Broadcast(b.ratios.Material, 0)
}

// Commit applies all buffered writes. Must only run after every block has
// finished EndRound. Counts are clamped non-negative and material to the
// resource floor after the commit.
func (b *Block) Commit() {
	b.healthy.Commit()
	b.infected.Commit()
	b.incubating.Commit()
	b.material.Commit()

	clampFloor(b.healthy, 0)
	clampFloor(b.infected, 0)
	clampFloor(b.incubating, 0)
	clampFloor(b.material, b.profile.ResourceFloor)
}

func clampFloor(v *Value, floor int) {
	if v.Get() < floor {
		v.Set(floor)
	}
}

// StartWorking sets the working flag. Only factories can work; the result
// reports whether the order applied.
func (b *Block) StartWorking() bool {
	if b.profile.Kind != KindFactory {
		return false
	}
	b.working = true
	return true
}

// StopWorking clears the working flag. Always succeeds.
func (b *Block) StopWorking() {
	b.working = false
}

// Taxed collects floor(material * taxRate) immediately (not buffered) and
// returns the amount taken.
func (b *Block) Taxed() int {
	amount := int(math.Floor(float64(b.material.Get()) * b.profile.TaxRate))
	b.material.Set(b.material.Get() - amount)
	return amount
}

// Quarantined isolates the block for period rounds of propagation.
func (b *Block) Quarantined(period int) {
	b.quarantined = true
	b.quarantineTicks = 0
	b.quarantinePeriod = period
}

// Aided zeroes the population counters immediately: a full rescue event.
func (b *Block) Aided() {
	b.healthy.Set(0)
	b.infected.Set(0)
	b.incubating.Set(0)
}

// Read-only queries for the presentation layer.

func (b *Block) Kind() Kind { return b.profile.Kind }

func (b *Block) Profile() *Profile { return b.profile }

func (b *Block) Healthy() int { return b.healthy.Get() }

func (b *Block) Infected() int { return b.infected.Get() }

func (b *Block) Incubating() int { return b.incubating.Get() }

func (b *Block) Material() int { return b.material.Get() }

func (b *Block) IsWorking() bool { return b.working }

func (b *Block) IsQuarantined() bool { return b.quarantined }

// Counters exposes the four counters for arena-level wiring and tests.
func (b *Block) Counters() (healthy, infected, incubating, material *Value) {
	return b.healthy, b.infected, b.incubating, b.material
}
