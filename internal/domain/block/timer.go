package block

// Stage holds the epidemiological multipliers for one step of a disease
// generation. They scale the owning block's profile base rates.
type Stage struct {
	Reproduction float64 `yaml:"reproduction"`
	DeathRate    float64 `yaml:"death_rate"`
}

// StageTimer advances through an ordered list of stages, one step every
// period ticks. A timer configured with no stages is a permanent no-op.
type StageTimer struct {
	period     int
	elapsed    int
	stageIndex int
	stages     []Stage
}

// NewStageTimer creates a timer over the given stages. The stage slice is
// not copied; callers hand over ownership.
func NewStageTimer(period int, stages []Stage) *StageTimer {
	return &StageTimer{period: period, stages: stages}
}

// Tick advances the timer by one round. Returns 1 when the stage index
// wraps back to 0 (a full generation completed), else 0.
func (t *StageTimer) Tick() int {
	if len(t.stages) == 0 {
		return 0
	}
	t.elapsed++
	if t.elapsed >= t.period {
		t.elapsed = 0
		t.stageIndex++
		if t.stageIndex >= len(t.stages) {
			t.stageIndex = 0
			return 1
		}
	}
	return 0
}

// Reproduction returns the current stage's reproduction multiplier.
// Zero when the timer has no stages.
func (t *StageTimer) Reproduction() float64 {
	if len(t.stages) == 0 {
		return 0
	}
	return t.stages[t.stageIndex].Reproduction
}

// DeathRate returns the current stage's death-rate multiplier.
func (t *StageTimer) DeathRate() float64 {
	if len(t.stages) == 0 {
		return 0
	}
	return t.stages[t.stageIndex].DeathRate
}

// StageIndex returns the current position in the stage cycle.
func (t *StageTimer) StageIndex() int {
	return t.stageIndex
}

// Reset rewinds the timer to the first stage.
func (t *StageTimer) Reset() {
	t.elapsed = 0
	t.stageIndex = 0
}
