package block

import "testing"

func TestTimerFullCycle(t *testing.T) {
	stages := []Stage{
		{Reproduction: 1.0, DeathRate: 0.0},
		{Reproduction: 2.0, DeathRate: 0.5},
		{Reproduction: 0.5, DeathRate: 1.0},
	}
	period := 4
	timer := NewStageTimer(period, stages)

	// A wrap must occur exactly every period*len(stages) ticks.
	wraps := 0
	total := period * len(stages) * 3
	for i := 1; i <= total; i++ {
		got := timer.Tick()
		if got == 1 {
			wraps++
			if i%(period*len(stages)) != 0 {
				t.Errorf("Unexpected wrap at tick %d", i)
			}
		}
	}
	if wraps != 3 {
		t.Errorf("Expected 3 wraps over %d ticks, got %d", total, wraps)
	}
}

func TestTimerStageAccessors(t *testing.T) {
	stages := []Stage{
		{Reproduction: 1.5, DeathRate: 0.1},
		{Reproduction: 3.0, DeathRate: 0.9},
	}
	timer := NewStageTimer(2, stages)

	if timer.Reproduction() != 1.5 || timer.DeathRate() != 0.1 {
		t.Errorf("Expected first-stage rates, got R=%v DR=%v", timer.Reproduction(), timer.DeathRate())
	}

	timer.Tick()
	timer.Tick() // advances to stage 1
	if timer.StageIndex() != 1 {
		t.Errorf("Expected stage index 1 after one period, got %d", timer.StageIndex())
	}
	if timer.Reproduction() != 3.0 || timer.DeathRate() != 0.9 {
		t.Errorf("Expected second-stage rates, got R=%v DR=%v", timer.Reproduction(), timer.DeathRate())
	}

	timer.Reset()
	if timer.StageIndex() != 0 {
		t.Errorf("Expected stage index 0 after Reset, got %d", timer.StageIndex())
	}
}

func TestEmptyTimerIsNoop(t *testing.T) {
	timer := NewStageTimer(5, nil)

	for i := 0; i < 50; i++ {
		if timer.Tick() != 0 {
			t.Errorf("Expected empty timer to never report a wrap")
		}
	}
	if timer.Reproduction() != 0 || timer.DeathRate() != 0 {
		t.Errorf("Expected empty timer rates to be zero")
	}
}
