package block

import "testing"

func TestCommitAtomicity(t *testing.T) {
	v := NewBuffered(10)

	v.SetBuffered(25)
	if v.Get() != 10 {
		t.Errorf("Expected committed value 10 before Commit, got %d", v.Get())
	}
	if !v.NeedsCommit() {
		t.Errorf("Expected NeedsCommit true after SetBuffered")
	}

	v.Commit()
	if v.Get() != 25 {
		t.Errorf("Expected committed value 25 after Commit, got %d", v.Get())
	}
	if v.NeedsCommit() {
		t.Errorf("Expected NeedsCommit false after Commit")
	}

	// Commit is idempotent when nothing is staged.
	v.Commit()
	if v.Get() != 25 {
		t.Errorf("Expected repeated Commit to be a no-op, got %d", v.Get())
	}
}

func TestDirectSetResetsBuffer(t *testing.T) {
	v := NewBuffered(5)
	v.AddBuffered(7)
	v.Set(100)

	if v.NeedsCommit() {
		t.Errorf("Expected direct Set to clear the dirty flag")
	}

	v.Commit()
	if v.Get() != 100 {
		t.Errorf("Expected stale buffer to be discarded by Set, got %d", v.Get())
	}
}

func TestAddBufferedAccumulates(t *testing.T) {
	v := NewBuffered(3)
	v.AddBuffered(4)
	v.AddBuffered(-2)
	v.Commit()

	if v.Get() != 5 {
		t.Errorf("Expected 3+4-2=5 after Commit, got %d", v.Get())
	}
}

func TestBroadcastConservation(t *testing.T) {
	// Whatever the source gives away must equal what the links receive,
	// for every ratio and link-count combination.
	ratios := []float64{0.0, 0.1, 0.25, 0.5, 0.9, 1.0}
	linkCounts := []int{1, 2, 3, 5}

	for _, ratio := range ratios {
		for _, n := range linkCounts {
			src := NewValue(997, 0)
			links := make([]*Value, n)
			for i := range links {
				links[i] = NewValue(0, float64(i))
				src.Link(links[i])
			}

			src.Broadcast(ratio, 0)
			src.Commit()

			received := 0
			for _, l := range links {
				l.Commit()
				received += l.Get()
			}
			given := 997 - src.Get()

			if given != received {
				t.Errorf("ratio=%v links=%d: source gave %d but links received %d", ratio, n, given, received)
			}
			if given > int(float64(997)*ratio) {
				t.Errorf("ratio=%v links=%d: gave %d, more than floor(997*ratio)", ratio, n, given)
			}
		}
	}
}

func TestBroadcastOffsetFiltersLinks(t *testing.T) {
	src := NewValue(100, 0)
	low := NewValue(0, 0)
	high := NewValue(0, 3)
	src.Link(low)
	src.Link(high)

	src.Broadcast(0.9, 2.0)
	src.Commit()
	low.Commit()
	high.Commit()

	if low.Get() != 0 {
		t.Errorf("Expected low-priority link to receive nothing under offset 2.0, got %d", low.Get())
	}
	if high.Get() != 90 {
		t.Errorf("Expected high-priority link to receive 90, got %d", high.Get())
	}
	if src.Get() != 10 {
		t.Errorf("Expected source left with 10, got %d", src.Get())
	}
}

func TestBroadcastNoLinksIsNoop(t *testing.T) {
	src := NewValue(50, 0)
	src.Broadcast(0.5, 0)

	if src.NeedsCommit() {
		t.Errorf("Expected broadcast with no links to stage nothing")
	}
	src.Commit()
	if src.Get() != 50 {
		t.Errorf("Expected value unchanged with no links, got %d", src.Get())
	}
}

func TestBroadcastTinyRatioTreatedAsZero(t *testing.T) {
	src := NewValue(1000, 0)
	dst := NewValue(0, 0)
	src.Link(dst)

	src.Broadcast(1e-9, 0)
	src.Commit()
	dst.Commit()

	if src.Get() != 1000 || dst.Get() != 0 {
		t.Errorf("Expected sub-epsilon ratio to move nothing, got src=%d dst=%d", src.Get(), dst.Get())
	}
}

func TestBroadcastWeighting(t *testing.T) {
	// Two links with priorities 0 and 1: weights 1 and 2 out of 3.
	src := NewValue(300, 0)
	a := NewValue(0, 0)
	b := NewValue(0, 1)
	src.Link(a)
	src.Link(b)

	src.Broadcast(1.0, 0)
	src.Commit()
	a.Commit()
	b.Commit()

	if a.Get() != 100 {
		t.Errorf("Expected weight-1 link to receive 100, got %d", a.Get())
	}
	if b.Get() != 200 {
		t.Errorf("Expected weight-2 link to receive 200, got %d", b.Get())
	}
	if src.Get() != 0 {
		t.Errorf("Expected source drained at ratio 1.0, got %d", src.Get())
	}
}
