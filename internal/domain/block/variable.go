// Package block defines the core simulation domain: buffered counters,
// stage timers, block-type profiles and the per-round settlement rules.
// This package is PURE and must NOT import any infrastructure packages.
package block

// epsilon below which ratios and weights are treated as zero.
const epsilon = 1e-6

// Number covers the scalar types a Buffered value can hold.
type Number interface {
	~int | ~int64 | ~float64
}

// Buffered is a scalar with a committed value and a staged buffer.
// Reads never see uncommitted writes; Commit applies the buffer atomically.
type Buffered[T Number] struct {
	committed T
	buffered  T
	dirty     bool
}

// NewBuffered creates a buffered scalar with an initial committed value.
func NewBuffered[T Number](initial T) *Buffered[T] {
	return &Buffered[T]{committed: initial, buffered: initial}
}

// Get returns the committed value.
func (b *Buffered[T]) Get() T {
	return b.committed
}

// Set writes the committed value directly, resetting the buffer.
func (b *Buffered[T]) Set(v T) {
	b.committed = v
	b.buffered = v
	b.dirty = false
}

// SetBuffered stages a pending value without affecting Get.
func (b *Buffered[T]) SetBuffered(v T) {
	b.buffered = v
	b.dirty = true
}

// AddBuffered stages buffered += delta.
func (b *Buffered[T]) AddBuffered(delta T) {
	b.buffered += delta
	b.dirty = true
}

// NeedsCommit reports whether a staged write is pending.
func (b *Buffered[T]) NeedsCommit() bool {
	return b.dirty
}

// Commit applies the buffer to the committed value. No-op when not dirty.
func (b *Buffered[T]) Commit() {
	if !b.dirty {
		return
	}
	b.committed = b.buffered
	b.dirty = false
}

// Value is an integer Buffered counter that can give away a fraction of
// itself to linked downstream counters, weighted by priority.
type Value struct {
	Buffered[int]
	priority float64
	links    []*Value
}

// NewValue creates a counter with an initial committed count and a priority
// used by upstream broadcasters for eligibility and weighting.
func NewValue(initial int, priority float64) *Value {
	v := &Value{priority: priority}
	v.Set(initial)
	return v
}

// Priority returns the eligibility/weighting priority of this counter.
func (v *Value) Priority() float64 {
	return v.priority
}

// Link registers target as a downstream counter. Targets are shared
// references into sibling blocks; insertion order is the broadcast order.
func (v *Value) Link(target *Value) {
	v.links = append(v.links, target)
}

// Broadcast stages the transfer of ratio * committed to downstream links
// whose priority is at least offset, split proportionally to priority+1.
// Allocations floor at each step; the running remainder caps the total so
// the source is never debited more than it gives away.
func (v *Value) Broadcast(ratio, offset float64) {
	eligible := make([]*Value, 0, len(v.links))
	weightSum := 0.0
	for _, l := range v.links {
		if l.priority >= offset {
			eligible = append(eligible, l)
			weightSum += l.priority + 1
		}
	}
	if len(eligible) == 0 || weightSum < epsilon {
		return
	}
	if ratio < epsilon {
		ratio = 0
	}

	delta := int(float64(v.Get()) * ratio)
	if delta > v.Get() {
		delta = v.Get()
	}

	outSum := delta
	for _, l := range eligible {
		alloc := int(float64(delta) * (l.priority + 1) / weightSum)
		if alloc > outSum {
			alloc = outSum
		}
		l.AddBuffered(alloc)
		outSum -= alloc
	}

	// outSum holds the rounding residue that stays home.
	v.AddBuffered(-(delta - outSum))
}
