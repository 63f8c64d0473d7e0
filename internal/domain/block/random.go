package block

import "math/rand"

// SampleDeaths draws, for each of n heads, whether it dies this round at
// probability rate, and returns the body count. rate is clamped to [0, 1].
// A nil source means no randomness is available and nobody dies.
func SampleDeaths(r *rand.Rand, rate float64, n int) int {
	if r == nil || n <= 0 || rate < epsilon {
		return 0
	}
	if rate >= 1 {
		return n
	}
	count := 0
	for i := 0; i < n; i++ {
		if r.Float64() < rate {
			count++
		}
	}
	return count
}
