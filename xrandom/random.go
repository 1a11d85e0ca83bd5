// Package xrandom provides a seeded, instance-local random source.
//
// The upstream convenience function this is adapted from (a package-level
// Int(min, max) backed by math/rand/v2's global source) is not
// reproducible across runs — Fast Label Propagation's determinism
// invariant (identical seed + identical input => identical community
// assignments) requires a source that is both seeded and owned by the
// caller, not shared global state.
package xrandom

import "math/rand"

// Source wraps a seeded *rand.Rand with the handful of operations the
// community detector needs: bounded integers and a Fisher-Yates shuffle.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically from seed. The same seed
// always produces the same sequence of draws, on any platform.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a pseudo-random int in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.r.Intn(n)
}

// Shuffle randomizes the order of a slice of length n in place, using the
// provided swap function, following math/rand's Fisher-Yates contract.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

// Pick returns a uniformly random element from a non-empty slice. Used to
// break ties between labels with equal weighted support during label
// propagation.
func Pick[T any](s *Source, items []T) T {
	return items[s.Intn(len(items))]
}
