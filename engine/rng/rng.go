// Package rng provides a deterministic random source for damage variance
// and weighted action selection.
package rng

import "math/rand"

// RNG wraps math/rand.Rand with a fixed seed for reproducible combat.
type RNG struct {
	seed int64
	src  *rand.Rand
}

// New creates a deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{seed: seed, src: rand.New(rand.NewSource(seed))}
}

// Roll returns a random integer in [1, sides]. Sides below 1 roll 1.
func (r *RNG) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	return r.src.Intn(sides) + 1
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all non-negative values and a positive sum.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.src.Intn(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed this RNG was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}
