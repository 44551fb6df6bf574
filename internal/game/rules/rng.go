package rules

import "math/rand"

// RNG wraps math/rand.Rand with a seed and a call position so a match can
// be replayed deterministically.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Intn returns a value in [0, n).
func (r *RNG) Intn(n int) int {
	r.pos++
	return r.src.Intn(n)
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	r.pos++
	return r.src.Float64()
}

// Chance returns true with probability p.
func (r *RNG) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return r.Float64() < p
}

// Shuffle permutes n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.pos++
	r.src.Shuffle(n, swap)
}

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 { return r.pos }
