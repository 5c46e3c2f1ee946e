// Package rng provides a small deterministic pseudo-random generator.
//
// Every zone-partitioning call builds its own generator from the caller's
// seed, so identical inputs always produce identical layouts.
package rng

const (
	modulus    = 2147483647
	multiplier = 16807
)

// SeededRandom is a Park-Miller linear congruential generator.
type SeededRandom struct {
	state int64
}

// New creates a generator whose state is seed normalized into (0, modulus).
func New(seed int64) *SeededRandom {
	s := seed % modulus
	if s <= 0 {
		s += modulus - 1
	}
	return &SeededRandom{state: s}
}

// Next returns the next value in [0, 1).
func (r *SeededRandom) Next() float64 {
	r.state = r.state * multiplier % modulus
	return float64(r.state-1) / float64(modulus-1)
}

// Compare returns a value in [-0.5, 0.5), suitable as a shuffle comparator.
func (r *SeededRandom) Compare() float64 {
	return r.Next() - 0.5
}

// Intn returns an integer in [0, n). Returns 0 when n <= 0.
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(r.Next() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Shuffle permutes n elements with Fisher-Yates, calling swap for each exchange.
func (r *SeededRandom) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
