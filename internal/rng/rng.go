// Package rng provides the explicit-state linear congruential generator
// that is the sole source of randomness in the simulation.
package rng

// Knuth MMIX parameters; the modulus 2^64 is implicit in uint64 overflow.
const (
	multiplier uint64 = 6364136223846793005
	increment  uint64 = 1442695040888963407
)

// State is a single LCG state word. It is passed by value and returned
// alongside every draw, so the caller controls the consumption order
// exactly. The zero value behaves like seed 0.
type State uint64

// New folds seed into the non-negative residue class mod 2^64.
func New(seed int64) State {
	return State(uint64(seed))
}

// Next advances the state one step of the recurrence.
func (s State) Next() State {
	return State(uint64(s)*multiplier + increment)
}

// Uniform advances the state and returns the draw together with the new
// state. The quotient uses the full 64-bit word, so any implementation of
// the same recurrence and the same division agrees bit for bit.
func (s State) Uniform() (float64, State) {
	next := s.Next()
	return float64(uint64(next)) * 0x1p-64, next
}
