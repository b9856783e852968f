package filter

import "math/rand/v2"

// Noise is the random source of the vintage grain. Float64 returns a value in [0,1).
// *rand.Rand satisfies it.
type Noise interface {
	Float64() float64
}

// NewNoise returns a deterministic noise source for seed.
func NewNoise(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
