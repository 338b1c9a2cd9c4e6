package math32

import (
	"golang.org/x/exp/rand"
)

// NewRand returns a deterministic generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Range returns a uniform float32 in [lo, hi).
func Range(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}

// RandomUnitVector samples a unit vector from polar angle alpha in [0, π)
// and azimuth theta in [0, 2π).
func RandomUnitVector(rng *rand.Rand) Vector3 {
	alpha := Range(rng, 0, Pi)
	theta := Range(rng, 0, 2*Pi)
	return Vector3{
		Cos(theta) * Sin(alpha),
		Sin(theta) * Sin(alpha),
		Cos(alpha),
	}
}
