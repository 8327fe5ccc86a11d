package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for reproducible draws
type RNGPort interface {
	// Stream returns a deterministic generator for a named purpose (a
	// generator column, the row sampler, a replicate). The same seed and
	// name always yield the same sequence.
	Stream(ctx context.Context, name string) *rand.Rand

	// Seed returns the base seed the streams derive from.
	Seed() int64

	// Derive returns the factory for replicate i, independent of every
	// other replicate of the same seed.
	Derive(i int) RNGPort
}
