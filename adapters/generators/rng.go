package generators

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"godesign/ports"
)

// RNG derives independent named streams from one base seed.
type RNG struct {
	seed int64
}

var _ ports.RNGPort = (*RNG)(nil)

// NewRNG creates a deterministic stream factory.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed}
}

// NewRandomRNG picks a fresh base seed from the runtime's global source.
func NewRandomRNG() *RNG {
	return &RNG{seed: rand.Int64()}
}

// Stream returns a PCG generator keyed by (seed, name).
func (r *RNG) Stream(_ context.Context, name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewPCG(uint64(r.seed), h.Sum64()))
}

// Seed returns the base seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Derive returns a child factory for replicate i. Replicates of the same
// base seed never share streams.
func (r *RNG) Derive(i int) ports.RNGPort {
	s := r.Stream(context.Background(), "replicate")
	var seed int64
	for j := 0; j <= i; j++ {
		seed = s.Int64()
	}
	return &RNG{seed: seed}
}

// byteReader exposes a stream as an io.Reader for uuid generation.
type byteReader struct {
	r *rand.Rand
}

func (b byteReader) Read(p []byte) (int, error) {
	for i := 0; i < len(p); i += 8 {
		v := b.r.Uint64()
		for j := 0; j < 8 && i+j < len(p); j++ {
			p[i+j] = byte(v >> (8 * j))
		}
	}
	return len(p), nil
}
