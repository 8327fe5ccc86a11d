package ports

import (
	"context"

	"godesign/domain/population"
)

// GeneratorFactory turns declarative variable specs into generators that
// draw from rng.
type GeneratorFactory interface {
	BuildSet(ctx context.Context, specs []population.VariableSpec, rng RNGPort) (population.GeneratorSet, error)
}
