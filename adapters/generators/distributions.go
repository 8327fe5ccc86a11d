// Package generators turns declarative distribution specs into population
// generators backed by gonum's distuv distributions.
package generators

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"godesign/domain/population"
	apperrors "godesign/internal/errors"
	"godesign/ports"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"
)

// Spec declares one generated variable.
type Spec = population.VariableSpec

// builder validates a spec and returns a per-row sampler.
type builder func(spec Spec, src *rand.Rand) (population.GeneratorFunc, error)

var builders = map[string]builder{
	"normal":      buildNormal,
	"uniform":     buildUniform,
	"bernoulli":   buildBernoulli,
	"binomial":    buildBinomial,
	"poisson":     buildPoisson,
	"exponential": buildExponential,
	"lognormal":   buildLogNormal,
	"categorical": buildCategorical,
	"constant":    buildConstant,
	"sequence":    buildSequence,
	"uuid":        buildUUID,
}

// Distributions lists the supported distribution names.
func Distributions() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the generator for one spec, drawing from src.
func Build(spec Spec, src *rand.Rand) (population.Generator, error) {
	b, ok := builders[strings.ToLower(strings.TrimSpace(spec.Distribution))]
	if !ok {
		return population.Generator{}, apperrors.ValidationError(fmt.Sprintf(
			"variable %q: unknown distribution %q (supported: %s)",
			spec.Name, spec.Distribution, strings.Join(Distributions(), ", ")))
	}
	fn, err := b(spec, src)
	if err != nil {
		return population.Generator{}, apperrors.Wrapf(err, "variable %q", spec.Name)
	}
	return population.Generator{Name: spec.Name, Fn: fn}, nil
}

// Factory is the ports.GeneratorFactory backed by this package.
type Factory struct{}

var _ ports.GeneratorFactory = Factory{}

// BuildSet implements ports.GeneratorFactory.
func (Factory) BuildSet(ctx context.Context, specs []population.VariableSpec, rng ports.RNGPort) (population.GeneratorSet, error) {
	return BuildSet(ctx, specs, rng)
}

// BuildSet creates a generator set; each variable gets its own named stream.
func BuildSet(ctx context.Context, specs []Spec, rng ports.RNGPort) (population.GeneratorSet, error) {
	gens := make([]population.Generator, 0, len(specs))
	for _, spec := range specs {
		g, err := Build(spec, rng.Stream(ctx, "generator/"+spec.Name))
		if err != nil {
			return population.GeneratorSet{}, err
		}
		gens = append(gens, g)
	}
	return population.NewGeneratorSet(gens...)
}

func param(spec Spec, name string, def float64) float64 {
	if v, ok := spec.Params[name]; ok {
		return v
	}
	return def
}

func requireParam(spec Spec, name string) (float64, error) {
	v, ok := spec.Params[name]
	if !ok {
		return 0, apperrors.ValidationError(fmt.Sprintf("%s requires parameter %q", spec.Distribution, name))
	}
	return v, nil
}

func invalid(format string, args ...any) error {
	return apperrors.Newf(apperrors.CodeValidationError, format, args...)
}

func sampler(d interface{ Rand() float64 }) population.GeneratorFunc {
	return func() (any, error) { return d.Rand(), nil }
}

func buildNormal(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	sd := param(spec, "sd", 1)
	if sd <= 0 {
		return nil, invalid("normal sd must be positive, got %g", sd)
	}
	return sampler(distuv.Normal{Mu: param(spec, "mean", 0), Sigma: sd, Src: src}), nil
}

func buildUniform(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	lo, hi := param(spec, "min", 0), param(spec, "max", 1)
	if !(lo < hi) {
		return nil, invalid("uniform requires min < max, got [%g, %g]", lo, hi)
	}
	return sampler(distuv.Uniform{Min: lo, Max: hi, Src: src}), nil
}

func buildBernoulli(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	p, err := requireParam(spec, "p")
	if err != nil {
		return nil, err
	}
	if p < 0 || p > 1 {
		return nil, invalid("bernoulli p must be in [0, 1], got %g", p)
	}
	return sampler(distuv.Bernoulli{P: p, Src: src}), nil
}

func buildBinomial(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	n, err := requireParam(spec, "n")
	if err != nil {
		return nil, err
	}
	p, err := requireParam(spec, "p")
	if err != nil {
		return nil, err
	}
	if n <= 0 || n != math.Trunc(n) {
		return nil, invalid("binomial n must be a positive integer, got %g", n)
	}
	if p < 0 || p > 1 {
		return nil, invalid("binomial p must be in [0, 1], got %g", p)
	}
	return sampler(distuv.Binomial{N: n, P: p, Src: src}), nil
}

func buildPoisson(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	lambda, err := requireParam(spec, "lambda")
	if err != nil {
		return nil, err
	}
	if lambda <= 0 {
		return nil, invalid("poisson lambda must be positive, got %g", lambda)
	}
	return sampler(distuv.Poisson{Lambda: lambda, Src: src}), nil
}

func buildExponential(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	rate := param(spec, "rate", 1)
	if rate <= 0 {
		return nil, invalid("exponential rate must be positive, got %g", rate)
	}
	return sampler(distuv.Exponential{Rate: rate, Src: src}), nil
}

func buildLogNormal(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	sigma := param(spec, "sigma", 1)
	if sigma <= 0 {
		return nil, invalid("lognormal sigma must be positive, got %g", sigma)
	}
	return sampler(distuv.LogNormal{Mu: param(spec, "mu", 0), Sigma: sigma, Src: src}), nil
}

func buildCategorical(spec Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	if len(spec.Categories) == 0 {
		return nil, invalid("categorical requires at least one category")
	}
	weights := spec.Weights
	if len(weights) == 0 {
		weights = make([]float64, len(spec.Categories))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(spec.Categories) {
		return nil, invalid("categorical has %d categories but %d weights", len(spec.Categories), len(weights))
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, invalid("categorical weights must be non-negative, got %g", w)
		}
		total += w
	}
	if total <= 0 {
		return nil, invalid("categorical weights must not all be zero")
	}

	dist := distuv.NewCategorical(weights, src)
	categories := append([]string(nil), spec.Categories...)
	return func() (any, error) {
		return categories[int(dist.Rand())], nil
	}, nil
}

func buildConstant(spec Spec, _ *rand.Rand) (population.GeneratorFunc, error) {
	if spec.Value == nil {
		return nil, invalid("constant requires a value")
	}
	v := normalizeValue(spec.Value)
	return func() (any, error) { return v, nil }, nil
}

// buildSequence counts up across calls, including across draws.
func buildSequence(spec Spec, _ *rand.Rand) (population.GeneratorFunc, error) {
	next, step := param(spec, "start", 0), param(spec, "step", 1)
	if step == 0 {
		return nil, invalid("sequence step must be non-zero")
	}
	return func() (any, error) {
		v := next
		next += step
		return v, nil
	}, nil
}

func buildUUID(_ Spec, src *rand.Rand) (population.GeneratorFunc, error) {
	reader := byteReader{r: src}
	return func() (any, error) {
		id, err := uuid.NewRandomFromReader(reader)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	}, nil
}

// normalizeValue maps decoded YAML/JSON scalars onto table cell types.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
