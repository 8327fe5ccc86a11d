package app

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"godesign/domain/core"
	"godesign/domain/population"
	"godesign/domain/table"
	"godesign/internal"
	"godesign/ports"
)

// DefaultGeneratedRows is the row count of a draw from a generator-only
// population, which has no table to take a size from.
const DefaultGeneratedRows = 100

// Model is the declared world an experiment draws from: a population and
// the potential outcome formulas applied on top of it. A Model is not safe
// for concurrent use.
type Model struct {
	population *population.Population
	outcomes   population.Outcomes

	evaluator ports.FormulaEvaluator
	rng       *rand.Rand
	logger    *internal.Logger
}

// ModelOption configures a Model at construction.
type ModelOption func(*Model) error

// WithPopulation declares the population at construction.
func WithPopulation(v any) ModelOption {
	return func(m *Model) error { return m.DeclarePopulation(v) }
}

// WithPotentialOutcomes declares the outcome formulas at construction.
func WithPotentialOutcomes(v any) ModelOption {
	return func(m *Model) error { return m.DeclarePotentialOutcomes(v) }
}

// WithRand sets the row sampler's random source.
func WithRand(r *rand.Rand) ModelOption {
	return func(m *Model) error {
		m.rng = r
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *internal.Logger) ModelOption {
	return func(m *Model) error {
		m.logger = l
		return nil
	}
}

// NewModel creates a model. Population and outcomes stay undeclared unless
// the matching options are given.
func NewModel(evaluator ports.FormulaEvaluator, opts ...ModelOption) (*Model, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("formula evaluator cannot be nil")
	}
	m := &Model{
		evaluator: evaluator,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:    internal.DefaultLogger.With("model"),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// DeclarePopulation validates v and replaces the declared population. On
// error the previous declaration is kept.
func (m *Model) DeclarePopulation(v any) error {
	p, err := population.Parse(v)
	if err != nil {
		return err
	}
	m.population = &p
	m.logger.Debug("declared %s population with variables %v", p.Kind(), p.Variables())
	return nil
}

// DeclarePotentialOutcomes validates v and replaces the declared formulas.
// On error the previous declaration is kept.
func (m *Model) DeclarePotentialOutcomes(v any) error {
	o, err := population.ParseOutcomes(v)
	if err != nil {
		return err
	}
	m.outcomes = o
	m.logger.Debug("declared %d potential outcome formulas", len(o))
	return nil
}

// Population returns the declared population, or nil.
func (m *Model) Population() *population.Population {
	return m.population
}

// PotentialOutcomes returns the declared formulas, or nil.
func (m *Model) PotentialOutcomes() population.Outcomes {
	return m.outcomes
}

// DrawRequest controls subsampling of a draw. N is applied first, then Frac
// of the N-row result.
type DrawRequest struct {
	N    *int
	Frac *float64
}

// DrawN is shorthand for a request of exactly n rows.
func DrawN(n int) DrawRequest {
	return DrawRequest{N: &n}
}

// DrawFrac is shorthand for a request of a fraction of rows.
func DrawFrac(frac float64) DrawRequest {
	return DrawRequest{Frac: &frac}
}

// Validate rejects negative n and fractions outside [0, 1].
func (r DrawRequest) Validate() error {
	if r.N != nil && *r.N < 0 {
		return core.NewDrawRequestError(fmt.Sprintf("n must be non-negative, got %d", *r.N))
	}
	if r.Frac != nil && (*r.Frac < 0 || *r.Frac > 1 || math.IsNaN(*r.Frac)) {
		return core.NewDrawRequestError(fmt.Sprintf("frac must be in [0, 1], got %g", *r.Frac))
	}
	return nil
}

// DrawData materializes one synthetic dataset: the baseline columns, then
// every outcome formula in order, then the optional subsample. Generator and
// evaluator errors are returned unchanged.
func (m *Model) DrawData(ctx context.Context, req DrawRequest) (*table.Table, error) {
	if m.population == nil {
		return nil, core.ErrPopulationNotDeclared
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out, err := m.baseline()
	if err != nil {
		return nil, err
	}

	for _, formula := range m.outcomes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err = m.evaluator.Apply(ctx, out, formula)
		if err != nil {
			return nil, err
		}
	}

	out, err = m.sample(out, req)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("drew %d rows x %d columns", out.NRows(), out.NCols())
	return out, nil
}

func (m *Model) baseline() (*table.Table, error) {
	p := m.population
	switch p.Kind() {
	case population.KindGeneratorsOnly:
		out := table.New(table.RangeIndex(DefaultGeneratedRows))
		for _, g := range p.Generators().Generators() {
			col, err := GenerateVar(g, DefaultGeneratedRows)
			if err != nil {
				return nil, err
			}
			if err := out.Concat(col); err != nil {
				return nil, err
			}
		}
		return out, nil

	case population.KindTableOnly:
		return p.Table().Copy(), nil

	case population.KindCombined:
		out := p.Table().Copy()
		index := out.Index()
		cols := make([]table.Column, 0, p.Generators().Len())
		for _, g := range p.Generators().Generators() {
			col, err := GenerateVar(g, out.NRows(), WithIndex(index))
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
		}
		if err := out.Concat(cols...); err != nil {
			return nil, err
		}
		return out, nil

	default:
		// Only a zero Population lands here; Parse never produces one.
		return nil, core.NewPopulationTypeError(*p)
	}
}

// sample applies n and then frac. Fractions round half to even.
func (m *Model) sample(t *table.Table, req DrawRequest) (*table.Table, error) {
	if req.N == nil && req.Frac == nil {
		return t, nil
	}
	var err error
	if req.N != nil {
		if *req.N > t.NRows() {
			return nil, core.NewDrawRequestError(fmt.Sprintf(
				"cannot take a sample of %d rows larger than the %d-row population without replacement", *req.N, t.NRows()))
		}
		if t, err = t.Sample(m.rng, *req.N); err != nil {
			return nil, err
		}
	}
	if req.Frac != nil {
		n := int(math.RoundToEven(*req.Frac * float64(t.NRows())))
		if t, err = t.Sample(m.rng, n); err != nil {
			return nil, err
		}
	}
	return t, nil
}
