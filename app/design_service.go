package app

import (
	"context"
	"fmt"
	"time"

	"godesign/domain/core"
	"godesign/domain/table"
	"godesign/internal"
	"godesign/internal/design"
	apperrors "godesign/internal/errors"
	"godesign/internal/profiling"
	"godesign/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers bounds concurrent replicate draws when none is configured.
const DefaultWorkers = 4

// DefaultMaxReplicates caps the replicates of one Draw call when none is
// configured.
const DefaultMaxReplicates = 1000

// RNGFactory creates the stream factory for a base seed.
type RNGFactory func(seed int64) ports.RNGPort

// DesignService turns design documents into models and runs draws against
// them, optionally archiving the results.
type DesignService struct {
	evaluator  ports.FormulaEvaluator
	generators ports.GeneratorFactory
	reader     ports.TableReader
	repo       ports.DrawRepository
	newRNG     RNGFactory
	randomSeed func() int64
	profiler   *profiling.DataProfiler

	workers       int
	maxReplicates int
	defaultSeed   *int64
	logger      *internal.Logger
}

// DesignServiceConfig holds the optional settings of a DesignService.
type DesignServiceConfig struct {
	Repository    ports.DrawRepository
	Workers       int
	MaxReplicates int
	DefaultSeed   *int64
	RandomSeed    func() int64
	Logger        *internal.Logger
}

// NewDesignService creates a design service. Repository may be nil, in
// which case draws cannot be stored or fetched.
func NewDesignService(
	evaluator ports.FormulaEvaluator,
	generators ports.GeneratorFactory,
	reader ports.TableReader,
	newRNG RNGFactory,
	cfg DesignServiceConfig,
) *DesignService {
	s := &DesignService{
		evaluator:     evaluator,
		generators:    generators,
		reader:        reader,
		repo:          cfg.Repository,
		newRNG:        newRNG,
		randomSeed:    cfg.RandomSeed,
		profiler:      profiling.NewDataProfiler(),
		workers:       cfg.Workers,
		maxReplicates: cfg.MaxReplicates,
		defaultSeed:   cfg.DefaultSeed,
		logger:        cfg.Logger,
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	if s.maxReplicates <= 0 {
		s.maxReplicates = DefaultMaxReplicates
	}
	if s.logger == nil {
		s.logger = internal.DefaultLogger.With("designs")
	}
	if s.randomSeed == nil {
		s.randomSeed = func() int64 { return time.Now().UnixNano() }
	}
	return s
}

// DrawOptions overrides a design's defaults for one call.
type DrawOptions struct {
	// Request replaces the design's draw section when set.
	Request *DrawRequest
	Seed    *int64
	// Replicates is the number of independent draws; zero means one.
	Replicates int
	Store      bool
}

// BuildModel declares the design's population and outcomes on a new model
// whose generators and sampler draw from rng.
func (s *DesignService) BuildModel(ctx context.Context, d *design.Design, rng ports.RNGPort) (*Model, error) {
	base, err := s.baseTable(ctx, d)
	if err != nil {
		return nil, err
	}
	return s.buildModel(ctx, d, base, rng)
}

func (s *DesignService) baseTable(ctx context.Context, d *design.Design) (*table.Table, error) {
	if d.Population.Table == "" {
		return nil, nil
	}
	if s.reader == nil {
		return nil, apperrors.ConfigInvalid("design names a population table but no table reader is configured")
	}
	return s.reader.ReadTable(ctx, d.TablePath())
}

func (s *DesignService) buildModel(ctx context.Context, d *design.Design, base *table.Table, rng ports.RNGPort) (*Model, error) {
	var pop any = base
	if len(d.Population.Variables) > 0 {
		gens, err := s.generators.BuildSet(ctx, d.Population.Variables, rng)
		if err != nil {
			return nil, err
		}
		if base == nil {
			pop = gens
		} else {
			pop = []any{base, gens}
		}
	}

	opts := []ModelOption{
		WithPopulation(pop),
		WithRand(rng.Stream(ctx, "sample")),
		WithLogger(s.logger.With(d.DisplayName())),
	}
	if d.PotentialOutcomes != nil {
		opts = append(opts, WithPotentialOutcomes(d.PotentialOutcomes))
	}
	return NewModel(s.evaluator, opts...)
}

// Validate builds the design's model and performs one throwaway draw, so
// that distribution parameters and formulas are both checked.
func (s *DesignService) Validate(ctx context.Context, d *design.Design) error {
	m, err := s.BuildModel(ctx, d, s.newRNG(0))
	if err != nil {
		return err
	}
	_, err = m.DrawData(ctx, DrawRequest{})
	return err
}

func (s *DesignService) resolveSeed(d *design.Design, opts DrawOptions) int64 {
	switch {
	case opts.Seed != nil:
		return *opts.Seed
	case d.Seed != nil:
		return *d.Seed
	case s.defaultSeed != nil:
		return *s.defaultSeed
	default:
		return s.randomSeed()
	}
}

func resolveRequest(d *design.Design, opts DrawOptions) DrawRequest {
	if opts.Request != nil {
		return *opts.Request
	}
	return DrawRequest{N: d.Draw.N, Frac: d.Draw.Frac}
}

// Draw runs one or more replicate draws of the design. Replicates run
// concurrently, each on its own model and random streams, and are returned
// in replicate order. With a single replicate the base seed is used as is,
// so a stored seed always reproduces its draw.
func (s *DesignService) Draw(ctx context.Context, d *design.Design, opts DrawOptions) ([]*ports.DrawRecord, error) {
	if opts.Replicates < 0 {
		return nil, apperrors.ValidationError(fmt.Sprintf("replicates must be non-negative, got %d", opts.Replicates))
	}
	if opts.Replicates > s.maxReplicates {
		return nil, apperrors.ValidationError(fmt.Sprintf("replicates must be at most %d, got %d", s.maxReplicates, opts.Replicates))
	}
	if opts.Store && s.repo == nil {
		return nil, apperrors.ConfigInvalid("cannot store draws: no draw repository configured")
	}
	replicates := max(opts.Replicates, 1)

	req := resolveRequest(d, opts)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	base, err := s.baseTable(ctx, d)
	if err != nil {
		return nil, err
	}

	seed := s.resolveSeed(d, opts)
	root := s.newRNG(seed)
	s.logger.Info("drawing %d replicate(s) of %s with seed %d", replicates, d.DisplayName(), seed)

	// A worker slot is taken before each goroutine starts, so at most
	// s.workers replicates are in flight.
	records := make([]*ports.DrawRecord, replicates)
	sem := semaphore.NewWeighted(int64(s.workers))
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < replicates; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		rng := root
		if replicates > 1 {
			rng = root.Derive(i)
		}
		g.Go(func() error {
			defer sem.Release(1)

			rec, err := s.drawOne(gctx, d, base, rng, req, i)
			if err != nil {
				return err
			}
			if opts.Store {
				if err := s.repo.Save(gctx, rec); err != nil {
					return err
				}
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *DesignService) drawOne(ctx context.Context, d *design.Design, base *table.Table, rng ports.RNGPort, req DrawRequest, replicate int) (*ports.DrawRecord, error) {
	m, err := s.buildModel(ctx, d, base, rng)
	if err != nil {
		return nil, err
	}
	out, err := m.DrawData(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ports.DrawRecord{
		ID:        core.NewDrawID(),
		Design:    d.DisplayName(),
		Replicate: replicate,
		Seed:      rng.Seed(),
		N:         req.N,
		Frac:      req.Frac,
		Rows:      out.NRows(),
		Columns:   out.Columns(),
		Table:     out,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Describe draws the design once and profiles the result.
func (s *DesignService) Describe(ctx context.Context, d *design.Design, opts DrawOptions) (profiling.Profile, *ports.DrawRecord, error) {
	opts.Replicates = 1
	records, err := s.Draw(ctx, d, opts)
	if err != nil {
		return profiling.Profile{}, nil, err
	}
	return s.profiler.ProfileTable(records[0].Table), records[0], nil
}

// GetDraw fetches an archived draw.
func (s *DesignService) GetDraw(ctx context.Context, id core.DrawID) (*ports.DrawRecord, error) {
	if s.repo == nil {
		return nil, apperrors.ConfigInvalid("no draw repository configured")
	}
	return s.repo.Get(ctx, id)
}

// ListDraws lists archived draws, newest first. An empty design lists all.
func (s *DesignService) ListDraws(ctx context.Context, designName string, limit int) ([]*ports.DrawRecord, error) {
	if s.repo == nil {
		return nil, apperrors.ConfigInvalid("no draw repository configured")
	}
	return s.repo.List(ctx, designName, limit)
}

// Variables lists the variables a design declares, table columns first.
func (s *DesignService) Variables(ctx context.Context, d *design.Design) ([]string, error) {
	m, err := s.BuildModel(ctx, d, s.newRNG(0))
	if err != nil {
		return nil, err
	}
	return m.Population().Variables(), nil
}
