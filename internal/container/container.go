package container

import (
	"context"
	"fmt"

	"godesign/adapters/excel"
	"godesign/adapters/formula"
	"godesign/adapters/generators"
	"godesign/adapters/postgres"
	"godesign/app"
	"godesign/internal"
	"godesign/internal/config"
	"godesign/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; DB is nil when no archive is configured
	DB *sqlx.DB

	// Adapters
	Evaluator ports.FormulaEvaluator
	Reader    ports.TableReader
	Writer    ports.TableWriter
	DrawRepo  ports.DrawRepository

	// Services
	Designs *app.DesignService
}

// New creates a new dependency injection container. The draw archive is
// connected only when DATABASE_URL is set.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:    cfg,
		Logger:    internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)),
		Evaluator: formula.NewEvaluator(),
		Reader:    excel.NewDataReader(""),
		Writer:    excel.NewDataWriter(""),
	}

	if cfg.Database.Enabled() {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	c.Designs = app.NewDesignService(
		c.Evaluator,
		generators.Factory{},
		c.Reader,
		func(seed int64) ports.RNGPort { return generators.NewRNG(seed) },
		app.DesignServiceConfig{
			Repository:    c.DrawRepo,
			Workers:       cfg.Draw.Workers,
			MaxReplicates: cfg.Draw.MaxReplicates,
			DefaultSeed:   cfg.Draw.Seed,
			Logger:        c.Logger.With("designs"),
		},
	)
	return c, nil
}

// initDatabase connects the draw archive and runs migrations
func (c *Container) initDatabase(ctx context.Context) error {
	db, err := postgres.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize draw archive: %w", err)
	}
	c.DB = db
	c.DrawRepo = postgres.NewDrawRepository(db)
	c.Logger.Info("draw archive connected (%s)", c.Config.Database.Driver)
	return nil
}

// Shutdown releases resources held by the container
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
