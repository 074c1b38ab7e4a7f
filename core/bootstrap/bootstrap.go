package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/kuafsurvey/core/config"
	coredatabase "github.com/m3rciful/kuafsurvey/core/database"
	"github.com/m3rciful/kuafsurvey/core/logger"
)

// Options control the bootstrap pipeline: logger, database, migrations, seeders.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	// WaitTimeout bounds the initial wait for Postgres; 0 skips the wait.
	WaitTimeout time.Duration

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(context.Context, coredatabase.Config) error

	Modules Modules
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, connects to the database, applies migrations
// and runs the seeders in order. The first failing step aborts the pipeline.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	if opts.WaitTimeout > 0 {
		if err := coredatabase.WaitForPostgres(ctx, opts.Database, opts.WaitTimeout); err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	for i, s := range opts.Modules.Seeders {
		start := time.Now()
		err := s.Seed(ctx, db)
		logger.Info(ctx, logger.CompSeed, "seed",
			slog.Int("index", i),
			slog.String("status", logger.Status(err)),
			slog.Duration("duration", logger.RoundMS(logger.Took(start))),
		)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: seeder %d failed: %w", i, err)
		}
	}

	return &Result{DB: db}, nil
}
