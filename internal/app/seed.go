package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/kuafsurvey/core/bootstrap"
	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/m3rciful/kuafsurvey/internal/exchange"
	"github.com/m3rciful/kuafsurvey/internal/metrics"
	"github.com/m3rciful/kuafsurvey/internal/store"
)

type rosterTarget interface {
	Stats(ctx context.Context) (store.Stats, error)
	exchange.StudentWriter
}

// rosterSeeder imports the configured roster into an empty students table.
func rosterSeeder(path string) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		return seedRoster(ctx, store.New(db, store.Options{Observe: metrics.RecordStoreQuery}), path)
	})
}

func seedRoster(ctx context.Context, dst rosterTarget, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	st, err := dst.Stats(ctx)
	if err != nil {
		return fmt.Errorf("count students: %w", err)
	}
	if st.Students > 0 {
		logger.Debug(ctx, logger.CompSeed, "roster", slog.String("status", "skip"), slog.Int("students", st.Students))
		return nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn(ctx, logger.CompSeed, "roster", slog.String("status", "missing"), slog.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	res, err := exchange.ImportStudents(ctx, dst, f)
	if err != nil {
		return fmt.Errorf("import roster %s: %w", path, err)
	}
	metrics.RecordExchangeRows("import", "added", res.Added)
	metrics.RecordExchangeRows("import", "updated", res.Updated)
	logger.Info(ctx, logger.CompSeed, "roster",
		slog.String("path", path),
		slog.Int("added", res.Added),
		slog.Int("updated", res.Updated),
		slog.Int("errors", len(res.Errors)),
	)
	return nil
}
