// Package store persists students, survey responses and staff in Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/m3rciful/kuafsurvey/internal/survey"
)

var (
	// ErrNotFound is returned when no student matches a lookup.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned by InsertSurvey when duplicates are rejected
	// and the subject already has a response.
	ErrDuplicate = fmt.Errorf("store: %w", survey.ErrDuplicate)
)

// Observer receives the outcome of every query.
type Observer func(op string, took time.Duration, err error)

// Options tune a Store.
type Options struct {
	RejectDuplicates bool
	Observe          Observer
}

// Store is the Postgres-backed record store.
type Store struct {
	db        *sqlx.DB
	rejectDup bool
	observe   Observer
}

// New wraps an open connection pool.
func New(db *sqlx.DB, opts Options) *Store {
	return &Store{db: db, rejectDup: opts.RejectDuplicates, observe: opts.Observe}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Stats are the counters shown on the admin panel.
type Stats struct {
	Students int `db:"students"`
	Surveys  int `db:"surveys"`
	Staff    int `db:"staff"`
}

// Stats counts students, survey responses and staff in one round trip.
func (s *Store) Stats(ctx context.Context) (st Stats, err error) {
	defer s.track(ctx, "stats", time.Now(), &err)
	err = s.db.GetContext(ctx, &st, `
		SELECT
			(SELECT COUNT(*) FROM students)         AS students,
			(SELECT COUNT(*) FROM survey_responses) AS surveys,
			(SELECT COUNT(*) FROM staff)            AS staff`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (s *Store) track(ctx context.Context, op string, start time.Time, errp *error) {
	took := time.Since(start)
	var err error
	if errp != nil {
		err = *errp
	}
	if s.observe != nil {
		s.observe(op, took, err)
	}
	switch {
	case err == nil, errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
		if logger.ShouldSampleDebug() {
			logger.Debug(ctx, logger.CompStore, "store.query",
				slog.String("op", op),
				slog.String("status", "ok"),
				slog.Duration("duration", logger.RoundMS(took)),
			)
		}
	default:
		logger.Error(ctx, logger.CompStore, "store.query",
			slog.String("op", op),
			slog.String("status", "error"),
			slog.String("err_code", pgCode(err)),
			slog.Duration("duration", logger.RoundMS(took)),
			logger.Err(err),
		)
	}
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return "no_rows"
	}
	return ""
}

func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
