// Package bunstore implements the delayed store and enqueuer on
// PostgreSQL through the Bun ORM. Popping uses FOR UPDATE SKIP LOCKED so
// concurrent worker processes never receive the same row.
//
// Usage:
//
//	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
//	db := bun.NewDB(sqldb, pgdialect.New())
//	s := bunstore.New(db)
//	if err := s.Migrate(ctx); err != nil { ... }
package bunstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/laterq/laterq"
	"github.com/laterq/laterq/delayed"
	"github.com/laterq/laterq/job"
)

// Compile-time interface checks.
var (
	_ delayed.Store    = (*Store)(nil)
	_ delayed.Enqueuer = (*Store)(nil)
)

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store implements delayed.Store and delayed.Enqueuer on PostgreSQL.
// The caller owns the *bun.DB lifecycle; Store never closes it.
type Store struct {
	db     *bun.DB
	logger *slog.Logger
}

// New creates a new Bun store.
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{db: db, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DB returns the underlying *bun.DB for advanced usage.
func (s *Store) DB() *bun.DB { return s.db }

// Migrate applies the schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("laterq/bun: migrate: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DelayJob inserts a row due at the given time.
func (s *Store) DelayJob(ctx context.Context, j *job.Job, at time.Time) error {
	if err := j.Validate(); err != nil {
		return err
	}
	m, err := toDelayedModel(j, at)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("laterq/bun: delay job: %w", err)
	}
	return nil
}

// NextDueTimestamp returns the earliest run_at at or before the horizon.
// The horizon is resolved here, on every call.
func (s *Store) NextDueTimestamp(ctx context.Context, horizon laterq.Horizon) (time.Time, bool, error) {
	var runAt time.Time
	err := s.db.NewSelect().
		Model((*delayedJobModel)(nil)).
		Column("run_at").
		Where("run_at <= ?", horizon.Resolve()).
		OrderExpr("run_at ASC").
		Limit(1).
		Scan(ctx, &runAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("laterq/bun: next due timestamp: %w", err)
	}
	return runAt.UTC(), true, nil
}

// PopJob deletes and returns one row due at exactly ts. SKIP LOCKED makes
// concurrent pops race-free: each row is deleted and returned by exactly
// one caller.
func (s *Store) PopJob(ctx context.Context, ts time.Time) (*job.Job, bool, error) {
	var m delayedJobModel
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM laterq_delayed_jobs
		WHERE id = (
			SELECT id FROM laterq_delayed_jobs
			WHERE run_at = ?
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING queue, class, args
	`, ts.UTC().Truncate(time.Second)).Scan(&m.Queue, &m.Class, &m.Args)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("laterq/bun: pop job: %w", err)
	}

	j, err := fromDelayedModel(&m)
	if err != nil {
		return nil, false, err
	}
	return j, true, nil
}

// CountDelayed returns the number of rows awaiting dispatch.
func (s *Store) CountDelayed(ctx context.Context) (int64, error) {
	n, err := s.db.NewSelect().Model((*delayedJobModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("laterq/bun: count delayed: %w", err)
	}
	return int64(n), nil
}

// Enqueue inserts a row into the immediate-queue table.
func (s *Store) Enqueue(ctx context.Context, queue, class string, args []any) error {
	j := job.New(queue, class, args...)
	if err := j.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(j.Args)
	if err != nil {
		return fmt.Errorf("laterq/bun: marshal args: %w", err)
	}
	m := &queuedJobModel{
		Queue:     queue,
		Class:     class,
		Args:      raw,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("laterq/bun: enqueue: %w", err)
	}
	return nil
}
