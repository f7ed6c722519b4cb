//go:build integration

package bunstore_test

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/laterq/laterq"
	"github.com/laterq/laterq/job"
	bunstore "github.com/laterq/laterq/store/bun"
)

// setupTestStore creates a Postgres container and returns a migrated Store.
func setupTestStore(t *testing.T) *bunstore.Store {
	t.Helper()

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("laterq_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	store := bunstore.New(db, bunstore.WithLogger(slog.Default()))
	if migErr := store.Migrate(ctx); migErr != nil {
		t.Fatalf("migrate: %v", migErr)
	}
	return store
}

func TestStore_Ping(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestStore_MigrateIdempotent(t *testing.T) {
	s := setupTestStore(t)
	// Second migrate should be a no-op.
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestStore_DelayAndDrainOneTimestamp(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Add(-time.Minute)

	for _, arg := range []string{"first", "second"} {
		if err := s.DelayJob(ctx, job.New("emails", "Send", arg), at); err != nil {
			t.Fatalf("delay: %v", err)
		}
	}

	ts, ok, err := s.NextDueTimestamp(ctx, laterq.HorizonNow())
	if err != nil || !ok {
		t.Fatalf("next due timestamp: ok=%v err=%v", ok, err)
	}
	if want := at.Truncate(time.Second); !ts.Equal(want) {
		t.Fatalf("next due timestamp = %v, want %v", ts, want)
	}

	// Rows pop in insertion order; the timestamp exhausts after two.
	for _, want := range []string{"first", "second"} {
		j, popped, popErr := s.PopJob(ctx, ts)
		if popErr != nil || !popped {
			t.Fatalf("pop: ok=%v err=%v", popped, popErr)
		}
		if j.Queue != "emails" || j.Class != "Send" {
			t.Errorf("pop = %s/%s, want emails/Send", j.Queue, j.Class)
		}
		if j.Args[0] != want {
			t.Errorf("pop arg = %v, want %q", j.Args[0], want)
		}
	}
	if _, popped, _ := s.PopJob(ctx, ts); popped {
		t.Error("pop returned a job from an exhausted timestamp")
	}
	if _, ok, _ = s.NextDueTimestamp(ctx, laterq.HorizonNow()); ok {
		t.Error("exhausted timestamp still reported as due")
	}
}

func TestStore_NextDueTimestampOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, at := range []time.Time{
		now.Add(-10 * time.Second),
		now.Add(-30 * time.Second),
		now.Add(-20 * time.Second),
	} {
		if err := s.DelayJob(ctx, job.New("q", "W"), at); err != nil {
			t.Fatalf("delay: %v", err)
		}
	}

	ts, ok, err := s.NextDueTimestamp(ctx, laterq.HorizonNow())
	if err != nil || !ok {
		t.Fatalf("next due timestamp: ok=%v err=%v", ok, err)
	}
	if want := now.Add(-30 * time.Second).Truncate(time.Second); !ts.Equal(want) {
		t.Errorf("next due timestamp = %v, want earliest %v", ts, want)
	}
}

func TestStore_NextDueTimestampRespectsHorizon(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Add(time.Hour)

	if err := s.DelayJob(ctx, job.New("q", "W"), at); err != nil {
		t.Fatalf("delay: %v", err)
	}

	if _, ok, err := s.NextDueTimestamp(ctx, laterq.HorizonNow()); err != nil || ok {
		t.Errorf("future job visible at horizon now: ok=%v err=%v", ok, err)
	}
	if _, ok, err := s.NextDueTimestamp(ctx, laterq.HorizonAt(at.Add(time.Minute))); err != nil || !ok {
		t.Errorf("future job not visible at extended horizon: ok=%v err=%v", ok, err)
	}
}

func TestStore_CountDelayed(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if n, err := s.CountDelayed(ctx); err != nil || n != 0 {
		t.Fatalf("count on empty store = %d, err=%v", n, err)
	}
	for i := 0; i < 3; i++ {
		at := now.Add(time.Duration(i) * time.Second)
		if err := s.DelayJob(ctx, job.New("q", "W"), at); err != nil {
			t.Fatalf("delay: %v", err)
		}
	}
	if n, err := s.CountDelayed(ctx); err != nil || n != 3 {
		t.Fatalf("count = %d, want 3, err=%v", n, err)
	}
}

func TestStore_EnqueueInsertsRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Enqueue(ctx, "emails", "Send", []any{"x"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	n, err := s.DB().NewSelect().Table("laterq_queued_jobs").Count(ctx)
	if err != nil {
		t.Fatalf("count queued rows: %v", err)
	}
	if n != 1 {
		t.Errorf("queued rows = %d, want 1", n)
	}
}
