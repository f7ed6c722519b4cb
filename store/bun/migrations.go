package bunstore

// Schema migrations, applied in order by Migrate. Statements are
// idempotent so re-running a migration is harmless.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS laterq_delayed_jobs (
		id BIGSERIAL PRIMARY KEY,
		queue TEXT NOT NULL,
		class TEXT NOT NULL,
		args JSONB NOT NULL DEFAULT '[]',
		run_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS laterq_delayed_jobs_run_at_idx
		ON laterq_delayed_jobs (run_at)`,
	`CREATE TABLE IF NOT EXISTS laterq_queued_jobs (
		id BIGSERIAL PRIMARY KEY,
		queue TEXT NOT NULL,
		class TEXT NOT NULL,
		args JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS laterq_queued_jobs_queue_idx
		ON laterq_queued_jobs (queue, id)`,
}
