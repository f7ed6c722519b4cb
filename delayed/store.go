package delayed

import (
	"context"
	"time"

	"github.com/laterq/laterq"
	"github.com/laterq/laterq/job"
)

// Store defines the persistence contract for the delayed queue.
type Store interface {
	// DelayJob stores j for dispatch at or after the given due time.
	// Due times have second resolution; at is truncated.
	DelayJob(ctx context.Context, j *job.Job, at time.Time) error

	// NextDueTimestamp returns the earliest timestamp at or before the
	// horizon that still has pending jobs. The boolean is false when no
	// such timestamp exists. An unset horizon must be resolved to the
	// current wall-clock time independently on each call.
	NextDueTimestamp(ctx context.Context, horizon laterq.Horizon) (time.Time, bool, error)

	// PopJob atomically removes and returns one job stored at exactly ts.
	// The boolean is false when the timestamp is exhausted. Must be safe
	// under concurrent callers across processes: each job is returned to
	// exactly one caller.
	PopJob(ctx context.Context, ts time.Time) (*job.Job, bool, error)

	// CountDelayed returns the number of jobs currently awaiting dispatch.
	CountDelayed(ctx context.Context) (int64, error)
}

// Enqueuer hands a job to the immediate-execution system. Once Enqueue
// returns nil the job is the downstream consumer's responsibility.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue, class string, args []any) error
}
