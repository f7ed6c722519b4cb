// Package hook defines the extension system for laterq.
// Extensions are notified of dispatcher lifecycle events (a delayed job
// about to be enqueued, a job dispatched, a schedule entry fired, shutdown)
// and can react to them, for example with logging, metrics, or auditing.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about. Emissions are strictly one-way: errors
// returned by hooks are logged and dropped, never acted on. A hook cannot
// veto or mutate the job it observes.
package hook

import (
	"context"
	"time"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// BeforeDelayedEnqueue is called immediately before a popped delayed job
// is handed to the immediate-execution queue.
type BeforeDelayedEnqueue interface {
	OnBeforeDelayedEnqueue(ctx context.Context, queue, class string, args []any) error
}

// JobDispatched is called after a delayed job has been accepted by the
// immediate-execution queue.
type JobDispatched interface {
	OnJobDispatched(ctx context.Context, queue, class string, args []any, due time.Time) error
}

// ScheduleFired is called after a recurring schedule entry enqueues its job.
type ScheduleFired interface {
	OnScheduleFired(ctx context.Context, entryName, queue, class string) error
}

// Shutdown is called once when the worker process is shutting down.
type Shutdown interface {
	OnShutdown(ctx context.Context)
}
