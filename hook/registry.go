package hook

import (
	"context"
	"log/slog"
	"time"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type beforeDelayedEnqueueEntry struct {
	name string
	hook BeforeDelayedEnqueue
}

type jobDispatchedEntry struct {
	name string
	hook JobDispatched
}

type scheduleFiredEntry struct {
	name string
	hook ScheduleFired
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events to
// them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	beforeDelayedEnqueue []beforeDelayedEnqueueEntry
	jobDispatched        []jobDispatchedEntry
	scheduleFired        []scheduleFiredEntry
	shutdown             []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable hook
// caches. Extensions are notified in registration order. Not safe for
// concurrent use with emits; register everything at startup.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(BeforeDelayedEnqueue); ok {
		r.beforeDelayedEnqueue = append(r.beforeDelayedEnqueue, beforeDelayedEnqueueEntry{name, h})
	}
	if h, ok := e.(JobDispatched); ok {
		r.jobDispatched = append(r.jobDispatched, jobDispatchedEntry{name, h})
	}
	if h, ok := e.(ScheduleFired); ok {
		r.scheduleFired = append(r.scheduleFired, scheduleFiredEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []Extension {
	out := make([]Extension, len(r.extensions))
	copy(out, r.extensions)
	return out
}

// EmitBeforeDelayedEnqueue notifies extensions that a delayed job is about
// to be enqueued. Hook errors are logged and dropped.
func (r *Registry) EmitBeforeDelayedEnqueue(ctx context.Context, queue, class string, args []any) {
	for _, e := range r.beforeDelayedEnqueue {
		if err := e.hook.OnBeforeDelayedEnqueue(ctx, queue, class, args); err != nil {
			r.logHookError("before_delayed_enqueue", e.name, err)
		}
	}
}

// EmitJobDispatched notifies extensions that a delayed job was dispatched.
func (r *Registry) EmitJobDispatched(ctx context.Context, queue, class string, args []any, due time.Time) {
	for _, e := range r.jobDispatched {
		if err := e.hook.OnJobDispatched(ctx, queue, class, args, due); err != nil {
			r.logHookError("job_dispatched", e.name, err)
		}
	}
}

// EmitScheduleFired notifies extensions that a schedule entry fired.
func (r *Registry) EmitScheduleFired(ctx context.Context, entryName, queue, class string) {
	for _, e := range r.scheduleFired {
		if err := e.hook.OnScheduleFired(ctx, entryName, queue, class); err != nil {
			r.logHookError("schedule_fired", e.name, err)
		}
	}
}

// EmitShutdown notifies extensions that the worker is shutting down.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		e.hook.OnShutdown(ctx)
	}
}

func (r *Registry) logHookError(event, extension string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("event", event),
		slog.String("extension", extension),
		slog.String("error", err.Error()),
	)
}
