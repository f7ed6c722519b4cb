package delayed

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/laterq/laterq"
)

// Status strings reported to external process monitors.
const (
	StatusStarting   = "Starting"
	StatusProcessing = "Processing Delayed Items"
)

// Emitter emits dispatch lifecycle events. hook.Registry satisfies this
// interface; the indirection keeps delayed free of a hook import.
// Emissions are one-way: the poller never inspects a result.
type Emitter interface {
	EmitBeforeDelayedEnqueue(ctx context.Context, queue, class string, args []any)
	EmitJobDispatched(ctx context.Context, queue, class string, args []any, due time.Time)
}

// Option configures a Poller.
type Option func(*Poller)

// WithPollInterval sets how long the poller idles between drain cycles.
func WithPollInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithEmitter sets the lifecycle event emitter.
func WithEmitter(e Emitter) Option {
	return func(p *Poller) { p.emitter = e }
}

// WithSignalHandling enables or disables OS signal handling. Disable it
// when embedding the poller in a process that owns signal routing; the
// poller can then only be stopped via Shutdown.
func WithSignalHandling(enabled bool) Option {
	return func(p *Poller) { p.handleSignals = enabled }
}

// Poller runs the delayed-queue drain loop: drain everything due, idle for
// the poll interval, repeat until shutdown is requested. A single Poller
// uses one logical thread of control; run multiple worker processes for
// parallelism.
type Poller struct {
	store    Store
	enqueuer Enqueuer
	emitter  Emitter
	identity laterq.Identity
	logger   *slog.Logger

	interval      time.Duration
	handleSignals bool

	// status is the human-readable phase string for process monitors.
	// It never affects control flow.
	status atomic.Value // string

	// shutdown is the cooperative stop flag: written once by the signal
	// path, read at loop-iteration boundaries only.
	shutdown atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	sigOnce  sync.Once
}

// NewPoller creates a Poller over the given store and enqueuer.
func NewPoller(store Store, enqueuer Enqueuer, opts ...Option) *Poller {
	p := &Poller{
		store:         store,
		enqueuer:      enqueuer,
		identity:      laterq.NewIdentity(),
		logger:        slog.Default(),
		interval:      laterq.DefaultConfig().PollInterval,
		handleSignals: true,
		stopCh:        make(chan struct{}),
	}
	p.status.Store(StatusStarting)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Identity returns the worker's hostname:pid identity.
func (p *Poller) Identity() laterq.Identity { return p.identity }

// Status returns the current phase string.
func (p *Poller) Status() string { return p.status.Load().(string) }

func (p *Poller) setStatus(s string) { p.status.Store(s) }

// Shutdown requests a cooperative stop. Idempotent: repeated calls after
// the first are no-ops. The loop exits after completing its current drain
// cycle, never mid-drain.
func (p *Poller) Shutdown() {
	p.stopOnce.Do(func() {
		p.shutdown.Store(true)
		close(p.stopCh)
		p.logger.Info("shutdown requested",
			slog.String("worker", p.identity.String()),
		)
	})
}

// ShutdownRequested reports whether a stop has been requested.
func (p *Poller) ShutdownRequested() bool { return p.shutdown.Load() }

// installSignals registers the termination signal handlers, or logs the
// degraded mode once when signal handling is disabled.
func (p *Poller) installSignals() {
	if !p.handleSignals {
		p.logger.Debug("signal handling disabled; poller stops only via Shutdown",
			slog.String("worker", p.identity.String()),
		)
		return
	}
	p.sigOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
		go func() {
			for range ch {
				p.Shutdown()
			}
		}()
		p.logger.Debug("registered termination signal handlers",
			slog.String("worker", p.identity.String()),
		)
	})
}

// Run blocks, alternating drain cycles with fixed-interval idling, until
// shutdown is requested. Context cancellation is treated as a shutdown
// request and, like signals, is observed only at iteration boundaries.
//
// Store and enqueue failures propagate out unretried; the caller is
// expected to apply process-level supervision.
func (p *Poller) Run(ctx context.Context) error {
	if p.store == nil {
		return laterq.ErrNoStore
	}
	if p.enqueuer == nil {
		return laterq.ErrNoEnqueuer
	}

	p.setStatus(StatusStarting)
	p.logger.Info("delayed poller starting",
		slog.String("worker", p.identity.String()),
		slog.Duration("poll_interval", p.interval),
	)
	p.installSignals()

	for {
		if p.ShutdownRequested() {
			break
		}
		if err := p.DrainDue(ctx, laterq.HorizonNow()); err != nil {
			return err
		}
		// Re-check before idling so a stop requested mid-drain exits
		// without a further sleep.
		if p.ShutdownRequested() {
			break
		}
		select {
		case <-p.stopCh:
		case <-ctx.Done():
			p.Shutdown()
		case <-time.After(p.interval):
		}
	}

	p.logger.Info("delayed poller stopped",
		slog.String("worker", p.identity.String()),
	)
	return nil
}

// DrainDue performs one drain pass: every job due at or before the horizon
// is dispatched, earliest timestamp first. Each timestamp is fully drained
// before the next is queried. With an unset horizon the bound is
// re-resolved on every query, so the pass keeps going until the store
// reports nothing left at-or-before the present moment.
//
// DrainDue is safe to call directly for tests or external triggering
// without running the loop.
func (p *Poller) DrainDue(ctx context.Context, horizon laterq.Horizon) error {
	p.setStatus(StatusProcessing)
	for {
		ts, ok, err := p.store.NextDueTimestamp(ctx, horizon)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := p.drainTimestamp(ctx, ts); err != nil {
			return err
		}
	}
}

// drainTimestamp dispatches every job stored at exactly ts, one pop at a
// time, until the store reports the timestamp exhausted. No job is popped
// twice: a pop removes it from the store before dispatch, so a dispatch
// failure here means the job is lost unless the enqueuer is durable.
func (p *Poller) drainTimestamp(ctx context.Context, ts time.Time) error {
	for {
		j, ok, err := p.store.PopJob(ctx, ts)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		args, _ := json.Marshal(j.Args) //nolint:errcheck // args round-tripped through a codec already
		p.logger.Info("queueing delayed item",
			slog.String("class", j.Class),
			slog.String("queue", j.Queue),
			slog.String("args", string(args)),
			slog.Time("due", ts),
			slog.String("worker", p.identity.String()),
		)

		if p.emitter != nil {
			p.emitter.EmitBeforeDelayedEnqueue(ctx, j.Queue, j.Class, j.Args)
		}
		if err := p.enqueuer.Enqueue(ctx, j.Queue, j.Class, j.Args); err != nil {
			return err
		}
		if p.emitter != nil {
			p.emitter.EmitJobDispatched(ctx, j.Queue, j.Class, j.Args, ts)
		}
	}
}
