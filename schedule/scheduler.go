package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	cronlib "github.com/robfig/cron/v3"

	"github.com/laterq/laterq"
	"github.com/laterq/laterq/delayed"
)

// Emitter emits schedule lifecycle events.
// hook.Registry satisfies this interface via EmitScheduleFired.
type Emitter interface {
	EmitScheduleFired(ctx context.Context, entryName, queue, class string)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTickInterval sets how often the scheduler checks for due entries.
func WithTickInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.tickInterval = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = l }
}

// WithEmitter sets the lifecycle event emitter.
func WithEmitter(e Emitter) SchedulerOption {
	return func(s *Scheduler) { s.emitter = e }
}

// specParser supports standard 5-field cron and descriptors like "@every 30s".
var specParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSpec parses a cron expression and returns the schedule.
func ParseSpec(expr string) (cronlib.Schedule, error) {
	return specParser.Parse(expr)
}

// entryState pairs an entry with its parsed schedule.
type entryState struct {
	entry *Entry
	sched cronlib.Schedule
}

// Scheduler fires recurring entries on a tick loop, enqueueing their jobs
// through the shared Enqueuer.
type Scheduler struct {
	enqueuer delayed.Enqueuer
	emitter  Emitter
	logger   *slog.Logger

	tickInterval time.Duration

	mu      sync.Mutex
	entries map[string]*entryState // keyed by entry name

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewScheduler creates a Scheduler that enqueues fired jobs through enq.
func NewScheduler(enq delayed.Enqueuer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		enqueuer:     enq,
		logger:       slog.Default(),
		tickInterval: laterq.DefaultConfig().ScheduleTickInterval,
		entries:      make(map[string]*entryState),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds an entry. The spec is parsed eagerly; an entry with a zero
// ID gets one, and a zero NextRunAt is computed from the spec.
func (s *Scheduler) Register(e *Entry) error {
	sched, err := ParseSpec(e.Spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.Name]; exists {
		return laterq.ErrDuplicateEntry
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.NextRunAt.IsZero() {
		e.NextRunAt = sched.Next(time.Now().UTC())
	}
	s.entries[e.Name] = &entryState{entry: e, sched: sched}
	return nil
}

// Remove deletes an entry by name.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; !exists {
		return laterq.ErrEntryNotFound
	}
	delete(s.entries, name)
	return nil
}

// Entries returns copies of all registered entries.
func (s *Scheduler) Entries() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, st := range s.entries {
		cp := *st.entry
		out = append(out, &cp)
	}
	return out
}

// Start launches the tick goroutine. The context is threaded through to
// every Enqueue made on a tick, so cancelling it aborts in-flight fires.
func (s *Scheduler) Start(ctx context.Context) error {
	s.wg.Add(1)
	go s.tickLoop(ctx)
	s.logger.Info("schedule scheduler started",
		slog.Duration("tick_interval", s.tickInterval),
		slog.Int("entries", len(s.Entries())),
	)
	return nil
}

// Stop signals the scheduler to stop and waits for the tick goroutine.
func (s *Scheduler) Stop(_ context.Context) error {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("schedule scheduler stopped")
	return nil
}

// tickLoop fires on each tick interval and processes due entries.
func (s *Scheduler) tickLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	s.mu.Lock()
	due := make([]*entryState, 0)
	for _, st := range s.entries {
		if !st.entry.Enabled {
			continue
		}
		if st.entry.NextRunAt.After(now) {
			continue
		}
		due = append(due, st)
	}
	s.mu.Unlock()

	for _, st := range due {
		s.fireEntry(ctx, st, now)
	}
}

func (s *Scheduler) fireEntry(ctx context.Context, st *entryState, now time.Time) {
	e := st.entry

	if err := s.enqueuer.Enqueue(ctx, e.Queue, e.Class, e.Args); err != nil {
		s.logger.Error("schedule enqueue error",
			slog.String("entry", e.Name),
			slog.String("queue", e.Queue),
			slog.String("class", e.Class),
			slog.String("error", err.Error()),
		)
		return // NextRunAt untouched; retried on the next tick
	}

	s.mu.Lock()
	e.LastRunAt = now
	e.NextRunAt = st.sched.Next(now)
	s.mu.Unlock()

	if s.emitter != nil {
		s.emitter.EmitScheduleFired(ctx, e.Name, e.Queue, e.Class)
	}

	s.logger.Info("schedule fired",
		slog.String("entry", e.Name),
		slog.String("queue", e.Queue),
		slog.String("class", e.Class),
		slog.Time("next_run_at", e.NextRunAt),
	)
}
