// Package memory provides an in-memory implementation of the delayed
// store and enqueuer. Safe for concurrent access. Intended for unit
// testing and development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/laterq/laterq"
	"github.com/laterq/laterq/delayed"
	"github.com/laterq/laterq/job"
)

// Compile-time interface checks.
var (
	_ delayed.Store    = (*Store)(nil)
	_ delayed.Enqueuer = (*Store)(nil)
)

// Store holds delayed jobs keyed by due unix second, plus the immediate
// queues jobs are dispatched into.
type Store struct {
	mu sync.RWMutex

	// delayed maps unix second to a FIFO list of jobs due then.
	delayed map[int64][]*job.Job

	// queues maps queue name to dispatched jobs, in dispatch order.
	queues map[string][]*job.Job
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		delayed: make(map[int64][]*job.Job),
		queues:  make(map[string][]*job.Job),
	}
}

// DelayJob stores j for dispatch at or after the given due time.
func (m *Store) DelayJob(_ context.Context, j *job.Job, at time.Time) error {
	if err := j.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := at.UTC().Truncate(time.Second).Unix()
	cp := *j
	m.delayed[ts] = append(m.delayed[ts], &cp)
	return nil
}

// NextDueTimestamp returns the earliest timestamp with pending jobs at or
// before the horizon, resolving an unset horizon to now on each call.
func (m *Store) NextDueTimestamp(_ context.Context, horizon laterq.Horizon) (time.Time, bool, error) {
	bound := horizon.Resolve().Unix()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		earliest int64
		found    bool
	)
	for ts, jobs := range m.delayed {
		if ts > bound || len(jobs) == 0 {
			continue
		}
		if !found || ts < earliest {
			earliest = ts
			found = true
		}
	}
	if !found {
		return time.Time{}, false, nil
	}
	return time.Unix(earliest, 0).UTC(), true, nil
}

// PopJob removes and returns the oldest job stored at exactly ts.
func (m *Store) PopJob(_ context.Context, ts time.Time) (*job.Job, bool, error) {
	key := ts.UTC().Truncate(time.Second).Unix()

	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := m.delayed[key]
	if len(jobs) == 0 {
		delete(m.delayed, key)
		return nil, false, nil
	}

	j := jobs[0]
	if len(jobs) == 1 {
		delete(m.delayed, key)
	} else {
		m.delayed[key] = jobs[1:]
	}
	return j, true, nil
}

// CountDelayed returns the number of jobs awaiting dispatch.
func (m *Store) CountDelayed(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, jobs := range m.delayed {
		n += int64(len(jobs))
	}
	return n, nil
}

// Enqueue appends a job to the named immediate queue.
func (m *Store) Enqueue(_ context.Context, queue, class string, args []any) error {
	j := job.New(queue, class, args...)
	if err := j.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.queues[queue] = append(m.queues[queue], j)
	return nil
}

// Queue returns copies of the jobs dispatched to the named queue, in
// dispatch order. Test and inspection helper.
func (m *Store) Queue(name string) []*job.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := m.queues[name]
	out := make([]*job.Job, len(jobs))
	for i, j := range jobs {
		cp := *j
		out[i] = &cp
	}
	return out
}

// Queues returns the names of queues that have received at least one job.
func (m *Store) Queues() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.queues))
	for name := range m.queues {
		out = append(out, name)
	}
	return out
}
