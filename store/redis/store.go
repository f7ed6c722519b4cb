// Package redis implements the delayed store and enqueuer on Redis. The
// delayed queue uses a Sorted Set of due timestamps with one List per
// timestamp; immediate queues are plain Lists. LPOP provides the atomic
// "exactly one caller gets a job" guarantee the drain loop depends on.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

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

// WithCodec sets the job codec. Defaults to JSON.
func WithCodec(c job.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// Store implements delayed.Store and delayed.Enqueuer backed by Redis.
type Store struct {
	client goredis.Cmdable
	codec  job.Codec
	logger *slog.Logger
}

// New creates a new Redis-backed store. The caller owns the Redis client
// lifecycle.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client: client,
		codec:  job.GetCodec(job.CodecNameJSON),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Client returns the underlying Redis client.
func (s *Store) Client() goredis.Cmdable { return s.client }

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// DelayJob encodes the job and pushes it onto the list for its due
// second, registering the second in the schedule sorted set.
func (s *Store) DelayJob(ctx context.Context, j *job.Job, at time.Time) error {
	if err := j.Validate(); err != nil {
		return err
	}

	payload, err := s.codec.Encode(j)
	if err != nil {
		return fmt.Errorf("laterq/redis: encode job: %w", err)
	}

	ts := at.UTC().Truncate(time.Second).Unix()
	member := strconv.FormatInt(ts, 10)

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, delayedKey(ts), payload)
	// ZAdd of an existing member is a no-op score update; the sorted set
	// holds each due second once however many jobs share it.
	pipe.ZAdd(ctx, scheduleKey, goredis.Z{Score: float64(ts), Member: member})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("laterq/redis: delay job: %w", err)
	}
	return nil
}

// NextDueTimestamp returns the earliest due second at or before the
// horizon. The horizon is resolved here, on every call, so an unset
// horizon tracks the advancing wall clock across one drain pass.
func (s *Store) NextDueTimestamp(ctx context.Context, horizon laterq.Horizon) (time.Time, bool, error) {
	bound := horizon.Resolve().Unix()

	members, err := s.client.ZRangeByScore(ctx, scheduleKey, &goredis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(bound, 10),
		Count: 1,
	}).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return time.Time{}, false, fmt.Errorf("laterq/redis: next due timestamp: %w", err)
	}
	if len(members) == 0 {
		return time.Time{}, false, nil
	}

	ts, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("laterq/redis: parse schedule member %q: %w", members[0], err)
	}
	return time.Unix(ts, 0).UTC(), true, nil
}

// PopJob atomically removes one job from the timestamp's list. When the
// list is exhausted the timestamp is removed from the schedule set, so a
// subsequent NextDueTimestamp moves on. Concurrent workers may both see
// the same timestamp, but LPOP hands each job to exactly one of them.
func (s *Store) PopJob(ctx context.Context, ts time.Time) (*job.Job, bool, error) {
	unix := ts.UTC().Truncate(time.Second).Unix()
	key := delayedKey(unix)

	raw, err := s.client.LPop(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		s.cleanupTimestamp(ctx, unix)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("laterq/redis: pop job: %w", err)
	}

	j, err := s.codec.Decode([]byte(raw))
	if err != nil {
		return nil, false, fmt.Errorf("laterq/redis: decode job: %w", err)
	}

	// Drop the schedule member once the list runs dry so the drain loop
	// doesn't spin on an empty timestamp. The script re-checks emptiness
	// atomically, so a job delayed onto this second meanwhile survives.
	s.cleanupTimestamp(ctx, unix)

	return j, true, nil
}

// cleanupScript deletes a timestamp's list and schedule member only if
// the list is empty at execution time. The length check and the deletes
// run in one script: a concurrent DelayJob onto the same second either
// lands before the check (list non-empty, nothing deleted) or after the
// whole script, never in between.
var cleanupScript = goredis.NewScript(`
if redis.call('LLEN', KEYS[1]) == 0 then
	redis.call('DEL', KEYS[1])
	redis.call('ZREM', KEYS[2], ARGV[1])
end
return 0`)

// cleanupTimestamp removes an exhausted second from the schedule set.
// Best-effort: a leftover member is re-examined and cleaned on the next
// drain pass.
func (s *Store) cleanupTimestamp(ctx context.Context, unix int64) {
	err := cleanupScript.Run(ctx, s.client,
		[]string{delayedKey(unix), scheduleKey},
		strconv.FormatInt(unix, 10),
	).Err()
	if err != nil {
		s.logger.Warn("cleanup delayed timestamp",
			slog.Int64("timestamp", unix),
			slog.String("error", err.Error()),
		)
	}
}

// CountDelayed sums the lengths of all pending timestamp lists.
func (s *Store) CountDelayed(ctx context.Context) (int64, error) {
	members, err := s.client.ZRange(ctx, scheduleKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("laterq/redis: count delayed: %w", err)
	}

	var total int64
	for _, member := range members {
		ts, perr := strconv.ParseInt(member, 10, 64)
		if perr != nil {
			continue
		}
		n, lerr := s.client.LLen(ctx, delayedKey(ts)).Result()
		if lerr != nil {
			return 0, fmt.Errorf("laterq/redis: count delayed llen: %w", lerr)
		}
		total += n
	}
	return total, nil
}

// Enqueue pushes a job onto the named immediate queue and records the
// queue name in the queues set.
func (s *Store) Enqueue(ctx context.Context, queue, class string, args []any) error {
	j := job.New(queue, class, args...)
	if err := j.Validate(); err != nil {
		return err
	}

	payload, err := s.codec.Encode(j)
	if err != nil {
		return fmt.Errorf("laterq/redis: encode job: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, queuesKey, queue)
	pipe.RPush(ctx, queueKey(queue), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("laterq/redis: enqueue: %w", err)
	}
	return nil
}
