package redis

import "strconv"

// Redis key naming conventions for laterq data.
// All keys are prefixed with "laterq:" to avoid collisions. The delayed
// layout is a sorted set of due unix seconds plus one list per second,
// which keeps both "next due timestamp" and "pop one job" O(1)-ish and
// atomic per item.

const keyPrefix = "laterq:"

// scheduleKey is the Sorted Set of due timestamps: member and score are
// both the unix second.
const scheduleKey = keyPrefix + "delayed_queue_schedule"

// delayedKey returns the List key holding jobs due at a unix second:
// laterq:delayed:{ts}
func delayedKey(ts int64) string {
	return keyPrefix + "delayed:" + strconv.FormatInt(ts, 10)
}

// queueKey returns the List key for an immediate queue: laterq:queue:{name}
func queueKey(name string) string { return keyPrefix + "queue:" + name }

// queuesKey is the Set tracking known immediate queue names.
const queuesKey = keyPrefix + "queues"
