// Package delayed implements the core of laterq: the drain engine and the
// polling loop that move due jobs from the delayed store into the
// immediate-execution queue.
//
// # Store contract
//
// A [Store] holds jobs keyed by due time at second resolution. The drain
// algorithm needs exactly two read operations from it: "next due timestamp
// at or before a bound" and "pop one remaining job for a timestamp".
// PopJob must be atomic across processes (each job is handed to exactly
// one caller), which is the only property multi-worker correctness rests
// on. laterq imposes no ordering of its own within a timestamp; jobs come
// out in whatever order the store pops them.
//
// # Drain ordering
//
// [Poller.DrainDue] fully drains each due timestamp before querying the
// store for the next one, so all jobs at an earlier due time are
// dispatched before any later timestamp is even looked at. With an unset
// horizon the bound is re-resolved on every query, so jobs that become due
// while a pass is running are included in the same pass.
//
// # Shutdown
//
// Shutdown is cooperative: termination signals flip a flag that the loop
// observes only between iterations, never mid-drain. A pass in progress
// always completes its current timestamp and horizon, bounding shutdown
// latency to one drain cycle plus the poll interval.
package delayed
