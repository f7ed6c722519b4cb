// Package laterq provides the execution loop of a delayed-task dispatcher:
// a long-running poller that moves every job whose due time has passed from
// a timestamp-ordered delayed store into an immediate-execution queue.
//
// laterq is designed as a library, not a service. Import it, configure a
// store backend, and run the poller.
//
// # Quick Start
//
//	st := redisstore.New(client)
//	p := delayed.NewPoller(st, st,
//	    delayed.WithPollInterval(5*time.Second),
//	)
//	if err := p.Run(ctx); err != nil { ... }
//
// # Architecture
//
// laterq follows a composable store pattern: the delayed package defines
// the Store and Enqueuer contracts, and a single backend (memory, Redis,
// Postgres via Bun) implements both. The poller itself holds no state
// beyond a cooperative shutdown flag; correctness across concurrent worker
// processes rests entirely on the store's atomic pop primitive.
//
// Lifecycle hooks (pre-dispatch notification, post-dispatch, schedule
// fires, shutdown) are one-way emissions through the hook package.
package laterq
