package laterq

import "errors"

var (
	// Job errors.
	ErrInvalidJob = errors.New("laterq: job requires a queue and a class")

	// Poller errors.
	ErrNoStore    = errors.New("laterq: no store configured")
	ErrNoEnqueuer = errors.New("laterq: no enqueuer configured")

	// Schedule errors.
	ErrDuplicateEntry = errors.New("laterq: duplicate schedule entry")
	ErrEntryNotFound  = errors.New("laterq: schedule entry not found")
)
