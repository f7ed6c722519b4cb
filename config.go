package laterq

import "time"

// Config holds configuration for a laterq worker process.
type Config struct {
	// PollInterval is how long the poller idles between drain cycles.
	// Sub-second values are honored.
	PollInterval time.Duration

	// ScheduleTickInterval is how often the recurring scheduler checks
	// for due entries.
	ScheduleTickInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:         5 * time.Second,
		ScheduleTickInterval: 1 * time.Second,
	}
}
