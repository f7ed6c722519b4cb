package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a recurring job schedule.
type Entry struct {
	// ID is assigned at registration if zero.
	ID uuid.UUID `json:"id"`

	// Name uniquely identifies the entry within a scheduler.
	Name string `json:"name"`

	// Spec is a cron expression (e.g., "*/5 * * * *" or "@every 30s").
	Spec string `json:"spec"`

	// Queue is the destination queue for fired jobs.
	Queue string `json:"queue"`

	// Class identifies the task to enqueue on each fire.
	Class string `json:"class"`

	// Args is the argument list passed with every fire.
	Args []any `json:"args,omitempty"`

	// LastRunAt records the most recent fire, zero if never fired.
	LastRunAt time.Time `json:"last_run_at,omitzero"`

	// NextRunAt is when the entry fires next. Computed from Spec at
	// registration when zero.
	NextRunAt time.Time `json:"next_run_at,omitzero"`

	// Enabled gates firing. Disabled entries are skipped on every tick.
	Enabled bool `json:"enabled"`
}
