package bunstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/laterq/laterq/job"
)

// delayedJobModel is one row awaiting dispatch. run_at is truncated to
// second resolution on write so rows group by due timestamp.
type delayedJobModel struct {
	bun.BaseModel `bun:"table:laterq_delayed_jobs"`

	ID    int64     `bun:"id,pk,autoincrement"`
	Queue string    `bun:"queue,notnull"`
	Class string    `bun:"class,notnull"`
	Args  []byte    `bun:"args,notnull,type:jsonb"`
	RunAt time.Time `bun:"run_at,notnull"`
}

// queuedJobModel is one row in an immediate queue, consumed downstream.
type queuedJobModel struct {
	bun.BaseModel `bun:"table:laterq_queued_jobs"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Queue     string    `bun:"queue,notnull"`
	Class     string    `bun:"class,notnull"`
	Args      []byte    `bun:"args,notnull,type:jsonb"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func toDelayedModel(j *job.Job, at time.Time) (*delayedJobModel, error) {
	args, err := json.Marshal(j.Args)
	if err != nil {
		return nil, fmt.Errorf("laterq/bun: marshal args: %w", err)
	}
	return &delayedJobModel{
		Queue: j.Queue,
		Class: j.Class,
		Args:  args,
		RunAt: at.UTC().Truncate(time.Second),
	}, nil
}

func fromDelayedModel(m *delayedJobModel) (*job.Job, error) {
	var args []any
	if len(m.Args) > 0 {
		if err := json.Unmarshal(m.Args, &args); err != nil {
			return nil, fmt.Errorf("laterq/bun: unmarshal args: %w", err)
		}
	}
	return &job.Job{Queue: m.Queue, Class: m.Class, Args: args}, nil
}
