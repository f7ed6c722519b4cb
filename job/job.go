// Package job defines the delayed job payload and its wire codecs.
package job

import "github.com/laterq/laterq"

// Job is one payload awaiting dispatch. It has no identity of its own:
// once popped from the delayed store and handed to the immediate queue it
// ceases to exist as far as laterq is concerned.
type Job struct {
	// Queue is the destination queue name.
	Queue string `json:"queue" msgpack:"queue"`

	// Class identifies the task to run.
	Class string `json:"class" msgpack:"class"`

	// Args is the ordered argument list. laterq treats it as opaque and
	// passes it through unmodified.
	Args []any `json:"args" msgpack:"args"`
}

// New creates a Job for the given queue and class.
func New(queue, class string, args ...any) *Job {
	return &Job{Queue: queue, Class: class, Args: args}
}

// Validate checks the structural invariants: queue and class must be
// non-empty. Args may be empty or nil.
func (j *Job) Validate() error {
	if j.Queue == "" || j.Class == "" {
		return laterq.ErrInvalidJob
	}
	return nil
}
