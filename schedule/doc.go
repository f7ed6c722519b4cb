// Package schedule provides the recurring half of a delayed-task
// dispatcher: static entries registered at startup that enqueue a job on a
// cron expression.
//
// Unlike the delayed queue, entries live in process memory. Running the
// scheduler on more than one worker against the same immediate queue will
// fire entries once per worker; deployments that need single-firing run
// the scheduler on one worker only and scale the delayed pollers freely.
//
// # Registering an Entry
//
//	s := schedule.NewScheduler(enqueuer)
//	err := s.Register(&schedule.Entry{
//	    Name:  "nightly-digest",
//	    Spec:  "0 3 * * *",
//	    Queue: "emails",
//	    Class: "SendDigest",
//	})
package schedule
