package laterq

import "time"

// Horizon is the upper time bound for a delayed-queue query: either an
// explicit instant, or unset, meaning "the current wall-clock time".
//
// An unset Horizon is re-resolved on every store query, so a drain pass
// that straddles a second boundary picks up timestamps that became due
// while it was running. An explicit Horizon is fixed for its lifetime.
type Horizon struct {
	at       time.Time
	explicit bool
}

// HorizonNow returns the unset Horizon.
func HorizonNow() Horizon { return Horizon{} }

// HorizonAt returns a Horizon fixed at t.
func HorizonAt(t time.Time) Horizon {
	return Horizon{at: t.UTC(), explicit: true}
}

// Explicit reports whether the horizon carries a fixed instant.
func (h Horizon) Explicit() bool { return h.explicit }

// Resolve returns the concrete bound for a single store query: the fixed
// instant if explicit, otherwise the current wall-clock time. Delayed
// timestamps have second resolution, so the result is truncated.
func (h Horizon) Resolve() time.Time {
	if h.explicit {
		return h.at.Truncate(time.Second)
	}
	return time.Now().UTC().Truncate(time.Second)
}
