package laterq

import (
	"fmt"
	"os"
)

// Identity is a worker's display identity, derived once at process start
// from hostname and pid. It appears in logs and status output only and
// never influences scheduling.
type Identity string

// NewIdentity derives the Identity of the current process.
func NewIdentity() Identity {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return Identity(fmt.Sprintf("%s:%d", host, os.Getpid()))
}

// String implements fmt.Stringer.
func (i Identity) String() string { return string(i) }
