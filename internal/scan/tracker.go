package scan

import (
	"fmt"
	"sync/atomic"
)

// Tracker counts paths that have not been resolved yet.
type Tracker struct {
	remaining atomic.Int64
	zero      chan struct{}
}

// NewTracker returns a tracker expecting n resolutions.
func NewTracker(n int) *Tracker {
	t := &Tracker{zero: make(chan struct{})}
	t.remaining.Store(int64(n))
	if n == 0 {
		close(t.zero)
	}
	return t
}

// Done resolves one path. Resolving more paths than were expected is a
// programming error and panics.
func (t *Tracker) Done() {
	switch n := t.remaining.Add(-1); {
	case n == 0:
		close(t.zero)
	case n < 0:
		panic(fmt.Sprintf("scan: tracker resolved %d times too often", -n))
	}
}

// Remaining returns the number of unresolved paths.
func (t *Tracker) Remaining() int64 {
	return t.remaining.Load()
}

// Zero returns a channel closed once every path has been resolved.
func (t *Tracker) Zero() <-chan struct{} {
	return t.zero
}
