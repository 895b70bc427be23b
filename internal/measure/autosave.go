package measure

import (
	"sync"
	"time"
)

// DefaultAutosaveDelay is how long the project must sit unchanged before an
// autosave write happens.
const DefaultAutosaveDelay = 900 * time.Millisecond

// Autosaver coalesces bursts of mutations into one debounced background
// write. Bump never blocks the caller; a wait superseded by further
// mutations restarts instead of writing; write errors are swallowed.
type Autosaver struct {
	mu       sync.Mutex
	interval time.Duration
	save     func() error
	rev      uint64
	pending  bool
	closed   bool
	stop     chan struct{}
}

// NewAutosaver creates an autosaver that calls save after state has been
// quiet for the given interval.
func NewAutosaver(interval time.Duration, save func() error) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveDelay
	}
	return &Autosaver{
		interval: interval,
		save:     save,
		stop:     make(chan struct{}),
	}
}

// Bump records a state mutation and starts the debounce task if none is in
// flight.
func (a *Autosaver) Bump() {
	a.mu.Lock()
	a.rev++
	if a.pending || a.closed {
		a.mu.Unlock()
		return
	}
	a.pending = true
	seen := a.rev
	a.mu.Unlock()

	go a.wait(seen)
}

// Revision returns the mutation counter, mostly for tests.
func (a *Autosaver) Revision() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rev
}

func (a *Autosaver) wait(seen uint64) {
	timer := time.NewTimer(a.interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-a.stop:
			return
		}

		a.mu.Lock()
		if a.rev != seen {
			// More edits arrived during the wait; start over.
			seen = a.rev
			a.mu.Unlock()
			timer.Reset(a.interval)
			continue
		}
		a.mu.Unlock()

		_ = a.save() // best effort

		a.mu.Lock()
		if a.rev == seen {
			a.pending = false
			a.mu.Unlock()
			return
		}
		seen = a.rev
		a.mu.Unlock()
		timer.Reset(a.interval)
	}
}

// Close cancels any outstanding wait. Further Bumps are ignored.
func (a *Autosaver) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.stop)
	}
	a.mu.Unlock()
}
