package gallery

import (
	"strings"
	"time"
)

// DebounceQuiet is how long the search input must be stable before its value
// is committed to the query key.
const DebounceQuiet = 300 * time.Millisecond

// DebounceState enumerates the phases of the search debouncer.
type DebounceState int

const (
	// DebounceIdle means no keystroke has been observed since the last
	// commit (or ever).
	DebounceIdle DebounceState = iota
	// DebouncePending means a keystroke is waiting out the quiet period.
	DebouncePending
	// DebounceCommitted means the last observed value has been committed.
	DebounceCommitted
)

// Debouncer is the cancellable-timer state machine behind the search box.
// It is pure: callers pass in the current time, so restart and expiry
// behavior is testable without real timers. The Controller drives it with a
// time.Timer.
type Debouncer struct {
	quiet     time.Duration
	state     DebounceState
	pending   string
	deadline  time.Time
	committed string
}

// NewDebouncer creates a debouncer with the given quiet period.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Observe records a keystroke. Any pending commit is cancelled and the quiet
// period restarts from now.
func (d *Debouncer) Observe(value string, now time.Time) {
	d.state = DebouncePending
	d.pending = value
	d.deadline = now.Add(d.quiet)
}

// Expire commits the pending value if its quiet period has elapsed. It
// returns the committed value and true exactly when a commit happened; a call
// before the deadline, or with nothing pending, changes nothing. The
// committed value is whitespace-trimmed.
func (d *Debouncer) Expire(now time.Time) (string, bool) {
	if d.state != DebouncePending || now.Before(d.deadline) {
		return "", false
	}
	d.state = DebounceCommitted
	d.committed = strings.TrimSpace(d.pending)
	return d.committed, true
}

// Committed returns the last committed value.
func (d *Debouncer) Committed() string {
	return d.committed
}

// State returns the current phase.
func (d *Debouncer) State() DebounceState {
	return d.state
}

// Deadline returns when the pending value becomes committable. Only
// meaningful in the pending state.
func (d *Debouncer) Deadline() time.Time {
	return d.deadline
}

// Reset drops any pending and committed value, returning to idle. Used by the
// gallery "reset all" action.
func (d *Debouncer) Reset() {
	d.state = DebounceIdle
	d.pending = ""
	d.committed = ""
	d.deadline = time.Time{}
}
