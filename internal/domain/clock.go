package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// CreatedAt stamps, "today" windows, and statistics all read from it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the injected clock. Collaborating
// packages stamp CreatedAt through this so frozen test clocks apply
// everywhere.
func Now() time.Time {
	return clock.Now()
}
