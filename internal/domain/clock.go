package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic
// GeneratedAt snapshots.
var clock = clockwork.NewRealClock()

// Now returns the current time from the configured clock.
func Now() time.Time { return clock.Now() }

// SetClock swaps the time source for result snapshots. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
