package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level time source behind the "now" date fallback.
// Production code uses the real clock; tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for date fallbacks. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
