package providers

import "github.com/jonboulle/clockwork"

// NewClock is the wall clock every timer and scheduler in the process runs on.
func NewClock() clockwork.Clock {
	return clockwork.NewRealClock()
}
