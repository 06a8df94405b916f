package rental

import "time"

// Clock abstracts wall-clock access so the timer can run against a
// virtual clock in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
