package ports

import "time"

// Clock abstracts wall-clock access so batch timestamps can be pinned in
// tests. Production code uses SystemClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
