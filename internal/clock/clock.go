// Package clock provides an abstraction for time operations to improve
// testability. Age-based checks like the wave planner's stale-draft
// detection go through the Clock interface so tests can pin time.
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Fixed implements Clock with a settable instant. Advance moves it
// forward, which is enough for phase-history and duration assertions.
type Fixed struct {
	t time.Time
}

// NewFixed creates a Fixed clock pinned to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time {
	return f.t
}

// Advance moves the pinned instant forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.t = f.t.Add(d)
}

// Ensure implementations satisfy Clock.
var (
	_ Clock = RealClock{}
	_ Clock = (*Fixed)(nil)
)
