// Package clock supplies wall-clock time to components that stamp records.
//
// Attendance is keyed by calendar day, so every component that needs "now"
// takes a Clock instead of calling time.Now directly. Tests substitute
// testutil.ManualClock to pin the day and make ordering deterministic.
package clock

import "time"

// Clock returns the current instant.
//
// Thread-safety: implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
}

// System reads the host clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

// Or returns c, or System when c is nil.
func Or(c Clock) Clock {
	if c == nil {
		return System{}
	}
	return c
}
