package shared

import "time"

// Clock supplies the current time in the system's canonical time zone.
// All duration and lifecycle math consumes time through this interface so
// tests can inject fixed instants instead of depending on the wall clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a SystemClock for the given location.
// A nil location falls back to time.Local.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.Local
	}
	return &SystemClock{loc: loc}
}

// Now returns the current time in the clock's location.
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now returns the function's result.
func (f ClockFunc) Now() time.Time {
	return f()
}

// FixedClock returns a Clock that always reports the given instant.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
