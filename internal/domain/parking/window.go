package parking

import (
	"time"

	"github.com/parklot/backend/internal/domain/shared"
)

// TimeWindow is a half-open interval [Start, End) in the canonical time zone.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow creates a validated time window.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, shared.NewDomainError("VALIDATION_ERROR", "End time must be after start time")
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two half-open intervals share at least one instant.
// [a,b) and [c,d) overlap iff a < d && c < b; the four naive sub-cases
// (contains, contained-by, partial-left, partial-right) all reduce to this
// single inequality, which is exact at boundary instants.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains reports whether the instant falls inside the half-open interval.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
