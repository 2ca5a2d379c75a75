package billing

import (
	"time"

	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BillableHours returns the number of whole hours charged for a duration.
// Any partial hour rounds up to the next full hour: 61 minutes bills as 2
// hours. Sub-second remainders are truncated before the ceiling so that
// clock jitter of less than a second never adds an hour.
func BillableHours(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	seconds := int64(d / time.Second)
	if seconds == 0 {
		return 1
	}
	hours := seconds / 3600
	if seconds%3600 > 0 {
		hours++
	}
	return hours
}

// BillableAmount computes the charge for parking from start to end at the
// given hourly rate, rounded half-up to cents.
func BillableAmount(start, end time.Time, hourlyRate valueobject.Money) (valueobject.Money, error) {
	if end.Before(start) {
		return valueobject.Money{}, shared.NewDomainError("VALIDATION_ERROR", "End time must not be before start time")
	}
	hours := BillableHours(end.Sub(start))
	return hourlyRate.MultiplyByInt(hours).RoundCents(), nil
}

// CurrentAmount computes the charge accrued by an in-progress booking as of
// now. Time past the booked end accrues nothing: the window is the cap, so a
// late cancellation settles at exactly the full booked amount.
func CurrentAmount(start, end, now time.Time, hourlyRate valueobject.Money) (valueobject.Money, error) {
	if now.After(end) {
		now = end
	}
	if now.Before(start) {
		now = start
	}
	return BillableAmount(start, now, hourlyRate)
}

// RefundAmount computes how much of a settled charge is returned when an
// active booking is cancelled at now. The refund is the paid amount minus
// the accrued charge, floored at zero.
func RefundAmount(paid valueobject.Money, accrued valueobject.Money) (valueobject.Money, error) {
	refund, err := paid.Subtract(accrued)
	if err != nil {
		return valueobject.Money{}, err
	}
	if refund.IsNegative() {
		return valueobject.Zero(paid.Currency()), nil
	}
	return refund.RoundCents(), nil
}

// QuoteMatches reports whether a client-supplied quote agrees with the
// computed amount within epsilon. Quotes travel as decimals, but clients
// that compute in binary floating point may be off by a fraction of a cent.
func QuoteMatches(quoted, computed valueobject.Money, epsilon decimal.Decimal) bool {
	if quoted.Currency() != computed.Currency() {
		return false
	}
	diff := quoted.Amount().Sub(computed.Amount()).Abs()
	return diff.LessThanOrEqual(epsilon)
}
