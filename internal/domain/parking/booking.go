package parking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusActive, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states no transition may leave
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return target == BookingStatusActive || target == BookingStatusCancelled
	case BookingStatusActive:
		return target == BookingStatusCompleted || target == BookingStatusCancelled
	case BookingStatusCompleted, BookingStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentStatus represents the settlement status of a booking's charge
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Booking represents a claim on one spot for a bounded time window.
// Amount is mutable and always holds the current authoritative charge;
// it changes on extension and on early cancellation. Bookings are never
// physically deleted - COMPLETED and CANCELLED are terminal.
type Booking struct {
	shared.BaseEntity
	UserID        uuid.UUID
	SpotID        uuid.UUID
	VehicleNumber string
	StartTime     time.Time
	EndTime       time.Time
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Amount        decimal.Decimal
}

// TableName returns the database table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// NewBooking creates a new booking in PENDING status
func NewBooking(userID, spotID uuid.UUID, vehicleNumber string, window TimeWindow, amount valueobject.Money, now time.Time) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "User ID cannot be empty")
	}
	if spotID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Spot ID cannot be empty")
	}
	if vehicleNumber == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Vehicle number cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Amount cannot be negative")
	}

	return &Booking{
		BaseEntity:    shared.NewBaseEntity(now),
		UserID:        userID,
		SpotID:        spotID,
		VehicleNumber: vehicleNumber,
		StartTime:     window.Start,
		EndTime:       window.End,
		Status:        BookingStatusPending,
		PaymentStatus: PaymentStatusPending,
		Amount:        amount.Amount(),
	}, nil
}

// Window returns the booked interval as a TimeWindow
func (b *Booking) Window() TimeWindow {
	return TimeWindow{Start: b.StartTime, End: b.EndTime}
}

// AmountMoney returns the current charge as a Money value object
func (b *Booking) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(b.Amount)
}

// IsPaid returns true if the current charge is settled
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// IsTerminal returns true if the booking is completed or cancelled
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// Activate transitions PENDING -> ACTIVE.
// Guard: the booking must be paid and its start time must have been reached.
func (b *Booking) Activate(now time.Time) error {
	if !b.Status.CanTransitionTo(BookingStatusActive) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot activate booking in %s status", b.Status))
	}
	if b.PaymentStatus != PaymentStatusPaid {
		return shared.ErrPaymentRequired
	}
	if now.Before(b.StartTime) {
		return shared.ErrActivationNotDue
	}

	b.Status = BookingStatusActive
	b.UpdatedAt = now
	return nil
}

// Complete transitions ACTIVE -> COMPLETED when the window has elapsed.
// Only the reconciler sweep drives this transition.
func (b *Booking) Complete(now time.Time) error {
	if !b.Status.CanTransitionTo(BookingStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete booking in %s status", b.Status))
	}
	if now.Before(b.EndTime) {
		return shared.NewDomainError("INVALID_STATE", "Booking end time has not been reached")
	}

	b.Status = BookingStatusCompleted
	b.UpdatedAt = now
	return nil
}

// Cancel transitions PENDING or ACTIVE -> CANCELLED.
// Always permitted from either state; the caller settles amounts and
// occupancy according to the state the booking was cancelled from.
func (b *Booking) Cancel(now time.Time) error {
	if !b.Status.CanTransitionTo(BookingStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel booking in %s status", b.Status))
	}

	b.Status = BookingStatusCancelled
	b.UpdatedAt = now
	return nil
}

// Extend moves the end time of an ACTIVE booking forward and replaces the
// charge with newAmount. The extended window must stay within maxSpan of the
// original start time. Payment status reverts to PENDING: the additional
// charge requires a new payment cycle, but the booking remains ACTIVE and
// the vehicle parked regardless.
func (b *Booking) Extend(newEnd time.Time, newAmount valueobject.Money, maxSpan time.Duration, now time.Time) error {
	if b.Status != BookingStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot extend booking in %s status", b.Status))
	}
	if !newEnd.After(b.EndTime) {
		return shared.NewDomainError("VALIDATION_ERROR", "New end time must be after the current end time")
	}
	if newEnd.Sub(b.StartTime) > maxSpan {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Booking span cannot exceed %s from the original start time", maxSpan))
	}
	if newAmount.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Amount cannot be negative")
	}

	b.EndTime = newEnd
	b.Amount = newAmount.Amount()
	b.PaymentStatus = PaymentStatusPending
	b.UpdatedAt = now
	return nil
}

// MarkPaid records that the current charge has been settled
func (b *Booking) MarkPaid(now time.Time) error {
	if b.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a completed or cancelled booking")
	}
	if b.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Booking is already paid")
	}

	b.PaymentStatus = PaymentStatusPaid
	b.UpdatedAt = now
	return nil
}

// MarkRefunded records that the payment was returned to the user
func (b *Booking) MarkRefunded(now time.Time) {
	b.PaymentStatus = PaymentStatusRefunded
	b.UpdatedAt = now
}

// SetAmount replaces the authoritative charge
func (b *Booking) SetAmount(amount valueobject.Money, now time.Time) {
	b.Amount = amount.Amount()
	b.UpdatedAt = now
}
