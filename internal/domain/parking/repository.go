package parking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/shared"
)

// SpotRepository defines the interface for parking spot persistence
type SpotRepository interface {
	// FindByID finds a spot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)

	// FindByIDForUpdate finds a spot by ID acquiring a row lock for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)

	// FindByNumber finds a spot by its unique spot number
	FindByNumber(ctx context.Context, number string) (*ParkingSpot, error)

	// FindAll lists spots matching the filter
	FindAll(ctx context.Context, filter SpotFilter) ([]ParkingSpot, error)

	// FindAvailable lists spots with no PENDING or ACTIVE booking
	// overlapping the given window, ordered by floor then number
	FindAvailable(ctx context.Context, start, end time.Time, filter SpotFilter) ([]ParkingSpot, error)

	// Save creates or updates a spot
	Save(ctx context.Context, spot *ParkingSpot) error

	// Count counts spots matching the filter
	Count(ctx context.Context, filter SpotFilter) (int64, error)

	// ExistsByNumber checks if a spot number is already taken
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

// SpotFilter extends shared.Filter with spot-specific filters
type SpotFilter struct {
	shared.Filter
	Floor      *int
	Type       *SpotType
	IsOccupied *bool
}

// BookingRepository defines the interface for booking persistence
type BookingRepository interface {
	// FindByID finds a booking by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate finds a booking by ID acquiring a row lock for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUser finds bookings for a user
	FindByUser(ctx context.Context, userID uuid.UUID, filter BookingFilter) ([]Booking, error)

	// FindBySpot finds bookings for a spot
	FindBySpot(ctx context.Context, spotID uuid.UUID, filter BookingFilter) ([]Booking, error)

	// CountOverlapping counts PENDING and ACTIVE bookings for the spot whose
	// window overlaps [start, end), excluding excludeID when non-nil
	CountOverlapping(ctx context.Context, spotID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int64, error)

	// FindDueForActivation finds paid PENDING bookings whose start time has
	// been reached
	FindDueForActivation(ctx context.Context, now time.Time) ([]Booking, error)

	// FindExpired finds ACTIVE bookings whose end time has passed
	FindExpired(ctx context.Context, now time.Time) ([]Booking, error)

	// Save creates or updates a booking
	Save(ctx context.Context, booking *Booking) error

	// Count counts bookings matching the filter
	Count(ctx context.Context, filter BookingFilter) (int64, error)
}

// BookingFilter extends shared.Filter with booking-specific filters
type BookingFilter struct {
	shared.Filter
	UserID        *uuid.UUID
	SpotID        *uuid.UUID
	Status        *BookingStatus
	PaymentStatus *PaymentStatus
	StartAfter    *time.Time
	EndBefore     *time.Time
}

// PaymentRepository defines the interface for the payment ledger.
// Rows are append-only; there is no update or delete.
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByBooking finds all ledger rows for a booking, oldest first
	FindByBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)

	// FindByTransactionID finds a payment by its gateway transaction id
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// Create appends a new ledger row
	Create(ctx context.Context, payment *Payment) error

	// ExistsByTransactionID checks if a transaction id was already recorded
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
}
