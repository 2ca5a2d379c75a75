package parking

import (
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Policy holds the booking rules that are configuration rather than domain
// invariants.
type Policy struct {
	// MaxBookingSpan caps how far EndTime may sit past StartTime, including
	// extensions.
	MaxBookingSpan time.Duration
	// PastStartGrace allows a booking whose start time is slightly in the
	// past, covering users who book while already standing at the spot.
	PastStartGrace time.Duration
	// AmountEpsilon is the tolerance when comparing a client quote against
	// the computed amount.
	AmountEpsilon decimal.Decimal
}

// DefaultPolicy returns the standard booking policy
func DefaultPolicy() Policy {
	return Policy{
		MaxBookingSpan: 24 * time.Hour,
		PastStartGrace: 5 * time.Minute,
		AmountEpsilon:  decimal.NewFromFloat(0.01),
	}
}

// ValidateWindow checks a requested window against the policy limits.
// Both availability queries and reservations accept the same windows.
func (p Policy) ValidateWindow(window parking.TimeWindow, now time.Time) error {
	if window.Start.Before(now.Add(-p.PastStartGrace)) {
		return shared.NewDomainError("VALIDATION_ERROR", "Start time is in the past")
	}
	if window.Duration() > p.MaxBookingSpan {
		return shared.NewDomainError("VALIDATION_ERROR", "Window exceeds the maximum allowed span")
	}
	return nil
}

// SpotResponse represents a parking spot in API responses
type SpotResponse struct {
	ID            uuid.UUID       `json:"id"`
	Floor         int             `json:"floor"`
	Number        string          `json:"number"`
	Type          string          `json:"type"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	IsOccupied    bool            `json:"is_occupied"`
	VehicleNumber *string         `json:"vehicle_number,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToSpotResponse converts a domain spot to its API representation
func ToSpotResponse(spot *parking.ParkingSpot) SpotResponse {
	return SpotResponse{
		ID:            spot.ID,
		Floor:         spot.Floor,
		Number:        spot.Number,
		Type:          string(spot.Type),
		HourlyRate:    spot.HourlyRate,
		IsOccupied:    spot.IsOccupied,
		VehicleNumber: spot.VehicleNumber,
		CreatedAt:     spot.CreatedAt,
		UpdatedAt:     spot.UpdatedAt,
	}
}

// SpotListFilter represents filter options for spot listing
type SpotListFilter struct {
	Floor      *int    `form:"floor"`
	Type       *string `form:"type" binding:"omitempty,oneof=STANDARD COMPACT LARGE EV"`
	IsOccupied *bool   `form:"is_occupied"`
	Page       int     `form:"page" binding:"min=0"`
	PageSize   int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string  `form:"order_by"`
	OrderDir   string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AvailabilityRequest represents a query for available spots in a window
type AvailabilityRequest struct {
	StartTime time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Floor     *int      `form:"floor"`
	Type      *string   `form:"type" binding:"omitempty,oneof=STANDARD COMPACT LARGE EV"`
}

// AvailabilityResponse lists the spots free for the requested window
type AvailabilityResponse struct {
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Spots     []SpotResponse `json:"spots"`
}

// CreateSpotRequest represents a request to register a new spot
type CreateSpotRequest struct {
	Floor      int             `json:"floor"`
	Number     string          `json:"number" binding:"required"`
	Type       string          `json:"type" binding:"required,oneof=STANDARD COMPACT LARGE EV"`
	HourlyRate decimal.Decimal `json:"hourly_rate" binding:"required"`
}

// CreateBookingRequest represents a request to reserve one or more spots
// for the same window. VehicleNumbers pairs with SpotIDs by index.
type CreateBookingRequest struct {
	SpotIDs        []uuid.UUID `json:"spot_ids" binding:"required,min=1"`
	VehicleNumbers []string    `json:"vehicle_numbers" binding:"required,min=1,dive,vehicle_plate"`
	StartTime      time.Time   `json:"start_time" binding:"required"`
	EndTime        time.Time   `json:"end_time" binding:"required"`
	// ExpectedTotal carries the price quoted to the user across all
	// requested spots. The reservation is rejected when it no longer
	// matches the computed total.
	ExpectedTotal decimal.Decimal `json:"expected_total" binding:"required"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	SpotID        uuid.UUID       `json:"spot_id"`
	VehicleNumber string          `json:"vehicle_number"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToBookingResponse converts a domain booking to its API representation
func ToBookingResponse(b *parking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		SpotID:        b.SpotID,
		VehicleNumber: b.VehicleNumber,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Amount:        b.Amount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// CancelBookingResponse carries the settled amounts alongside the booking
type CancelBookingResponse struct {
	Booking        BookingResponse `json:"booking"`
	AmountCharged  decimal.Decimal `json:"amount_charged"`
	AmountRefunded decimal.Decimal `json:"amount_refunded"`
}

// ExtendBookingRequest represents a request to push a booking's end time out
type ExtendBookingRequest struct {
	NewEndTime time.Time `json:"new_end_time" binding:"required"`
}

// PayBookingRequest represents a request to settle the current charge
type PayBookingRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=CARD WALLET CASH"`
	// CardNumber is required for CARD payments; only the last four digits
	// are ever retained.
	CardNumber string `json:"card_number"`
	// WalletID is required for WALLET payments.
	WalletID string `json:"wallet_id"`
}

// PaymentResponse represents one payment ledger row in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	BookingID     uuid.UUID       `json:"booking_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// ToPaymentResponse converts a domain payment to its API representation
func ToPaymentResponse(p *parking.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		PaymentMethod: string(p.PaymentMethod),
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		PaymentDate:   p.PaymentDate,
	}
}

// BookingListFilter represents filter options for booking listing
type BookingListFilter struct {
	Status        *string `form:"status" binding:"omitempty,oneof=PENDING ACTIVE COMPLETED CANCELLED"`
	PaymentStatus *string `form:"payment_status" binding:"omitempty,oneof=PENDING PAID REFUNDED"`
	Page          int     `form:"page" binding:"min=0"`
	PageSize      int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string  `form:"order_by"`
	OrderDir      string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
