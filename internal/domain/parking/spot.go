package parking

import (
	"time"

	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SpotType classifies the physical size/kind of a parking spot
type SpotType string

const (
	SpotTypeStandard SpotType = "STANDARD"
	SpotTypeCompact  SpotType = "COMPACT"
	SpotTypeLarge    SpotType = "LARGE"
	SpotTypeEV       SpotType = "EV"
)

// IsValid checks if the type is a known SpotType
func (t SpotType) IsValid() bool {
	switch t {
	case SpotTypeStandard, SpotTypeCompact, SpotTypeLarge, SpotTypeEV:
		return true
	}
	return false
}

// ParkingSpot represents a uniquely identified physical parking location
// with a fixed hourly rate. Occupancy tracks physical presence: it is set
// when a booking activates and cleared when the booking completes or is
// cancelled while active. Spots are never deleted during normal operation.
type ParkingSpot struct {
	shared.BaseEntity
	Floor         int
	Number        string
	Type          SpotType
	HourlyRate    decimal.Decimal
	IsOccupied    bool
	VehicleNumber *string
}

// TableName returns the database table name for GORM
func (ParkingSpot) TableName() string {
	return "parking_spots"
}

// NewParkingSpot creates a new parking spot
func NewParkingSpot(floor int, number string, spotType SpotType, hourlyRate valueobject.Money, now time.Time) (*ParkingSpot, error) {
	if number == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Spot number cannot be empty")
	}
	if !spotType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown spot type")
	}
	if !hourlyRate.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Hourly rate must be positive")
	}

	return &ParkingSpot{
		BaseEntity: shared.NewBaseEntity(now),
		Floor:      floor,
		Number:     number,
		Type:       spotType,
		HourlyRate: hourlyRate.Amount(),
	}, nil
}

// Occupy marks the spot as physically occupied by the given vehicle
func (s *ParkingSpot) Occupy(vehicleNumber string, now time.Time) {
	s.IsOccupied = true
	s.VehicleNumber = &vehicleNumber
	s.UpdatedAt = now
}

// Release clears the occupancy flag and vehicle reference
func (s *ParkingSpot) Release(now time.Time) {
	s.IsOccupied = false
	s.VehicleNumber = nil
	s.UpdatedAt = now
}

// HourlyRateMoney returns the hourly rate as a Money value object
func (s *ParkingSpot) HourlyRateMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.HourlyRate)
}
