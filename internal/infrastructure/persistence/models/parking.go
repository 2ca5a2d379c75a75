package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/shopspring/decimal"
)

// ParkingSpotModel is the persistence model for the ParkingSpot entity.
type ParkingSpotModel struct {
	BaseModel
	Floor         int              `gorm:"not null;index:idx_spot_floor"`
	Number        string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	Type          parking.SpotType `gorm:"type:varchar(20);not null;index"`
	HourlyRate    decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	IsOccupied    bool             `gorm:"not null;default:false"`
	VehicleNumber *string          `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (ParkingSpotModel) TableName() string {
	return "parking_spots"
}

// ToDomain converts the persistence model to a domain ParkingSpot entity.
func (m *ParkingSpotModel) ToDomain() *parking.ParkingSpot {
	return &parking.ParkingSpot{
		BaseEntity:    m.BaseModel.ToDomain(),
		Floor:         m.Floor,
		Number:        m.Number,
		Type:          m.Type,
		HourlyRate:    m.HourlyRate,
		IsOccupied:    m.IsOccupied,
		VehicleNumber: m.VehicleNumber,
	}
}

// FromDomain populates the persistence model from a domain ParkingSpot entity.
func (m *ParkingSpotModel) FromDomain(s *parking.ParkingSpot) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Floor = s.Floor
	m.Number = s.Number
	m.Type = s.Type
	m.HourlyRate = s.HourlyRate
	m.IsOccupied = s.IsOccupied
	m.VehicleNumber = s.VehicleNumber
}

// ParkingSpotModelFromDomain creates a new persistence model from a domain entity.
func ParkingSpotModelFromDomain(s *parking.ParkingSpot) *ParkingSpotModel {
	m := &ParkingSpotModel{}
	m.FromDomain(s)
	return m
}

// BookingModel is the persistence model for the Booking entity.
type BookingModel struct {
	BaseModel
	UserID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_booking_user"`
	SpotID        uuid.UUID             `gorm:"type:uuid;not null;index:idx_booking_spot_window,priority:1"`
	VehicleNumber string                `gorm:"type:varchar(20);not null"`
	StartTime     time.Time             `gorm:"not null;index:idx_booking_spot_window,priority:2"`
	EndTime       time.Time             `gorm:"not null"`
	Status        parking.BookingStatus `gorm:"type:varchar(20);not null;index:idx_booking_status"`
	PaymentStatus parking.PaymentStatus `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking entity.
func (m *BookingModel) ToDomain() *parking.Booking {
	return &parking.Booking{
		BaseEntity:    m.BaseModel.ToDomain(),
		UserID:        m.UserID,
		SpotID:        m.SpotID,
		VehicleNumber: m.VehicleNumber,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		Amount:        m.Amount,
	}
}

// FromDomain populates the persistence model from a domain Booking entity.
func (m *BookingModel) FromDomain(b *parking.Booking) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.UserID = b.UserID
	m.SpotID = b.SpotID
	m.VehicleNumber = b.VehicleNumber
	m.StartTime = b.StartTime
	m.EndTime = b.EndTime
	m.Status = b.Status
	m.PaymentStatus = b.PaymentStatus
	m.Amount = b.Amount
}

// BookingModelFromDomain creates a new persistence model from a domain entity.
func BookingModelFromDomain(b *parking.Booking) *BookingModel {
	m := &BookingModel{}
	m.FromDomain(b)
	return m
}

// PaymentModel is the persistence model for the Payment ledger entity.
// Ledger rows are insert-only.
type PaymentModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primary_key"`
	BookingID     uuid.UUID             `gorm:"type:uuid;not null;index:idx_payment_booking"`
	Amount        decimal.Decimal       `gorm:"type:decimal(10,2);not null"`
	PaymentMethod parking.PaymentMethod `gorm:"type:varchar(20);not null"`
	TransactionID string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status        parking.PaymentStatus `gorm:"type:varchar(20);not null"`
	PaymentDate   time.Time             `gorm:"not null"`
	CreatedAt     time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *parking.Payment {
	return &parking.Payment{
		ID:            m.ID,
		BookingID:     m.BookingID,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		TransactionID: m.TransactionID,
		Status:        m.Status,
		PaymentDate:   m.PaymentDate,
		CreatedAt:     m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain entity.
func PaymentModelFromDomain(p *parking.Payment) *PaymentModel {
	return &PaymentModel{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Status:        p.Status,
		PaymentDate:   p.PaymentDate,
		CreatedAt:     p.CreatedAt,
	}
}
