package parking

import (
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodCash   PaymentMethod = "CASH"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodCash:
		return true
	}
	return false
}

// Payment is one row of the append-only payment ledger. A booking may have
// many rows: the initial payment, extension payments, and refunds. Rows are
// never mutated after insert.
type Payment struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	TransactionID string
	Status        PaymentStatus
	PaymentDate   time.Time
	CreatedAt     time.Time
}

// TableName returns the database table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a ledger row for a settled charge
func NewPayment(bookingID uuid.UUID, amount valueobject.Money, method PaymentMethod, transactionID string, now time.Time) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Booking ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment method")
	}
	if transactionID == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Transaction ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}

	return &Payment{
		ID:            uuid.New(),
		BookingID:     bookingID,
		Amount:        amount.Amount(),
		PaymentMethod: method,
		TransactionID: transactionID,
		Status:        PaymentStatusPaid,
		PaymentDate:   now,
		CreatedAt:     now,
	}, nil
}

// NewRefund creates a ledger row for a returned amount
func NewRefund(bookingID uuid.UUID, amount valueobject.Money, method PaymentMethod, transactionID string, now time.Time) (*Payment, error) {
	p, err := NewPayment(bookingID, amount, method, transactionID, now)
	if err != nil {
		return nil, err
	}
	p.Status = PaymentStatusRefunded
	return p, nil
}

// AmountMoney returns the payment amount as a Money value object
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}
