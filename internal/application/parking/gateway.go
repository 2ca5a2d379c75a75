package parking

import (
	"context"

	"github.com/parklot/backend/internal/domain/shared/valueobject"
)

// ChargeRequest carries the details the gateway needs to settle a charge
type ChargeRequest struct {
	Amount     valueobject.Money
	Method     string
	CardNumber string
	WalletID   string
}

// ChargeResult is the gateway's record of a settled charge
type ChargeResult struct {
	TransactionID string
}

// RefundRequest carries the details for returning money to the user
type RefundRequest struct {
	Amount valueobject.Money
	// OriginalTransactionID references the charge being refunded, when known.
	OriginalTransactionID string
}

// RefundResult is the gateway's record of a processed refund
type RefundResult struct {
	TransactionID string
}

// PaymentGateway abstracts the external payment processor. Implementations
// must return a transaction id unique across all charges and refunds.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}
