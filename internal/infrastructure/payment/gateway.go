package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appparking "github.com/parklot/backend/internal/application/parking"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SimulatedGateway is an in-process payment processor. Charges and refunds
// always settle, but instrument details are still validated so the API
// surface behaves like a real processor.
type SimulatedGateway struct {
	logger *zap.Logger
}

// NewSimulatedGateway creates a SimulatedGateway
func NewSimulatedGateway(logger *zap.Logger) *SimulatedGateway {
	return &SimulatedGateway{logger: logger}
}

// Charge settles a charge and returns a fresh transaction id
func (g *SimulatedGateway) Charge(ctx context.Context, req appparking.ChargeRequest) (*appparking.ChargeResult, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "charge amount must be positive")
	}

	switch parking.PaymentMethod(req.Method) {
	case parking.PaymentMethodCard:
		if err := validateCardNumber(req.CardNumber); err != nil {
			return nil, err
		}
	case parking.PaymentMethodWallet:
		if strings.TrimSpace(req.WalletID) == "" {
			return nil, shared.NewDomainError("INVALID_INPUT", "wallet id is required for wallet payments")
		}
	case parking.PaymentMethodCash:
		// Nothing to verify up front
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unsupported payment method: %s", req.Method))
	}

	txnID := newTransactionID("ch")
	g.logger.Info("Charge settled",
		zap.String("transaction_id", txnID),
		zap.String("method", req.Method),
		zap.String("amount", req.Amount.String()),
	)

	return &appparking.ChargeResult{TransactionID: txnID}, nil
}

// Refund returns money against a prior charge and records its own
// transaction id
func (g *SimulatedGateway) Refund(ctx context.Context, req appparking.RefundRequest) (*appparking.RefundResult, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "refund amount must be positive")
	}

	txnID := newTransactionID("re")
	g.logger.Info("Refund processed",
		zap.String("transaction_id", txnID),
		zap.String("original_transaction_id", req.OriginalTransactionID),
		zap.String("amount", req.Amount.String()),
	)

	return &appparking.RefundResult{TransactionID: txnID}, nil
}

func validateCardNumber(cardNumber string) error {
	digits := strings.ReplaceAll(strings.TrimSpace(cardNumber), " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		return shared.NewDomainError("INVALID_INPUT", "card number must be 12 to 19 digits")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_INPUT", "card number must contain only digits")
		}
	}
	return nil
}

func newTransactionID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String())
}

// Ensure SimulatedGateway implements PaymentGateway
var _ appparking.PaymentGateway = (*SimulatedGateway)(nil)
