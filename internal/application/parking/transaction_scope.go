package parking

import (
	"context"

	"github.com/parklot/backend/internal/domain/parking"
)

// TransactionScope provides transactional access to parking repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and are committed or
// rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all parking repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// SpotRepo returns the spot repository scoped to the current transaction
	SpotRepo() parking.SpotRepository
	// BookingRepo returns the booking repository scoped to the current transaction
	BookingRepo() parking.BookingRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() parking.PaymentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	spotRepo    parking.SpotRepository
	bookingRepo parking.BookingRepository
	paymentRepo parking.PaymentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	spotRepo parking.SpotRepository,
	bookingRepo parking.BookingRepository,
	paymentRepo parking.PaymentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		spotRepo:    spotRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// SpotRepo returns the spot repository.
func (s *NoOpTransactionScope) SpotRepo() parking.SpotRepository {
	return s.spotRepo
}

// BookingRepo returns the booking repository.
func (s *NoOpTransactionScope) BookingRepo() parking.BookingRepository {
	return s.bookingRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() parking.PaymentRepository {
	return s.paymentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
