package parking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/billing"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingService drives the booking lifecycle after reservation: payment,
// activation, extension and cancellation. Every state transition runs in a
// transaction with the booking row locked.
type BookingService struct {
	txScope TransactionScope
	gateway PaymentGateway
	policy  Policy
	clock   shared.Clock
	logger  *zap.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	txScope TransactionScope,
	gateway PaymentGateway,
	policy Policy,
	clock shared.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		txScope: txScope,
		gateway: gateway,
		policy:  policy,
		clock:   clock,
		logger:  logger,
	}
}

// GetBooking returns a booking owned by the user
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingResponse, error) {
	var resp BookingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := s.findOwnedBooking(ctx, repos, userID, bookingID, false)
		if err != nil {
			return err
		}
		resp = ToBookingResponse(booking)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBookings returns the user's bookings matching the filter
func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID, filter BookingListFilter) (*shared.Paginated[BookingResponse], error) {
	repoFilter := parking.BookingFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		repoFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		repoFilter.OrderDir = filter.OrderDir
	}
	if filter.Status != nil {
		status := parking.BookingStatus(*filter.Status)
		repoFilter.Status = &status
	}
	if filter.PaymentStatus != nil {
		status := parking.PaymentStatus(*filter.PaymentStatus)
		repoFilter.PaymentStatus = &status
	}

	var page shared.Paginated[BookingResponse]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		bookings, err := repos.BookingRepo().FindByUser(ctx, userID, repoFilter)
		if err != nil {
			return err
		}
		countFilter := repoFilter
		countFilter.UserID = &userID
		total, err := repos.BookingRepo().Count(ctx, countFilter)
		if err != nil {
			return err
		}
		items := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			items = append(items, ToBookingResponse(&bookings[i]))
		}
		page = shared.NewPaginated(items, total, repoFilter.Page, repoFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Pay settles the outstanding charge on a booking. The amount sent to the
// gateway is the booking's authoritative amount minus what the ledger shows
// as already settled, so paying after an extension charges only the delta.
func (s *BookingService) Pay(ctx context.Context, userID, bookingID uuid.UUID, req PayBookingRequest) (*PaymentResponse, error) {
	method := parking.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown payment method")
	}
	now := s.clock.Now()

	var resp PaymentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := s.findOwnedBooking(ctx, repos, userID, bookingID, true)
		if err != nil {
			return err
		}
		if booking.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE", "Cannot pay a completed or cancelled booking")
		}
		if booking.IsPaid() {
			return shared.NewDomainError("INVALID_STATE", "Booking is already paid")
		}

		outstanding, err := s.outstandingAmount(ctx, repos, booking)
		if err != nil {
			return err
		}
		if !outstanding.IsPositive() {
			return shared.NewDomainError("INVALID_STATE", "No outstanding amount to pay")
		}

		result, err := s.gateway.Charge(ctx, ChargeRequest{
			Amount:     outstanding,
			Method:     req.PaymentMethod,
			CardNumber: req.CardNumber,
			WalletID:   req.WalletID,
		})
		if err != nil {
			return err
		}

		exists, err := repos.PaymentRepo().ExistsByTransactionID(ctx, result.TransactionID)
		if err != nil {
			return err
		}
		if exists {
			return shared.ErrDuplicateTransaction
		}

		payment, err := parking.NewPayment(booking.ID, outstanding, method, result.TransactionID, now)
		if err != nil {
			return err
		}
		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return err
		}
		if err := booking.MarkPaid(now); err != nil {
			return err
		}
		if err := repos.BookingRepo().Save(ctx, booking); err != nil {
			return err
		}
		resp = ToPaymentResponse(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking paid",
		zap.String("booking_id", bookingID.String()),
		zap.String("transaction_id", resp.TransactionID),
		zap.String("amount", resp.Amount.String()),
	)
	return &resp, nil
}

// Activate transitions a paid PENDING booking to ACTIVE and marks the spot
// occupied by the booking's vehicle.
func (s *BookingService) Activate(ctx context.Context, userID, bookingID uuid.UUID) (*BookingResponse, error) {
	now := s.clock.Now()

	var resp BookingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := s.findOwnedBooking(ctx, repos, userID, bookingID, true)
		if err != nil {
			return err
		}
		if err := booking.Activate(now); err != nil {
			return err
		}

		spot, err := repos.SpotRepo().FindByIDForUpdate(ctx, booking.SpotID)
		if err != nil {
			return err
		}
		spot.Occupy(booking.VehicleNumber, now)

		if err := repos.BookingRepo().Save(ctx, booking); err != nil {
			return err
		}
		if err := repos.SpotRepo().Save(ctx, spot); err != nil {
			return err
		}
		resp = ToBookingResponse(booking)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking activated", zap.String("booking_id", bookingID.String()))
	return &resp, nil
}

// Cancel transitions a PENDING or ACTIVE booking to CANCELLED and settles
// the money. A pending cancellation refunds everything paid. An active
// cancellation keeps the accrued ceiling-hour charge and refunds the rest;
// the spot is released.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uuid.UUID) (*CancelBookingResponse, error) {
	now := s.clock.Now()

	var resp CancelBookingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := s.findOwnedBooking(ctx, repos, userID, bookingID, true)
		if err != nil {
			return err
		}

		wasActive := booking.Status == parking.BookingStatusActive
		wasPaid := booking.IsPaid()
		paidAmount := booking.AmountMoney()

		if err := booking.Cancel(now); err != nil {
			return err
		}

		charged := valueobject.ZeroUSD()
		refunded := valueobject.ZeroUSD()

		if wasActive {
			spot, err := repos.SpotRepo().FindByIDForUpdate(ctx, booking.SpotID)
			if err != nil {
				return err
			}

			charged, err = billing.CurrentAmount(booking.StartTime, booking.EndTime, now, spot.HourlyRateMoney())
			if err != nil {
				return err
			}
			if wasPaid {
				refunded, err = billing.RefundAmount(paidAmount, charged)
				if err != nil {
					return err
				}
			}
			booking.SetAmount(charged, now)

			spot.Release(now)
			if err := repos.SpotRepo().Save(ctx, spot); err != nil {
				return err
			}
		} else if wasPaid {
			refunded = paidAmount
			booking.SetAmount(valueobject.ZeroUSD(), now)
		}

		if refunded.IsPositive() {
			if err := s.recordRefund(ctx, repos, booking, refunded, now); err != nil {
				return err
			}
			booking.MarkRefunded(now)
		}

		if err := repos.BookingRepo().Save(ctx, booking); err != nil {
			return err
		}

		resp = CancelBookingResponse{
			Booking:        ToBookingResponse(booking),
			AmountCharged:  charged.Amount(),
			AmountRefunded: refunded.Amount(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("amount_charged", resp.AmountCharged.String()),
		zap.String("amount_refunded", resp.AmountRefunded.String()),
	)
	return &resp, nil
}

// Extend pushes an ACTIVE booking's end time forward. The new charge is the
// amount accrued so far plus the extension hours at the spot's current rate,
// each part rounded on its own, and the extension window must be free of
// competing bookings.
func (s *BookingService) Extend(ctx context.Context, userID, bookingID uuid.UUID, req ExtendBookingRequest) (*BookingResponse, error) {
	now := s.clock.Now()

	var resp BookingResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := s.findOwnedBooking(ctx, repos, userID, bookingID, true)
		if err != nil {
			return err
		}

		spot, err := repos.SpotRepo().FindByIDForUpdate(ctx, booking.SpotID)
		if err != nil {
			return err
		}

		if !req.NewEndTime.After(booking.EndTime) {
			return shared.NewDomainError("VALIDATION_ERROR", "New end time must be after the current end time")
		}
		overlapping, err := repos.BookingRepo().CountOverlapping(ctx, booking.SpotID, booking.EndTime, req.NewEndTime, &booking.ID)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return shared.ErrSpotUnavailable
		}

		accrued, err := billing.CurrentAmount(booking.StartTime, booking.EndTime, now, spot.HourlyRateMoney())
		if err != nil {
			return err
		}
		additional, err := billing.BillableAmount(booking.EndTime, req.NewEndTime, spot.HourlyRateMoney())
		if err != nil {
			return err
		}
		newAmount := accrued.MustAdd(additional)
		if err := booking.Extend(req.NewEndTime, newAmount, s.policy.MaxBookingSpan, now); err != nil {
			return err
		}
		if err := repos.BookingRepo().Save(ctx, booking); err != nil {
			return err
		}
		resp = ToBookingResponse(booking)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking extended",
		zap.String("booking_id", bookingID.String()),
		zap.Time("new_end_time", resp.EndTime),
		zap.String("amount", resp.Amount.String()),
	)
	return &resp, nil
}

// ListPayments returns the full payment ledger for a booking owned by the user
func (s *BookingService) ListPayments(ctx context.Context, userID, bookingID uuid.UUID) ([]PaymentResponse, error) {
	var responses []PaymentResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := s.findOwnedBooking(ctx, repos, userID, bookingID, false); err != nil {
			return err
		}
		payments, err := repos.PaymentRepo().FindByBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		responses = make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			responses = append(responses, ToPaymentResponse(&payments[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// findOwnedBooking loads a booking and verifies ownership. forUpdate locks
// the row for the remainder of the transaction.
func (s *BookingService) findOwnedBooking(ctx context.Context, repos TransactionalRepositories, userID, bookingID uuid.UUID, forUpdate bool) (*parking.Booking, error) {
	var booking *parking.Booking
	var err error
	if forUpdate {
		booking, err = repos.BookingRepo().FindByIDForUpdate(ctx, bookingID)
	} else {
		booking, err = repos.BookingRepo().FindByID(ctx, bookingID)
	}
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, shared.ErrForbidden
	}
	return booking, nil
}

// outstandingAmount is the booking amount minus net settled ledger rows
func (s *BookingService) outstandingAmount(ctx context.Context, repos TransactionalRepositories, booking *parking.Booking) (valueobject.Money, error) {
	payments, err := repos.PaymentRepo().FindByBooking(ctx, booking.ID)
	if err != nil {
		return valueobject.Money{}, err
	}
	settled := decimal.Zero
	for i := range payments {
		switch payments[i].Status {
		case parking.PaymentStatusPaid:
			settled = settled.Add(payments[i].Amount)
		case parking.PaymentStatusRefunded:
			settled = settled.Sub(payments[i].Amount)
		}
	}
	return valueobject.NewMoneyUSD(booking.Amount.Sub(settled)).RoundCents(), nil
}

// recordRefund sends the refund through the gateway and appends the ledger
// row. The refund references the most recent settled charge so the gateway
// can route the money back the way it came.
func (s *BookingService) recordRefund(ctx context.Context, repos TransactionalRepositories, booking *parking.Booking, amount valueobject.Money, now time.Time) error {
	payments, err := repos.PaymentRepo().FindByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}
	method := parking.PaymentMethodCard
	originalTxnID := ""
	for i := len(payments) - 1; i >= 0; i-- {
		if payments[i].Status == parking.PaymentStatusPaid {
			method = payments[i].PaymentMethod
			originalTxnID = payments[i].TransactionID
			break
		}
	}

	result, err := s.gateway.Refund(ctx, RefundRequest{
		Amount:                amount,
		OriginalTransactionID: originalTxnID,
	})
	if err != nil {
		return err
	}

	refund, err := parking.NewRefund(booking.ID, amount, method, result.TransactionID, now)
	if err != nil {
		return err
	}
	return repos.PaymentRepo().Create(ctx, refund)
}
