package parking

import (
	"bytes"
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/billing"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ReservationService allocates spots to new bookings. The overlap check and
// the booking insert run in one transaction with the spot row locked, so two
// concurrent requests for the same spot and window cannot both succeed.
type ReservationService struct {
	txScope TransactionScope
	policy  Policy
	clock   shared.Clock
	logger  *zap.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(
	txScope TransactionScope,
	policy Policy,
	clock shared.Clock,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		txScope: txScope,
		policy:  policy,
		clock:   clock,
		logger:  logger,
	}
}

// Reserve creates a PENDING booking for the requested spot and window.
// The charge is computed server-side per spot from its hourly rate, and the
// sum across all requested spots must agree with the client's expected total
// within the policy epsilon. All bookings are inserted in one transaction:
// if any spot is taken or the total is stale, none are created.
func (s *ReservationService) Reserve(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) ([]BookingResponse, error) {
	now := s.clock.Now()

	window, err := parking.NewTimeWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateWindow(window, now); err != nil {
		return nil, err
	}
	if len(req.SpotIDs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one spot is required")
	}
	if len(req.VehicleNumbers) != len(req.SpotIDs) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Vehicle numbers must pair with spots one to one")
	}
	seen := make(map[uuid.UUID]struct{}, len(req.SpotIDs))
	for _, spotID := range req.SpotIDs {
		if _, dup := seen[spotID]; dup {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Duplicate spot in reservation request")
		}
		seen[spotID] = struct{}{}
	}

	// Lock spots in a fixed order so two multi-spot requests sharing spots
	// cannot deadlock on each other's row locks.
	order := make([]int, len(req.SpotIDs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return bytes.Compare(req.SpotIDs[order[a]][:], req.SpotIDs[order[b]][:]) < 0
	})

	bookings := make([]*parking.Booking, len(req.SpotIDs))
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Lock every spot row before counting overlaps. Reservations for a
		// spot serialize on its lock, so the counts cannot go stale before
		// the inserts commit.
		amounts := make([]valueobject.Money, len(req.SpotIDs))
		total := valueobject.ZeroUSD()
		for _, i := range order {
			spot, err := repos.SpotRepo().FindByIDForUpdate(ctx, req.SpotIDs[i])
			if err != nil {
				return err
			}

			overlapping, err := repos.BookingRepo().CountOverlapping(ctx, spot.ID, window.Start, window.End, nil)
			if err != nil {
				return err
			}
			if overlapping > 0 {
				return shared.ErrSpotUnavailable
			}

			amounts[i], err = billing.BillableAmount(window.Start, window.End, spot.HourlyRateMoney())
			if err != nil {
				return err
			}
			total = total.MustAdd(amounts[i])
		}

		expected := valueobject.NewMoneyUSD(req.ExpectedTotal)
		if !billing.QuoteMatches(expected, total, s.policy.AmountEpsilon) {
			return shared.ErrAmountMismatch
		}

		for i, spotID := range req.SpotIDs {
			booking, err := parking.NewBooking(userID, spotID, req.VehicleNumbers[i], window, amounts[i], now)
			if err != nil {
				return err
			}
			if err := repos.BookingRepo().Save(ctx, booking); err != nil {
				return err
			}
			bookings[i] = booking
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]BookingResponse, len(bookings))
	for i, booking := range bookings {
		responses[i] = ToBookingResponse(booking)
		s.logger.Info("Booking reserved",
			zap.String("booking_id", booking.ID.String()),
			zap.String("spot_id", booking.SpotID.String()),
			zap.Time("start_time", booking.StartTime),
			zap.Time("end_time", booking.EndTime),
			zap.String("amount", booking.Amount.String()),
		)
	}
	return responses, nil
}
