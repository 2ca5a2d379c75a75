package parking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReconcilerService is the periodic sweep that moves bookings past the
// transitions time alone triggers: paid PENDING bookings whose start time
// arrived become ACTIVE, and ACTIVE bookings whose end time passed become
// COMPLETED. Each booking is processed in its own transaction so one
// failure never stalls the rest of the sweep.
type ReconcilerService struct {
	txScope TransactionScope
	clock   shared.Clock
	logger  *zap.Logger
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(
	txScope TransactionScope,
	clock shared.Clock,
	logger *zap.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		txScope: txScope,
		clock:   clock,
		logger:  logger,
	}
}

// SweepStats contains statistics about one reconciler pass
type SweepStats struct {
	Promoted    int       `json:"promoted"`
	Completed   int       `json:"completed"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Sweep runs one reconciliation pass
func (s *ReconcilerService) Sweep(ctx context.Context) (*SweepStats, error) {
	now := s.clock.Now()
	stats := &SweepStats{ProcessedAt: now}

	due, expired, err := s.collect(ctx, now)
	if err != nil {
		s.logger.Error("Failed to collect bookings for sweep", zap.Error(err))
		return nil, err
	}
	if len(due) == 0 && len(expired) == 0 {
		s.logger.Debug("Reconciler sweep found nothing to do")
		return stats, nil
	}

	for _, id := range due {
		if err := s.promote(ctx, id, now); err != nil {
			s.logger.Error("Failed to promote booking",
				zap.String("booking_id", id.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Promoted++
	}

	for _, id := range expired {
		if err := s.complete(ctx, id, now); err != nil {
			s.logger.Error("Failed to complete booking",
				zap.String("booking_id", id.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Completed++
	}

	s.logger.Info("Reconciler sweep finished",
		zap.Int("promoted", stats.Promoted),
		zap.Int("completed", stats.Completed),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// collect gathers the ids of bookings the sweep must touch. Only ids are
// carried out of this read so each transition re-reads its booking under a
// row lock and re-checks the guard.
func (s *ReconcilerService) collect(ctx context.Context, now time.Time) (due, expired []uuid.UUID, err error) {
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		dueBookings, err := repos.BookingRepo().FindDueForActivation(ctx, now)
		if err != nil {
			return err
		}
		for i := range dueBookings {
			due = append(due, dueBookings[i].ID)
		}

		expiredBookings, err := repos.BookingRepo().FindExpired(ctx, now)
		if err != nil {
			return err
		}
		for i := range expiredBookings {
			expired = append(expired, expiredBookings[i].ID)
		}
		return nil
	})
	return due, expired, err
}

// promote activates one due booking and occupies its spot
func (s *ReconcilerService) promote(ctx context.Context, bookingID uuid.UUID, now time.Time) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := repos.BookingRepo().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		// The booking may have been cancelled or activated by the user
		// between collect and here.
		if booking.Status != parking.BookingStatusPending {
			return nil
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
		return repos.SpotRepo().Save(ctx, spot)
	})
}

// complete finishes one expired booking and releases its spot
func (s *ReconcilerService) complete(ctx context.Context, bookingID uuid.UUID, now time.Time) error {
	return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		booking, err := repos.BookingRepo().FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != parking.BookingStatusActive {
			return nil
		}
		if err := booking.Complete(now); err != nil {
			return err
		}

		spot, err := repos.SpotRepo().FindByIDForUpdate(ctx, booking.SpotID)
		if err != nil {
			return err
		}
		spot.Release(now)

		if err := repos.BookingRepo().Save(ctx, booking); err != nil {
			return err
		}
		return repos.SpotRepo().Save(ctx, spot)
	})
}
