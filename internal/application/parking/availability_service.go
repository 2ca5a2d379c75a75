package parking

import (
	"context"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AvailabilityService answers whether spots are free for a time window.
// A spot is available when no PENDING or ACTIVE booking overlaps the
// requested half-open window; COMPLETED and CANCELLED bookings never block.
// Queried windows obey the same policy limits as reservations, so the
// listing never offers a window that a reservation would then reject.
type AvailabilityService struct {
	spotRepo    parking.SpotRepository
	bookingRepo parking.BookingRepository
	policy      Policy
	clock       shared.Clock
	logger      *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	spotRepo parking.SpotRepository,
	bookingRepo parking.BookingRepository,
	policy Policy,
	clock shared.Clock,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		spotRepo:    spotRepo,
		bookingRepo: bookingRepo,
		policy:      policy,
		clock:       clock,
		logger:      logger,
	}
}

// IsSpotAvailable checks a single spot against the window. excludeBookingID,
// when non-nil, removes that booking from consideration so a booking's own
// window never blocks its extension.
func (s *AvailabilityService) IsSpotAvailable(ctx context.Context, spotID uuid.UUID, window parking.TimeWindow, excludeBookingID *uuid.UUID) (bool, error) {
	count, err := s.bookingRepo.CountOverlapping(ctx, spotID, window.Start, window.End, excludeBookingID)
	if err != nil {
		s.logger.Error("Failed to count overlapping bookings",
			zap.String("spot_id", spotID.String()),
			zap.Error(err),
		)
		return false, err
	}
	return count == 0, nil
}

// FindAvailableSpots lists all spots free for the requested window,
// ordered by floor then spot number.
func (s *AvailabilityService) FindAvailableSpots(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	window, err := parking.NewTimeWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateWindow(window, s.clock.Now()); err != nil {
		return nil, err
	}

	filter := parking.SpotFilter{Filter: shared.DefaultFilter()}
	if req.Floor != nil {
		filter.Floor = req.Floor
	}
	if req.Type != nil {
		spotType := parking.SpotType(*req.Type)
		if !spotType.IsValid() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Unknown spot type")
		}
		filter.Type = &spotType
	}

	spots, err := s.spotRepo.FindAvailable(ctx, window.Start, window.End, filter)
	if err != nil {
		s.logger.Error("Failed to find available spots", zap.Error(err))
		return nil, err
	}

	responses := make([]SpotResponse, 0, len(spots))
	for i := range spots {
		responses = append(responses, ToSpotResponse(&spots[i]))
	}

	return &AvailabilityResponse{
		StartTime: window.Start,
		EndTime:   window.End,
		Spots:     responses,
	}, nil
}
