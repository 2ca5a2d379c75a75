package parking

import (
	"context"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// SpotService manages the parking spot inventory
type SpotService struct {
	spotRepo parking.SpotRepository
	clock    shared.Clock
	logger   *zap.Logger
}

// NewSpotService creates a new SpotService
func NewSpotService(spotRepo parking.SpotRepository, clock shared.Clock, logger *zap.Logger) *SpotService {
	return &SpotService{
		spotRepo: spotRepo,
		clock:    clock,
		logger:   logger,
	}
}

// CreateSpot registers a new parking spot
func (s *SpotService) CreateSpot(ctx context.Context, req CreateSpotRequest) (*SpotResponse, error) {
	exists, err := s.spotRepo.ExistsByNumber(ctx, req.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Spot number already exists")
	}

	spot, err := parking.NewParkingSpot(req.Floor, req.Number, parking.SpotType(req.Type),
		valueobject.NewMoneyUSD(req.HourlyRate), s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.spotRepo.Save(ctx, spot); err != nil {
		return nil, err
	}

	s.logger.Info("Parking spot created",
		zap.String("spot_id", spot.ID.String()),
		zap.String("number", spot.Number),
	)
	resp := ToSpotResponse(spot)
	return &resp, nil
}

// GetSpot returns a single spot by id
func (s *SpotService) GetSpot(ctx context.Context, id uuid.UUID) (*SpotResponse, error) {
	spot, err := s.spotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSpotResponse(spot)
	return &resp, nil
}

// ListSpots returns spots matching the filter
func (s *SpotService) ListSpots(ctx context.Context, filter SpotListFilter) (*shared.Paginated[SpotResponse], error) {
	repoFilter := parking.SpotFilter{Filter: shared.DefaultFilter()}
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
	repoFilter.Floor = filter.Floor
	if filter.Type != nil {
		spotType := parking.SpotType(*filter.Type)
		repoFilter.Type = &spotType
	}
	repoFilter.IsOccupied = filter.IsOccupied

	spots, err := s.spotRepo.FindAll(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.spotRepo.Count(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	items := make([]SpotResponse, 0, len(spots))
	for i := range spots {
		items = append(items, ToSpotResponse(&spots[i]))
	}
	page := shared.NewPaginated(items, total, repoFilter.Page, repoFilter.PageSize)
	return &page, nil
}
