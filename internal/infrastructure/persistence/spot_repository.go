package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSpotRepository implements SpotRepository using GORM
type GormSpotRepository struct {
	db *gorm.DB
}

// NewGormSpotRepository creates a new GormSpotRepository
func NewGormSpotRepository(db *gorm.DB) *GormSpotRepository {
	return &GormSpotRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormSpotRepository) WithTx(tx *gorm.DB) *GormSpotRepository {
	return &GormSpotRepository{db: tx}
}

// FindByID finds a spot by its ID
func (r *GormSpotRepository) FindByID(ctx context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	var model models.ParkingSpotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a spot by ID with a row lock held until the
// surrounding transaction ends
func (r *GormSpotRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	var model models.ParkingSpotModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a spot by its unique spot number
func (r *GormSpotRepository) FindByNumber(ctx context.Context, number string) (*parking.ParkingSpot, error) {
	var model models.ParkingSpotModel
	if err := r.db.WithContext(ctx).First(&model, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists spots matching the filter
func (r *GormSpotRepository) FindAll(ctx context.Context, filter parking.SpotFilter) ([]parking.ParkingSpot, error) {
	var spotModels []models.ParkingSpotModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)
	query = applySortAndPaginate(query, filter.Filter, SpotSortFields, "floor ASC, number ASC")
	if err := query.Find(&spotModels).Error; err != nil {
		return nil, err
	}
	return spotModelsToDomain(spotModels), nil
}

// FindAvailable lists spots with no PENDING or ACTIVE booking overlapping
// the half-open window [start, end), ordered by floor then number.
func (r *GormSpotRepository) FindAvailable(ctx context.Context, start, end time.Time, filter parking.SpotFilter) ([]parking.ParkingSpot, error) {
	var spotModels []models.ParkingSpotModel
	query := r.applyFilter(r.db.WithContext(ctx), filter).
		Where(`NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.spot_id = parking_spots.id
			  AND b.status IN ?
			  AND b.start_time < ?
			  AND ? < b.end_time
		)`, []string{string(parking.BookingStatusPending), string(parking.BookingStatusActive)}, end, start).
		Order("floor ASC, number ASC")
	if err := query.Find(&spotModels).Error; err != nil {
		return nil, err
	}
	return spotModelsToDomain(spotModels), nil
}

// Save creates or updates a spot
func (r *GormSpotRepository) Save(ctx context.Context, spot *parking.ParkingSpot) error {
	model := models.ParkingSpotModelFromDomain(spot)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts spots matching the filter
func (r *GormSpotRepository) Count(ctx context.Context, filter parking.SpotFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ParkingSpotModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a spot number is already taken
func (r *GormSpotRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ParkingSpotModel{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies spot-specific filter conditions
func (r *GormSpotRepository) applyFilter(query *gorm.DB, filter parking.SpotFilter) *gorm.DB {
	if filter.Floor != nil {
		query = query.Where("floor = ?", *filter.Floor)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.IsOccupied != nil {
		query = query.Where("is_occupied = ?", *filter.IsOccupied)
	}
	return query
}

func spotModelsToDomain(spotModels []models.ParkingSpotModel) []parking.ParkingSpot {
	spots := make([]parking.ParkingSpot, len(spotModels))
	for i := range spotModels {
		spots[i] = *spotModels[i].ToDomain()
	}
	return spots
}

// Ensure GormSpotRepository implements SpotRepository
var _ parking.SpotRepository = (*GormSpotRepository)(nil)
