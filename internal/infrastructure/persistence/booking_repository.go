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

// GormBookingRepository implements BookingRepository using GORM
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormBookingRepository) WithTx(tx *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: tx}
}

// FindByID finds a booking by its ID
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*parking.Booking, error) {
	var model models.BookingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a booking by ID with a row lock held until the
// surrounding transaction ends
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*parking.Booking, error) {
	var model models.BookingModel
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

// FindByUser finds bookings for a user
func (r *GormBookingRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter parking.BookingFilter) ([]parking.Booking, error) {
	var bookingModels []models.BookingModel
	query := r.applyFilter(r.db.WithContext(ctx), filter).Where("user_id = ?", userID)
	query = applySortAndPaginate(query, filter.Filter, BookingSortFields, "created_at DESC")
	if err := query.Find(&bookingModels).Error; err != nil {
		return nil, err
	}
	return bookingModelsToDomain(bookingModels), nil
}

// FindBySpot finds bookings for a spot
func (r *GormBookingRepository) FindBySpot(ctx context.Context, spotID uuid.UUID, filter parking.BookingFilter) ([]parking.Booking, error) {
	var bookingModels []models.BookingModel
	query := r.applyFilter(r.db.WithContext(ctx), filter).Where("spot_id = ?", spotID)
	query = applySortAndPaginate(query, filter.Filter, BookingSortFields, "start_time ASC")
	if err := query.Find(&bookingModels).Error; err != nil {
		return nil, err
	}
	return bookingModelsToDomain(bookingModels), nil
}

// CountOverlapping counts PENDING and ACTIVE bookings for the spot whose
// half-open window overlaps [start, end), excluding excludeID when non-nil.
func (r *GormBookingRepository) CountOverlapping(ctx context.Context, spotID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.BookingModel{}).
		Where("spot_id = ?", spotID).
		Where("status IN ?", []string{string(parking.BookingStatusPending), string(parking.BookingStatusActive)}).
		Where("start_time < ? AND ? < end_time", end, start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDueForActivation finds paid PENDING bookings whose start time has been
// reached
func (r *GormBookingRepository) FindDueForActivation(ctx context.Context, now time.Time) ([]parking.Booking, error) {
	var bookingModels []models.BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND start_time <= ?",
			parking.BookingStatusPending, parking.PaymentStatusPaid, now).
		Order("start_time ASC").
		Find(&bookingModels).Error; err != nil {
		return nil, err
	}
	return bookingModelsToDomain(bookingModels), nil
}

// FindExpired finds ACTIVE bookings whose end time has passed. The window
// is half-open, so a booking is fully consumed the instant now reaches
// end_time; the comparison is inclusive to match the completion guard
// `now >= end_time` on the booking itself.
func (r *GormBookingRepository) FindExpired(ctx context.Context, now time.Time) ([]parking.Booking, error) {
	var bookingModels []models.BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", parking.BookingStatusActive, now).
		Order("end_time ASC").
		Find(&bookingModels).Error; err != nil {
		return nil, err
	}
	return bookingModelsToDomain(bookingModels), nil
}

// Save creates or updates a booking
func (r *GormBookingRepository) Save(ctx context.Context, booking *parking.Booking) error {
	model := models.BookingModelFromDomain(booking)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts bookings matching the filter
func (r *GormBookingRepository) Count(ctx context.Context, filter parking.BookingFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BookingModel{}), filter)
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies booking-specific filter conditions
func (r *GormBookingRepository) applyFilter(query *gorm.DB, filter parking.BookingFilter) *gorm.DB {
	if filter.SpotID != nil {
		query = query.Where("spot_id = ?", *filter.SpotID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.StartAfter != nil {
		query = query.Where("start_time >= ?", *filter.StartAfter)
	}
	if filter.EndBefore != nil {
		query = query.Where("end_time <= ?", *filter.EndBefore)
	}
	return query
}

func bookingModelsToDomain(bookingModels []models.BookingModel) []parking.Booking {
	bookings := make([]parking.Booking, len(bookingModels))
	for i := range bookingModels {
		bookings[i] = *bookingModels[i].ToDomain()
	}
	return bookings
}

// Ensure GormBookingRepository implements BookingRepository
var _ parking.BookingRepository = (*GormBookingRepository)(nil)
