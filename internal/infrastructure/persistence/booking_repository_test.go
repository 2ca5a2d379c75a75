package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parklot/backend/internal/infrastructure/persistence/models"
)

func setupBookingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ParkingSpotModel{}, &models.BookingModel{}, &models.PaymentModel{})
	require.NoError(t, err)

	return db
}

var bookingTestBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func seedBooking(t *testing.T, repo *GormBookingRepository, spotID uuid.UUID, start, end time.Time, status parking.BookingStatus, paymentStatus parking.PaymentStatus) *parking.Booking {
	t.Helper()
	window, err := parking.NewTimeWindow(start, end)
	require.NoError(t, err)
	booking, err := parking.NewBooking(uuid.New(), spotID, "KA-01-AB-1234", window,
		valueobject.NewMoneyUSDFromFloat(10), start.Add(-time.Hour))
	require.NoError(t, err)
	booking.Status = status
	booking.PaymentStatus = paymentStatus
	require.NoError(t, repo.Save(context.Background(), booking))
	return booking
}

func TestGormBookingRepository_SaveAndFindByID(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()

	spotID := uuid.New()
	booking := seedBooking(t, repo, spotID, bookingTestBase, bookingTestBase.Add(2*time.Hour),
		parking.BookingStatusPending, parking.PaymentStatusPending)

	found, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, spotID, found.SpotID)
	assert.Equal(t, parking.BookingStatusPending, found.Status)
	assert.True(t, booking.Amount.Equal(found.Amount))
}

func TestGormBookingRepository_CountOverlapping(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()

	spotID := uuid.New()
	booking := seedBooking(t, repo, spotID, bookingTestBase, bookingTestBase.Add(2*time.Hour),
		parking.BookingStatusPending, parking.PaymentStatusPending)

	t.Run("counts overlapping pending booking", func(t *testing.T) {
		count, err := repo.CountOverlapping(ctx, spotID, bookingTestBase.Add(time.Hour), bookingTestBase.Add(3*time.Hour), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("back to back window does not overlap", func(t *testing.T) {
		count, err := repo.CountOverlapping(ctx, spotID, bookingTestBase.Add(2*time.Hour), bookingTestBase.Add(3*time.Hour), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("other spot does not count", func(t *testing.T) {
		count, err := repo.CountOverlapping(ctx, uuid.New(), bookingTestBase, bookingTestBase.Add(time.Hour), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("excluded booking does not count", func(t *testing.T) {
		count, err := repo.CountOverlapping(ctx, spotID, bookingTestBase, bookingTestBase.Add(time.Hour), &booking.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("cancelled booking does not count", func(t *testing.T) {
		cancelled := seedBooking(t, repo, spotID, bookingTestBase.Add(4*time.Hour), bookingTestBase.Add(6*time.Hour),
			parking.BookingStatusCancelled, parking.PaymentStatusRefunded)
		count, err := repo.CountOverlapping(ctx, spotID, cancelled.StartTime, cancelled.EndTime, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestGormBookingRepository_FindDueForActivation(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()

	spotID := uuid.New()
	due := seedBooking(t, repo, spotID, bookingTestBase, bookingTestBase.Add(2*time.Hour),
		parking.BookingStatusPending, parking.PaymentStatusPaid)
	// Unpaid, not due
	seedBooking(t, repo, uuid.New(), bookingTestBase, bookingTestBase.Add(2*time.Hour),
		parking.BookingStatusPending, parking.PaymentStatusPending)
	// Paid but in the future
	seedBooking(t, repo, uuid.New(), bookingTestBase.Add(5*time.Hour), bookingTestBase.Add(6*time.Hour),
		parking.BookingStatusPending, parking.PaymentStatusPaid)

	found, err := repo.FindDueForActivation(ctx, bookingTestBase.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)
}

func TestGormBookingRepository_FindExpired(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewGormBookingRepository(db)
	ctx := context.Background()

	expired := seedBooking(t, repo, uuid.New(), bookingTestBase, bookingTestBase.Add(2*time.Hour),
		parking.BookingStatusActive, parking.PaymentStatusPaid)
	// Still running
	seedBooking(t, repo, uuid.New(), bookingTestBase, bookingTestBase.Add(6*time.Hour),
		parking.BookingStatusActive, parking.PaymentStatusPaid)
	// Already terminal
	seedBooking(t, repo, uuid.New(), bookingTestBase, bookingTestBase.Add(time.Hour),
		parking.BookingStatusCompleted, parking.PaymentStatusPaid)

	found, err := repo.FindExpired(ctx, bookingTestBase.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, expired.ID, found[0].ID)
}

func TestGormSpotRepository_FindAvailable(t *testing.T) {
	db := setupBookingTestDB(t)
	spotRepo := NewGormSpotRepository(db)
	bookingRepo := NewGormBookingRepository(db)
	ctx := context.Background()

	newSpot := func(floor int, number string) *parking.ParkingSpot {
		spot, err := parking.NewParkingSpot(floor, number, parking.SpotTypeStandard,
			valueobject.NewMoneyUSDFromFloat(5), bookingTestBase)
		require.NoError(t, err)
		require.NoError(t, spotRepo.Save(ctx, spot))
		return spot
	}

	booked := newSpot(1, "A-01")
	free := newSpot(1, "A-02")

	seedBooking(t, bookingRepo, booked.ID, bookingTestBase, bookingTestBase.Add(2*time.Hour),
		parking.BookingStatusPending, parking.PaymentStatusPending)

	t.Run("excludes spot with overlapping booking", func(t *testing.T) {
		spots, err := spotRepo.FindAvailable(ctx, bookingTestBase.Add(time.Hour), bookingTestBase.Add(3*time.Hour), parking.SpotFilter{})
		require.NoError(t, err)
		require.Len(t, spots, 1)
		assert.Equal(t, free.ID, spots[0].ID)
	})

	t.Run("includes spot for a disjoint window", func(t *testing.T) {
		spots, err := spotRepo.FindAvailable(ctx, bookingTestBase.Add(2*time.Hour), bookingTestBase.Add(3*time.Hour), parking.SpotFilter{})
		require.NoError(t, err)
		assert.Len(t, spots, 2)
	})
}

func TestGormPaymentRepository_Ledger(t *testing.T) {
	db := setupBookingTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	bookingID := uuid.New()
	payment, err := parking.NewPayment(bookingID, valueobject.NewMoneyUSDFromFloat(10),
		parking.PaymentMethodCard, "txn-0001", bookingTestBase)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, payment))

	refund, err := parking.NewRefund(bookingID, valueobject.NewMoneyUSDFromFloat(5),
		parking.PaymentMethodCard, "txn-0002", bookingTestBase.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, refund))

	t.Run("finds ledger rows oldest first", func(t *testing.T) {
		rows, err := repo.FindByBooking(ctx, bookingID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, parking.PaymentStatusPaid, rows[0].Status)
		assert.Equal(t, parking.PaymentStatusRefunded, rows[1].Status)
	})

	t.Run("detects duplicate transaction id", func(t *testing.T) {
		exists, err := repo.ExistsByTransactionID(ctx, "txn-0001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByTransactionID(ctx, "txn-9999")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("finds payment by transaction id", func(t *testing.T) {
		found, err := repo.FindByTransactionID(ctx, "txn-0002")
		require.NoError(t, err)
		assert.Equal(t, refund.ID, found.ID)
	})
}
