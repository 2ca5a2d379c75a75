package parking

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
)

// In-memory repositories backing the service tests. They implement the same
// interfaces as the GORM repositories, without persistence.

type memSpotRepo struct {
	spots map[uuid.UUID]*parking.ParkingSpot
	// bookings is shared with memBookingRepo for availability queries
	bookings *memBookingRepo
}

func newMemSpotRepo(bookings *memBookingRepo) *memSpotRepo {
	return &memSpotRepo{
		spots:    make(map[uuid.UUID]*parking.ParkingSpot),
		bookings: bookings,
	}
}

func (r *memSpotRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	spot, ok := r.spots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *spot
	return &copied, nil
}

func (r *memSpotRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	return r.FindByID(ctx, id)
}

func (r *memSpotRepo) FindByNumber(_ context.Context, number string) (*parking.ParkingSpot, error) {
	for _, spot := range r.spots {
		if spot.Number == number {
			copied := *spot
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memSpotRepo) FindAll(_ context.Context, filter parking.SpotFilter) ([]parking.ParkingSpot, error) {
	var out []parking.ParkingSpot
	for _, spot := range r.spots {
		if matchesSpotFilter(spot, filter) {
			out = append(out, *spot)
		}
	}
	sortSpots(out)
	return out, nil
}

func (r *memSpotRepo) FindAvailable(ctx context.Context, start, end time.Time, filter parking.SpotFilter) ([]parking.ParkingSpot, error) {
	var out []parking.ParkingSpot
	for _, spot := range r.spots {
		if !matchesSpotFilter(spot, filter) {
			continue
		}
		count, err := r.bookings.CountOverlapping(ctx, spot.ID, start, end, nil)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			out = append(out, *spot)
		}
	}
	sortSpots(out)
	return out, nil
}

func (r *memSpotRepo) Save(_ context.Context, spot *parking.ParkingSpot) error {
	copied := *spot
	r.spots[spot.ID] = &copied
	return nil
}

func (r *memSpotRepo) Count(_ context.Context, filter parking.SpotFilter) (int64, error) {
	var count int64
	for _, spot := range r.spots {
		if matchesSpotFilter(spot, filter) {
			count++
		}
	}
	return count, nil
}

func (r *memSpotRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, spot := range r.spots {
		if spot.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func matchesSpotFilter(spot *parking.ParkingSpot, filter parking.SpotFilter) bool {
	if filter.Floor != nil && spot.Floor != *filter.Floor {
		return false
	}
	if filter.Type != nil && spot.Type != *filter.Type {
		return false
	}
	if filter.IsOccupied != nil && spot.IsOccupied != *filter.IsOccupied {
		return false
	}
	return true
}

func sortSpots(spots []parking.ParkingSpot) {
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Floor != spots[j].Floor {
			return spots[i].Floor < spots[j].Floor
		}
		return spots[i].Number < spots[j].Number
	})
}

type memBookingRepo struct {
	bookings map[uuid.UUID]*parking.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*parking.Booking)}
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*parking.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *memBookingRepo) FindByUser(_ context.Context, userID uuid.UUID, filter parking.BookingFilter) ([]parking.Booking, error) {
	var out []parking.Booking
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.PaymentStatus != nil && b.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBookingRepo) FindBySpot(_ context.Context, spotID uuid.UUID, filter parking.BookingFilter) ([]parking.Booking, error) {
	var out []parking.Booking
	for _, b := range r.bookings {
		if b.SpotID == spotID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) CountOverlapping(_ context.Context, spotID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if b.SpotID != spotID {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Status != parking.BookingStatusPending && b.Status != parking.BookingStatusActive {
			continue
		}
		if b.StartTime.Before(end) && start.Before(b.EndTime) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) FindDueForActivation(_ context.Context, now time.Time) ([]parking.Booking, error) {
	var out []parking.Booking
	for _, b := range r.bookings {
		if b.Status == parking.BookingStatusPending &&
			b.PaymentStatus == parking.PaymentStatusPaid &&
			!now.Before(b.StartTime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) FindExpired(_ context.Context, now time.Time) ([]parking.Booking, error) {
	var out []parking.Booking
	for _, b := range r.bookings {
		if b.Status == parking.BookingStatusActive && !now.Before(b.EndTime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) Save(_ context.Context, booking *parking.Booking) error {
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) Count(_ context.Context, filter parking.BookingFilter) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		count++
	}
	return count, nil
}

type memPaymentRepo struct {
	payments []parking.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{}
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.Payment, error) {
	for i := range r.payments {
		if r.payments[i].ID == id {
			copied := r.payments[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByBooking(_ context.Context, bookingID uuid.UUID) ([]parking.Payment, error) {
	var out []parking.Payment
	for i := range r.payments {
		if r.payments[i].BookingID == bookingID {
			out = append(out, r.payments[i])
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*parking.Payment, error) {
	for i := range r.payments {
		if r.payments[i].TransactionID == transactionID {
			copied := r.payments[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) Create(_ context.Context, payment *parking.Payment) error {
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *memPaymentRepo) ExistsByTransactionID(_ context.Context, transactionID string) (bool, error) {
	for i := range r.payments {
		if r.payments[i].TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

// fakeGateway issues sequential transaction ids and records every call
type fakeGateway struct {
	seq      int
	charges  []ChargeRequest
	refunds  []RefundRequest
	failNext error
}

func (g *fakeGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return nil, err
	}
	g.seq++
	g.charges = append(g.charges, req)
	return &ChargeResult{TransactionID: fmt.Sprintf("txn-%04d", g.seq)}, nil
}

func (g *fakeGateway) Refund(_ context.Context, req RefundRequest) (*RefundResult, error) {
	if g.failNext != nil {
		err := g.failNext
		g.failNext = nil
		return nil, err
	}
	g.seq++
	g.refunds = append(g.refunds, req)
	return &RefundResult{TransactionID: fmt.Sprintf("txn-%04d", g.seq)}, nil
}

// testEnv wires the services against the in-memory repositories
type testEnv struct {
	spotRepo    *memSpotRepo
	bookingRepo *memBookingRepo
	paymentRepo *memPaymentRepo
	gateway     *fakeGateway
	scope       *NoOpTransactionScope
}

func newTestEnv() *testEnv {
	bookingRepo := newMemBookingRepo()
	spotRepo := newMemSpotRepo(bookingRepo)
	paymentRepo := newMemPaymentRepo()
	return &testEnv{
		spotRepo:    spotRepo,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		gateway:     &fakeGateway{},
		scope:       NewNoOpTransactionScope(spotRepo, bookingRepo, paymentRepo),
	}
}

// reserveOne books a single spot and returns its booking, computing the
// expected total from the known test rate.
func reserveOne(svc *ReservationService, userID, spotID uuid.UUID, vehicle string, start, end time.Time, total float64) (*BookingResponse, error) {
	resps, err := svc.Reserve(context.Background(), userID, CreateBookingRequest{
		SpotIDs:        []uuid.UUID{spotID},
		VehicleNumbers: []string{vehicle},
		StartTime:      start,
		EndTime:        end,
		ExpectedTotal:  decimal.NewFromFloat(total),
	})
	if err != nil {
		return nil, err
	}
	return &resps[0], nil
}

func mustReserveOne(t *testing.T, svc *ReservationService, userID, spotID uuid.UUID, vehicle string, start, end time.Time, total float64) BookingResponse {
	t.Helper()
	resp, err := reserveOne(svc, userID, spotID, vehicle, start, end, total)
	require.NoError(t, err)
	return *resp
}

func mustWindowApp(t *testing.T, start, end time.Time) parking.TimeWindow {
	t.Helper()
	w, err := parking.NewTimeWindow(start, end)
	if err != nil {
		t.Fatalf("invalid window: %v", err)
	}
	return w
}

func newSpotOnFloor(env *testEnv, floor int) (*parking.ParkingSpot, error) {
	spot, err := parking.NewParkingSpot(floor, "F-"+uuid.NewString()[:8], parking.SpotTypeStandard,
		valueobject.NewMoneyUSDFromFloat(5), time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}
	if err := env.spotRepo.Save(context.Background(), spot); err != nil {
		return nil, err
	}
	return spot, nil
}

var _ parking.SpotRepository = (*memSpotRepo)(nil)
var _ parking.BookingRepository = (*memBookingRepo)(nil)
var _ parking.PaymentRepository = (*memPaymentRepo)(nil)
var _ PaymentGateway = (*fakeGateway)(nil)
