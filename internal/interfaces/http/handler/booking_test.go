package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appparking "github.com/parklot/backend/internal/application/parking"
	"github.com/parklot/backend/internal/domain/parking"
	"github.com/parklot/backend/internal/domain/shared"
	"github.com/parklot/backend/internal/domain/shared/valueobject"
	"github.com/parklot/backend/internal/infrastructure/payment"
	"github.com/parklot/backend/internal/interfaces/http/dto"
	"github.com/parklot/backend/internal/interfaces/http/middleware"
	"github.com/parklot/backend/internal/interfaces/http/router"
)

// In-memory repositories backing the API tests. The GORM repositories are
// covered in the persistence package; these keep the HTTP tests focused on
// binding, routing and error mapping.

type apiSpotRepo struct {
	spots    map[uuid.UUID]*parking.ParkingSpot
	bookings *apiBookingRepo
}

func (r *apiSpotRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	spot, ok := r.spots[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *spot
	return &copied, nil
}

func (r *apiSpotRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*parking.ParkingSpot, error) {
	return r.FindByID(ctx, id)
}

func (r *apiSpotRepo) FindByNumber(_ context.Context, number string) (*parking.ParkingSpot, error) {
	for _, spot := range r.spots {
		if spot.Number == number {
			copied := *spot
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *apiSpotRepo) FindAll(_ context.Context, _ parking.SpotFilter) ([]parking.ParkingSpot, error) {
	var out []parking.ParkingSpot
	for _, spot := range r.spots {
		out = append(out, *spot)
	}
	return out, nil
}

func (r *apiSpotRepo) FindAvailable(ctx context.Context, start, end time.Time, _ parking.SpotFilter) ([]parking.ParkingSpot, error) {
	var out []parking.ParkingSpot
	for _, spot := range r.spots {
		count, err := r.bookings.CountOverlapping(ctx, spot.ID, start, end, nil)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			out = append(out, *spot)
		}
	}
	return out, nil
}

func (r *apiSpotRepo) Save(_ context.Context, spot *parking.ParkingSpot) error {
	copied := *spot
	r.spots[spot.ID] = &copied
	return nil
}

func (r *apiSpotRepo) Count(_ context.Context, _ parking.SpotFilter) (int64, error) {
	return int64(len(r.spots)), nil
}

func (r *apiSpotRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, spot := range r.spots {
		if spot.Number == number {
			return true, nil
		}
	}
	return false, nil
}

type apiBookingRepo struct {
	bookings map[uuid.UUID]*parking.Booking
}

func (r *apiBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *apiBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*parking.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *apiBookingRepo) FindByUser(_ context.Context, userID uuid.UUID, filter parking.BookingFilter) ([]parking.Booking, error) {
	var out []parking.Booking
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *apiBookingRepo) FindBySpot(_ context.Context, spotID uuid.UUID, _ parking.BookingFilter) ([]parking.Booking, error) {
	var out []parking.Booking
	for _, b := range r.bookings {
		if b.SpotID == spotID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *apiBookingRepo) CountOverlapping(_ context.Context, spotID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (int64, error) {
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

func (r *apiBookingRepo) FindDueForActivation(_ context.Context, now time.Time) ([]parking.Booking, error) {
	return nil, nil
}

func (r *apiBookingRepo) FindExpired(_ context.Context, now time.Time) ([]parking.Booking, error) {
	return nil, nil
}

func (r *apiBookingRepo) Save(_ context.Context, booking *parking.Booking) error {
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *apiBookingRepo) Count(_ context.Context, filter parking.BookingFilter) (int64, error) {
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

type apiPaymentRepo struct {
	payments []parking.Payment
}

func (r *apiPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*parking.Payment, error) {
	for i := range r.payments {
		if r.payments[i].ID == id {
			copied := r.payments[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *apiPaymentRepo) FindByBooking(_ context.Context, bookingID uuid.UUID) ([]parking.Payment, error) {
	var out []parking.Payment
	for i := range r.payments {
		if r.payments[i].BookingID == bookingID {
			out = append(out, r.payments[i])
		}
	}
	return out, nil
}

func (r *apiPaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*parking.Payment, error) {
	for i := range r.payments {
		if r.payments[i].TransactionID == transactionID {
			copied := r.payments[i]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *apiPaymentRepo) Create(_ context.Context, p *parking.Payment) error {
	r.payments = append(r.payments, *p)
	return nil
}

func (r *apiPaymentRepo) ExistsByTransactionID(_ context.Context, transactionID string) (bool, error) {
	for i := range r.payments {
		if r.payments[i].TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

var _ parking.SpotRepository = (*apiSpotRepo)(nil)
var _ parking.BookingRepository = (*apiBookingRepo)(nil)
var _ parking.PaymentRepository = (*apiPaymentRepo)(nil)

var apiTestNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

type apiTestServer struct {
	engine   *gin.Engine
	spotRepo *apiSpotRepo
}

func newAPITestServer(t *testing.T) *apiTestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	bookingRepo := &apiBookingRepo{bookings: make(map[uuid.UUID]*parking.Booking)}
	spotRepo := &apiSpotRepo{spots: make(map[uuid.UUID]*parking.ParkingSpot), bookings: bookingRepo}
	paymentRepo := &apiPaymentRepo{}

	logger := zap.NewNop()
	clock := shared.FixedClock(apiTestNow)
	scope := appparking.NewNoOpTransactionScope(spotRepo, bookingRepo, paymentRepo)
	policy := appparking.DefaultPolicy()
	gateway := payment.NewSimulatedGateway(logger)

	spotService := appparking.NewSpotService(spotRepo, clock, logger)
	availabilityService := appparking.NewAvailabilityService(spotRepo, bookingRepo, policy, clock, logger)
	reservationService := appparking.NewReservationService(scope, policy, clock, logger)
	bookingService := appparking.NewBookingService(scope, gateway, policy, clock, logger)

	spotHandler := NewSpotHandler(spotService, availabilityService)
	bookingHandler := NewBookingHandler(reservationService, bookingService)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	parkingGroup := router.NewDomainGroup("parking", "/parking")
	parkingGroup.POST("/spots", spotHandler.Create)
	parkingGroup.GET("/spots", spotHandler.List)
	parkingGroup.GET("/spots/availability", spotHandler.Availability)
	parkingGroup.GET("/spots/:id", spotHandler.GetByID)
	parkingGroup.POST("/bookings", bookingHandler.Create)
	parkingGroup.GET("/bookings", bookingHandler.List)
	parkingGroup.GET("/bookings/:id", bookingHandler.GetByID)
	parkingGroup.POST("/bookings/:id/pay", bookingHandler.Pay)
	parkingGroup.POST("/bookings/:id/activate", bookingHandler.Activate)
	parkingGroup.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	parkingGroup.POST("/bookings/:id/extend", bookingHandler.Extend)
	parkingGroup.GET("/bookings/:id/payments", bookingHandler.ListPayments)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(parkingGroup)
	r.Setup()

	return &apiTestServer{engine: engine, spotRepo: spotRepo}
}

func (s *apiTestServer) request(t *testing.T, method, path string, userID *uuid.UUID, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *apiTestServer) seedSpot(t *testing.T, number string, rate float64) *parking.ParkingSpot {
	t.Helper()
	spot, err := parking.NewParkingSpot(1, number, parking.SpotTypeStandard,
		valueobject.NewMoneyUSDFromFloat(rate), apiTestNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, s.spotRepo.Save(context.Background(), spot))
	return spot
}

func decodeData[T any](t *testing.T, resp dto.Response) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func createBookingBody(spotID uuid.UUID, start, end time.Time, total float64) map[string]any {
	return map[string]any{
		"spot_ids":        []string{spotID.String()},
		"vehicle_numbers": []string{"KA-01-AB-1234"},
		"start_time":      start.Format(time.RFC3339),
		"end_time":        end.Format(time.RFC3339),
		"expected_total":  total,
	}
}

// createBooking posts a single-spot booking and returns it
func (s *apiTestServer) createBooking(t *testing.T, userID uuid.UUID, spotID uuid.UUID, start, end time.Time, total float64) appparking.BookingResponse {
	t.Helper()
	w, resp := s.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID,
		createBookingBody(spotID, start, end, total))
	require.Equal(t, http.StatusCreated, w.Code)
	bookings := decodeData[[]appparking.BookingResponse](t, resp)
	require.Len(t, bookings, 1)
	return bookings[0]
}

func TestBookingAPI_CreateBooking(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID,
		createBookingBody(spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 10))

	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	bookings := decodeData[[]appparking.BookingResponse](t, resp)
	require.Len(t, bookings, 1)
	booking := bookings[0]
	assert.Equal(t, userID, booking.UserID)
	assert.Equal(t, spot.ID, booking.SpotID)
	assert.Equal(t, "PENDING", booking.Status)
	assert.Equal(t, "PENDING", booking.PaymentStatus)
	assert.Equal(t, "10", booking.Amount.String())
}

func TestBookingAPI_CreateBookingGroup(t *testing.T) {
	server := newAPITestServer(t)
	first := server.seedSpot(t, "A-101", 5)
	second := server.seedSpot(t, "A-102", 5)
	userID := uuid.New()

	body := map[string]any{
		"spot_ids":        []string{first.ID.String(), second.ID.String()},
		"vehicle_numbers": []string{"KA-01-AB-1234", "KA-02-CD-5678"},
		"start_time":      apiTestNow.Add(time.Hour).Format(time.RFC3339),
		"end_time":        apiTestNow.Add(3 * time.Hour).Format(time.RFC3339),
		"expected_total":  20,
	}
	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID, body)
	require.Equal(t, http.StatusCreated, w.Code)

	bookings := decodeData[[]appparking.BookingResponse](t, resp)
	require.Len(t, bookings, 2)
	assert.Equal(t, first.ID, bookings[0].SpotID)
	assert.Equal(t, second.ID, bookings[1].SpotID)
	for _, b := range bookings {
		assert.Equal(t, "PENDING", b.Status)
		assert.Equal(t, "10", b.Amount.String())
	}
}

func TestBookingAPI_CreateBookingAmountMismatch(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID,
		createBookingBody(spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 8))
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeAmountMismatch, resp.Error.Code)
}

func TestBookingAPI_CreateBookingRequiresIdentity(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)

	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", nil,
		createBookingBody(spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
}

func TestBookingAPI_CreateBookingValidation(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	t.Run("missing vehicle numbers", func(t *testing.T) {
		body := createBookingBody(spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)
		delete(body, "vehicle_numbers")
		w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, resp.Success)
	})

	t.Run("malformed vehicle number", func(t *testing.T) {
		body := createBookingBody(spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)
		body["vehicle_numbers"] = []string{"x"}
		w, _ := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("mismatched vehicle list", func(t *testing.T) {
		body := createBookingBody(spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)
		body["vehicle_numbers"] = []string{"KA-01-AB-1234", "KA-02-CD-5678"}
		w, _ := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("start in the past", func(t *testing.T) {
		body := createBookingBody(spot.ID, apiTestNow.Add(-2*time.Hour), apiTestNow.Add(2*time.Hour), 5)
		w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &userID, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})
}

func TestBookingAPI_OverlapConflict(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	server.createBooking(t, userID, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 10)

	otherUser := uuid.New()
	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/bookings", &otherUser,
		createBookingBody(spot.ID, apiTestNow.Add(2*time.Hour), apiTestNow.Add(4*time.Hour), 10))

	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeSpotUnavailable, resp.Error.Code)

	// Back-to-back with the first booking's end is not an overlap
	w, _ = server.request(t, http.MethodPost, "/api/v1/parking/bookings", &otherUser,
		createBookingBody(spot.ID, apiTestNow.Add(3*time.Hour), apiTestNow.Add(4*time.Hour), 5))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBookingAPI_PayFlow(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	booking := server.createBooking(t, userID, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 10)

	payBody := map[string]any{
		"payment_method": "CARD",
		"card_number":    "4242424242424242",
	}
	w, resp := server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/pay", booking.ID), &userID, payBody)
	require.Equal(t, http.StatusOK, w.Code)

	paid := decodeData[appparking.PaymentResponse](t, resp)
	assert.Equal(t, booking.ID, paid.BookingID)
	assert.Equal(t, "PAID", paid.Status)
	assert.Equal(t, "10", paid.Amount.String())
	assert.NotEmpty(t, paid.TransactionID)

	w, resp = server.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/parking/bookings/%s", booking.ID), &userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decodeData[appparking.BookingResponse](t, resp)
	assert.Equal(t, "PAID", fetched.PaymentStatus)

	// Paying a settled booking is rejected
	w, resp = server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/pay", booking.ID), &userID, payBody)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)

	w, resp = server.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/parking/bookings/%s/payments", booking.ID), &userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decodeData[[]appparking.PaymentResponse](t, resp)
	assert.Len(t, ledger, 1)
}

func TestBookingAPI_ActivateBeforeStart(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	booking := server.createBooking(t, userID, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 10)

	w, resp := server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/pay", booking.ID), &userID,
		map[string]any{"payment_method": "CASH"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/activate", booking.ID), &userID, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeActivationNotDue, resp.Error.Code)
}

func TestBookingAPI_ActivateUnpaid(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	booking := server.createBooking(t, userID, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)

	w, resp := server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/activate", booking.ID), &userID, nil)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodePaymentRequired, resp.Error.Code)
}

func TestBookingAPI_CancelPendingRefunds(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	booking := server.createBooking(t, userID, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 10)

	w, _ := server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/pay", booking.ID), &userID,
		map[string]any{"payment_method": "CASH"})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := server.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/parking/bookings/%s/cancel", booking.ID), &userID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cancelled := decodeData[appparking.CancelBookingResponse](t, resp)
	assert.Equal(t, "CANCELLED", cancelled.Booking.Status)
	assert.Equal(t, "REFUNDED", cancelled.Booking.PaymentStatus)
	assert.Equal(t, "0", cancelled.AmountCharged.String())
	assert.Equal(t, "10", cancelled.AmountRefunded.String())
}

func TestBookingAPI_OwnershipEnforced(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	owner := uuid.New()
	stranger := uuid.New()

	booking := server.createBooking(t, owner, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)

	w, resp := server.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/parking/bookings/%s", booking.ID), &stranger, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
}

func TestBookingAPI_GetBookingBadID(t *testing.T) {
	server := newAPITestServer(t)
	userID := uuid.New()

	w, resp := server.request(t, http.MethodGet, "/api/v1/parking/bookings/not-a-uuid", &userID, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestBookingAPI_ListBookings(t *testing.T) {
	server := newAPITestServer(t)
	spot := server.seedSpot(t, "A-101", 5)
	other := server.seedSpot(t, "A-102", 5)
	userID := uuid.New()

	server.createBooking(t, userID, spot.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)
	server.createBooking(t, userID, other.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(2*time.Hour), 5)

	w, resp := server.request(t, http.MethodGet, "/api/v1/parking/bookings", &userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)

	bookings := decodeData[[]appparking.BookingResponse](t, resp)
	assert.Len(t, bookings, 2)
}

func TestSpotAPI_CreateAndAvailability(t *testing.T) {
	server := newAPITestServer(t)
	userID := uuid.New()

	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/spots", &userID, map[string]any{
		"floor":       2,
		"number":      "B-201",
		"type":        "EV",
		"hourly_rate": 8.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeData[appparking.SpotResponse](t, resp)
	assert.Equal(t, "B-201", created.Number)
	assert.Equal(t, "EV", created.Type)

	// A booking removes the spot from the availability listing for its window
	server.createBooking(t, userID, created.ID, apiTestNow.Add(time.Hour), apiTestNow.Add(3*time.Hour), 17)

	query := fmt.Sprintf("/api/v1/parking/spots/availability?start_time=%s&end_time=%s",
		apiTestNow.Add(2*time.Hour).Format(time.RFC3339), apiTestNow.Add(4*time.Hour).Format(time.RFC3339))
	w, resp = server.request(t, http.MethodGet, query, &userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	availability := decodeData[appparking.AvailabilityResponse](t, resp)
	assert.Empty(t, availability.Spots)

	query = fmt.Sprintf("/api/v1/parking/spots/availability?start_time=%s&end_time=%s",
		apiTestNow.Add(3*time.Hour).Format(time.RFC3339), apiTestNow.Add(5*time.Hour).Format(time.RFC3339))
	w, resp = server.request(t, http.MethodGet, query, &userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	availability = decodeData[appparking.AvailabilityResponse](t, resp)
	assert.Len(t, availability.Spots, 1)
}

func TestSpotAPI_DuplicateNumber(t *testing.T) {
	server := newAPITestServer(t)
	server.seedSpot(t, "A-101", 5)
	userID := uuid.New()

	w, resp := server.request(t, http.MethodPost, "/api/v1/parking/spots", &userID, map[string]any{
		"floor":       1,
		"number":      "A-101",
		"type":        "STANDARD",
		"hourly_rate": 5,
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
}
