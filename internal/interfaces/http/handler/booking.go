package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appparking "github.com/parklot/backend/internal/application/parking"
)

// BookingHandler handles booking lifecycle API endpoints
type BookingHandler struct {
	BaseHandler
	reservationService *appparking.ReservationService
	bookingService     *appparking.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	reservationService *appparking.ReservationService,
	bookingService *appparking.BookingService,
) *BookingHandler {
	return &BookingHandler{
		reservationService: reservationService,
		bookingService:     bookingService,
	}
}

// Create reserves one or more spots for the authenticated user as a single
// atomic group
func (h *BookingHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req appparking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bookings, err := h.reservationService.Reserve(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, bookings)
}

// GetByID retrieves one of the user's bookings
func (h *BookingHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// List retrieves the user's bookings matching the filter
func (h *BookingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var filter appparking.BookingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookingService.ListBookings(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Pay settles the outstanding charge on a booking
func (h *BookingHandler) Pay(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req appparking.PayBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.bookingService.Pay(c.Request.Context(), userID, bookingID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// Activate starts a paid booking whose window has opened
func (h *BookingHandler) Activate(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	booking, err := h.bookingService.Activate(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// Cancel cancels a booking and settles charges and refunds
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	result, err := h.bookingService.Cancel(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Extend pushes an active booking's end time out
func (h *BookingHandler) Extend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req appparking.ExtendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.Extend(c.Request.Context(), userID, bookingID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// ListPayments retrieves the payment ledger for one of the user's bookings
func (h *BookingHandler) ListPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	payments, err := h.bookingService.ListPayments(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}
