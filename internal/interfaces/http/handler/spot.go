package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appparking "github.com/parklot/backend/internal/application/parking"
)

// SpotHandler handles parking spot API endpoints
type SpotHandler struct {
	BaseHandler
	spotService         *appparking.SpotService
	availabilityService *appparking.AvailabilityService
}

// NewSpotHandler creates a new SpotHandler
func NewSpotHandler(
	spotService *appparking.SpotService,
	availabilityService *appparking.AvailabilityService,
) *SpotHandler {
	return &SpotHandler{
		spotService:         spotService,
		availabilityService: availabilityService,
	}
}

// Create registers a new parking spot
func (h *SpotHandler) Create(c *gin.Context) {
	var req appparking.CreateSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	spot, err := h.spotService.CreateSpot(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, spot)
}

// GetByID retrieves a parking spot by its ID
func (h *SpotHandler) GetByID(c *gin.Context) {
	spotID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid spot ID format")
		return
	}

	spot, err := h.spotService.GetSpot(c.Request.Context(), spotID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, spot)
}

// List retrieves parking spots matching the filter
func (h *SpotHandler) List(c *gin.Context) {
	var filter appparking.SpotListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.spotService.ListSpots(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Availability lists the spots free for the requested time window
func (h *SpotHandler) Availability(c *gin.Context) {
	var req appparking.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.availabilityService.FindAvailableSpots(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
