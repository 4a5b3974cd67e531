package api

import (
	"net/http"

	"github.com/Domenick1991/transfers/internal/auth"
	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/schedule"
	"github.com/Domenick1991/transfers/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// AvailabilityHandler answers scheduling questions about trips that may not
// be booked yet.
type AvailabilityHandler struct {
	service booking.BookingUseCase
}

func NewAvailabilityHandler(service booking.BookingUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) Register(router *gin.RouterGroup, guard Guard) {
	router.POST("/drivers", guard.Require(auth.PermDrivers), h.drivers)
	router.POST("/vehicles", guard.Require(auth.PermVehicles), h.vehicles)
	router.POST("/check", guard.Require(auth.PermBooking), h.check)
}

type availabilityRequest struct {
	BookingID string `json:"booking_id"`
	booking.HypotheticalInput
	ExcludeBookingID string `json:"exclude_booking_id"`
	VehicleType      string `json:"vehicle_type"`
}

func (r *availabilityRequest) target() booking.Target {
	if r.BookingID != "" {
		return booking.Target{BookingID: r.BookingID}
	}
	return booking.Target{Hypothetical: &r.HypotheticalInput, ExcludeBookingID: r.ExcludeBookingID}
}

type checkRequest struct {
	availabilityRequest
	Resource   domain.ResourceKind `json:"resource"`
	ResourceID int64               `json:"resource_id"`
}

type checkResponse struct {
	Available bool          `json:"available"`
	Conflict  *conflictBody `json:"conflict,omitempty"`
}

func (h *AvailabilityHandler) drivers(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	drivers, err := h.service.AvailableDrivers(c.Request.Context(), req.target())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDriverResponses(drivers))
}

func (h *AvailabilityHandler) vehicles(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicles, err := h.service.AvailableVehicles(c.Request.Context(), req.target(), req.VehicleType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newVehicleResponses(vehicles))
}

func (h *AvailabilityHandler) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		conflict *schedule.Conflict
		err      error
	)
	switch req.Resource {
	case domain.ResourceDriver:
		conflict, err = h.service.CheckDriver(c.Request.Context(), req.ResourceID, req.target())
	case domain.ResourceVehicle:
		conflict, err = h.service.CheckVehicle(c.Request.Context(), req.ResourceID, req.target())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource must be driver or vehicle", "field": "resource"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if conflict == nil {
		c.JSON(http.StatusOK, checkResponse{Available: true})
		return
	}
	c.JSON(http.StatusOK, checkResponse{Conflict: &conflictBody{
		Resource:   string(conflict.Kind),
		ResourceID: conflict.ResourceID,
		BookingID:  conflict.Booking.BookingID,
		Windows:    schedule.Describe(conflict.Windows),
	}})
}
