package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/transfers/internal/auth"
	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// Guard builds the per-route permission checks.
type Guard interface {
	Require(perm auth.Permission) gin.HandlerFunc
	RequireAPIKeyOr(perm auth.Permission) gin.HandlerFunc
}

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, guard Guard) {
	staff := guard.Require(auth.PermBooking)

	router.POST("", guard.RequireAPIKeyOr(auth.PermBooking), h.create)
	router.GET("", staff, h.list)
	router.GET("/:booking_id", staff, h.get)
	router.PATCH("/:booking_id", staff, h.update)
	router.DELETE("/:booking_id", staff, h.cancel)
	router.PUT("/:booking_id/driver", guard.Require(auth.PermDrivers), h.assignDriver)
	router.PUT("/:booking_id/vehicle", guard.Require(auth.PermVehicles), h.assignVehicle)
	router.GET("/:booking_id/available-drivers", guard.Require(auth.PermDrivers), h.availableDrivers)
	router.GET("/:booking_id/available-vehicles", guard.Require(auth.PermVehicles), h.availableVehicles)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	filter, err := parseBookingFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, newBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func parseBookingFilter(c *gin.Context) (repository.BookingFilter, error) {
	filter := repository.BookingFilter{
		Status:        domain.BookingStatus(c.Query("status")),
		PaymentStatus: c.Query("payment_status"),
		VehicleType:   c.Query("vehicle_type"),
	}
	if v := c.Query("pickup_date"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			return filter, err
		}
		filter.PickupDate = &d
	}
	if v := c.Query("driver_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, domain.ValidationError{Field: "driver_id", Msg: "must be an integer"}
		}
		filter.DriverID = &id
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return filter, domain.ValidationError{Field: name, Msg: "must be a non-negative integer"}
			}
			*dst = n
		}
	}
	return filter, nil
}

type updateBookingResponse struct {
	Booking bookingResponse `json:"booking"`
	Changes []string        `json:"changes"`
}

func (h *BookingHandler) update(c *gin.Context) {
	var patch domain.BookingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.service.UpdateBooking(c.Request.Context(), c.Param("booking_id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updateBookingResponse{Booking: newBookingResponse(res.Booking), Changes: res.Changes})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

type assignDriverRequest struct {
	DriverID domain.Optional[int64] `json:"driver_id"`
}

type assignVehicleRequest struct {
	VehicleID domain.Optional[int64] `json:"vehicle_id"`
}

// assignDriver takes {"driver_id": 3}; an explicit null unassigns.
func (h *BookingHandler) assignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.DriverID.Set {
		c.JSON(http.StatusBadRequest, gin.H{"error": "driver_id is required", "field": "driver_id"})
		return
	}

	b, err := h.service.AssignDriver(c.Request.Context(), c.Param("booking_id"), req.DriverID.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) assignVehicle(c *gin.Context) {
	var req assignVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.VehicleID.Set {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle_id is required", "field": "vehicle_id"})
		return
	}

	b, err := h.service.AssignVehicle(c.Request.Context(), c.Param("booking_id"), req.VehicleID.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func (h *BookingHandler) availableDrivers(c *gin.Context) {
	drivers, err := h.service.AvailableDrivers(c.Request.Context(), booking.Target{BookingID: c.Param("booking_id")})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDriverResponses(drivers))
}

func (h *BookingHandler) availableVehicles(c *gin.Context) {
	vehicles, err := h.service.AvailableVehicles(c.Request.Context(), booking.Target{BookingID: c.Param("booking_id")}, c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newVehicleResponses(vehicles))
}
