package api

import (
	"log/slog"

	"github.com/Domenick1991/transfers/internal/service/booking"
	"github.com/Domenick1991/transfers/internal/service/routes"
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Bookings       booking.BookingUseCase
	Routes         routes.RouteUseCase
	Guard          Guard
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter mounts the REST API under /api/v1.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(logger), Metrics(), CORS(deps.AllowedOrigins))

	v1 := router.Group("/api/v1")
	NewRouteHandler(deps.Routes).Register(v1.Group("/routes"), deps.Guard)
	NewBookingHandler(deps.Bookings).Register(v1.Group("/bookings"), deps.Guard)
	NewAvailabilityHandler(deps.Bookings).Register(v1.Group("/availability"), deps.Guard)

	return router
}
