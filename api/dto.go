package api

import (
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
)

type bookingResponse struct {
	BookingID         string        `json:"booking_id"`
	RouteID           int64         `json:"route_id"`
	TripType          string        `json:"trip_type"`
	PickupDate        *domain.Date  `json:"pickup_date"`
	PickupTime        *domain.Clock `json:"pickup_time"`
	ReturnDate        *domain.Date  `json:"return_date"`
	ReturnTime        *domain.Clock `json:"return_time"`
	Status            string        `json:"booking_status"`
	DriverID          *int64        `json:"driver_id"`
	VehicleID         *int64        `json:"vehicle_id"`
	VehicleType       string        `json:"vehicle_type"`
	TimePeriod        string        `json:"time_period"`
	PaymentType       string        `json:"payment_type"`
	PaymentStatus     string        `json:"payment_status"`
	TotalAmount       int64         `json:"total_amount"`
	AmountPaid        float64       `json:"amount_paid"`
	OutstandingAmount float64       `json:"outstanding_amount"`
	PassengerName     string        `json:"passenger_name"`
	PassengerEmail    string        `json:"passenger_email"`
	CreatedAt         string        `json:"created_at"`
	UpdatedAt         string        `json:"updated_at"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:         b.BookingID,
		RouteID:           b.RouteID,
		TripType:          string(b.TripType),
		PickupDate:        b.PickupDate,
		PickupTime:        b.PickupTime,
		ReturnDate:        b.ReturnDate,
		ReturnTime:        b.ReturnTime,
		Status:            string(b.Status),
		DriverID:          b.DriverID,
		VehicleID:         b.VehicleID,
		VehicleType:       b.VehicleType,
		TimePeriod:        b.TimePeriod,
		PaymentType:       string(b.PaymentType),
		PaymentStatus:     b.PaymentStatus,
		TotalAmount:       b.TotalAmount,
		AmountPaid:        b.AmountPaid,
		OutstandingAmount: b.OutstandingAmount,
		PassengerName:     b.PassengerName,
		PassengerEmail:    b.PassengerEmail,
		CreatedAt:         formatTime(b.CreatedAt),
		UpdatedAt:         formatTime(b.UpdatedAt),
	}
}

type driverResponse struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Status      string `json:"status"`
}

type vehicleResponse struct {
	ID            int64  `json:"id"`
	LicensePlate  string `json:"license_plate"`
	Make          string `json:"make"`
	Model         string `json:"model"`
	VehicleType   string `json:"type"`
	Status        string `json:"status"`
	MaxPassengers int    `json:"max_passengers"`
	MaxLuggage    int    `json:"max_luggage"`
}

type routeResponse struct {
	ID              int64  `json:"id"`
	BookingRouteID  string `json:"booking_route_id"`
	Slug            string `json:"slug"`
	FromLocation    string `json:"from_location"`
	ToLocation      string `json:"to_location"`
	DurationMinutes int    `json:"duration_minutes"`
	Distance        string `json:"distance"`
}

func newDriverResponses(drivers []domain.Driver) []driverResponse {
	out := make([]driverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, driverResponse{ID: d.ID, FullName: d.FullName, Email: d.Email, PhoneNumber: d.PhoneNumber, Status: d.Status})
	}
	return out
}

func newVehicleResponses(vehicles []domain.Vehicle) []vehicleResponse {
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, vehicleResponse{
			ID:            v.ID,
			LicensePlate:  v.LicensePlate,
			Make:          v.Make,
			Model:         v.Model,
			VehicleType:   v.VehicleType,
			Status:        v.Status,
			MaxPassengers: v.MaxPassengers,
			MaxLuggage:    v.MaxLuggage,
		})
	}
	return out
}

func newRouteResponse(r domain.Route) routeResponse {
	return routeResponse{
		ID:              r.ID,
		BookingRouteID:  r.BookingRouteID,
		Slug:            r.Slug,
		FromLocation:    r.FromLocation,
		ToLocation:      r.ToLocation,
		DurationMinutes: r.DurationMinutes,
		Distance:        r.Distance,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
