package notify

import (
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking_created"
	EventDriverAssigned   EventType = "driver_assigned"
	EventVehicleAssigned  EventType = "vehicle_assigned"
	EventBookingUpdated   EventType = "booking_updated"
	EventStatusChanged    EventType = "status_changed"
	EventBookingCancelled EventType = "booking_cancelled"
)

// Event is what the booking service publishes after a committed change.
// It carries a snapshot so consumers never read the booking back.
type Event struct {
	ID             string               `json:"id"`
	Type           EventType            `json:"type"`
	BookingID      string               `json:"booking_id"`
	Status         domain.BookingStatus `json:"status"`
	PreviousStatus domain.BookingStatus `json:"previous_status,omitempty"`
	Route          string               `json:"route,omitempty"`
	TripType       domain.TripType      `json:"trip_type"`
	PickupDate     *domain.Date         `json:"pickup_date,omitempty"`
	PickupTime     *domain.Clock        `json:"pickup_time,omitempty"`
	ReturnDate     *domain.Date         `json:"return_date,omitempty"`
	ReturnTime     *domain.Clock        `json:"return_time,omitempty"`
	DriverID       *int64               `json:"driver_id,omitempty"`
	VehicleID      *int64               `json:"vehicle_id,omitempty"`
	PassengerName  string               `json:"passenger_name,omitempty"`
	PassengerEmail string               `json:"passenger_email,omitempty"`
	Changes        []string             `json:"changes,omitempty"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

func NewEvent(t EventType, b domain.Booking, route string) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           t,
		BookingID:      b.BookingID,
		Status:         b.Status,
		Route:          route,
		TripType:       b.TripType,
		PickupDate:     b.PickupDate,
		PickupTime:     b.PickupTime,
		ReturnDate:     b.ReturnDate,
		ReturnTime:     b.ReturnTime,
		DriverID:       b.DriverID,
		VehicleID:      b.VehicleID,
		PassengerName:  b.PassengerName,
		PassengerEmail: b.PassengerEmail,
		OccurredAt:     time.Now().UTC(),
	}
}
