package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusAssigned  BookingStatus = "Assigned"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAssigned, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses cannot be left once reached.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

type TripType string

const (
	TripTypeOneWay TripType = "One Way"
	TripTypeReturn TripType = "Return"
)

func (t TripType) Valid() bool {
	return t == TripTypeOneWay || t == TripTypeReturn
}

type PaymentType string

const (
	PaymentTypeCash PaymentType = "cash"
	PaymentTypeCard PaymentType = "card"
)

const (
	PaymentStatusPaid        = "Paid"
	PaymentStatusPartialPaid = "Paid 20%"
)

// PaymentStatusFor mirrors how deposits are taken: cash bookings pay 20% up
// front, card bookings are settled in full.
func PaymentStatusFor(t PaymentType) string {
	switch t {
	case PaymentTypeCash:
		return PaymentStatusPartialPaid
	case PaymentTypeCard:
		return PaymentStatusPaid
	}
	return ""
}

// Itinerary holds everything needed to work out when a booking keeps a driver
// and a vehicle busy. It is usable on its own for bookings that have not been
// saved yet.
type Itinerary struct {
	RouteDurationMinutes int
	TripType             TripType
	PickupDate           *Date
	PickupTime           *Clock
	ReturnDate           *Date
	ReturnTime           *Clock
}

func (it Itinerary) HasPickup() bool {
	return it.PickupDate != nil && it.PickupTime != nil
}

func (it Itinerary) HasReturnLeg() bool {
	return it.TripType == TripTypeReturn && it.ReturnDate != nil && it.ReturnTime != nil
}

// Validate enforces the fields a booking must have before it can be scheduled.
func (it Itinerary) Validate() error {
	if !it.TripType.Valid() {
		return ValidationError{Field: "trip_type", Msg: fmt.Sprintf("unknown trip type %q", it.TripType)}
	}
	if it.PickupDate == nil {
		return ValidationError{Field: "pickup_date", Msg: "pickup date is required"}
	}
	if it.PickupTime == nil {
		return ValidationError{Field: "pickup_time", Msg: "pickup time is required"}
	}
	if it.TripType == TripTypeReturn {
		if it.ReturnDate == nil {
			return ValidationError{Field: "return_date", Msg: "return date is required for return trips"}
		}
		if it.ReturnTime == nil {
			return ValidationError{Field: "return_time", Msg: "return time is required for return trips"}
		}
	}
	return nil
}

type Booking struct {
	ID        int64
	BookingID string
	RouteID   int64
	Itinerary
	Status            BookingStatus
	DriverID          *int64
	VehicleID         *int64
	VehicleType       string
	TimePeriod        string
	PaymentType       PaymentType
	PaymentStatus     string
	TotalAmount       int64
	AmountPaid        float64
	OutstandingAmount float64
	PassengerName     string
	PassengerEmail    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Resource returns the id assigned to the booking for the given kind.
func (b Booking) Resource(kind ResourceKind) *int64 {
	switch kind {
	case ResourceDriver:
		return b.DriverID
	case ResourceVehicle:
		return b.VehicleID
	}
	return nil
}

func (b *Booking) SetResource(kind ResourceKind, id *int64) {
	switch kind {
	case ResourceDriver:
		b.DriverID = id
	case ResourceVehicle:
		b.VehicleID = id
	}
}

func (b Booking) FullyAssigned() bool {
	return b.DriverID != nil && b.VehicleID != nil
}

// AssignmentStatus moves a booking between Pending and Assigned as resources
// come and go. Other statuses are left alone.
func (b Booking) AssignmentStatus() BookingStatus {
	switch {
	case b.Status == BookingStatusPending && b.FullyAssigned():
		return BookingStatusAssigned
	case b.Status == BookingStatusAssigned && !b.FullyAssigned():
		return BookingStatusPending
	}
	return b.Status
}

const BookingIDPrefix = "fct"

const bookingIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewBookingID builds the public booking reference from the row id, e.g.
// "fctk3x9q42".
func NewBookingID(id int64) (string, error) {
	suffix := make([]byte, 5)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingIDAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generate booking id: %w", err)
		}
		suffix[i] = bookingIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s%s%d", BookingIDPrefix, suffix, id), nil
}
