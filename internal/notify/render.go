package notify

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/email"
)

const signature = "Best regards,\nFirst Class Transfer Team"

var passengerStatusText = map[domain.BookingStatus]string{
	domain.BookingStatusCompleted: "Your trip has been completed. Thank you for choosing First Class Transfer!",
	domain.BookingStatusCancelled: "Your booking has been cancelled. If you did not request this cancellation, please contact us immediately.",
}

var driverStatusText = map[domain.BookingStatus]string{
	domain.BookingStatusCompleted: "This booking has been marked as completed. Great job!",
	domain.BookingStatusCancelled: "This booking has been cancelled.",
}

// PassengerMessage renders the email for the booking's passenger. ok is false
// when the event is not something passengers are told about.
func PassengerMessage(e Event) (email.Message, bool) {
	if e.PassengerEmail == "" {
		return email.Message{}, false
	}

	var subject, intro string
	switch e.Type {
	case EventBookingCreated:
		subject = "Booking Received - #" + e.BookingID
		intro = "Thank you for your booking. We will confirm your driver and vehicle shortly."
	case EventBookingUpdated:
		subject = "Booking Updated - #" + e.BookingID
		intro = "Your booking has been updated."
	case EventStatusChanged, EventBookingCancelled:
		subject = fmt.Sprintf("Booking %s - #%s", e.Status, e.BookingID)
		intro = passengerStatusText[e.Status]
		if intro == "" {
			intro = fmt.Sprintf("Your booking status has been updated to %s.", e.Status)
		}
	default:
		return email.Message{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n%s\n\n", e.PassengerName, intro)
	writeChanges(&b, e.Changes)
	writeDetails(&b, e)
	if e.PreviousStatus != "" {
		fmt.Fprintf(&b, "- Previous Status: %s\n- New Status: %s\n", e.PreviousStatus, e.Status)
	}
	b.WriteString("\n" + signature)

	return email.Message{To: e.PassengerEmail, Subject: subject, Body: b.String()}, true
}

// DriverMessage renders the notification for the assigned driver.
func DriverMessage(e Event, driver domain.Driver) (email.Message, bool) {
	if driver.Email == "" {
		return email.Message{}, false
	}

	var subject, intro string
	switch e.Type {
	case EventDriverAssigned:
		subject = "New Booking Assignment - #" + e.BookingID
		intro = "You have been assigned to a new booking."
	case EventVehicleAssigned:
		subject = "Vehicle Assigned - #" + e.BookingID
		intro = "A vehicle has been assigned to your booking."
	case EventBookingUpdated:
		subject = "Booking Updated - #" + e.BookingID
		intro = "A booking you are assigned to has been updated."
	case EventStatusChanged, EventBookingCancelled:
		subject = "Booking Status Changed - #" + e.BookingID
		intro = driverStatusText[e.Status]
		if intro == "" {
			intro = fmt.Sprintf("A booking you were assigned to has been updated to %s.", e.Status)
		}
	default:
		return email.Message{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n%s\n\n", driver.FullName, intro)
	writeChanges(&b, e.Changes)
	writeDetails(&b, e)
	if e.PassengerName != "" {
		fmt.Fprintf(&b, "- Passenger: %s\n", e.PassengerName)
	}
	b.WriteString("\n" + signature)

	return email.Message{To: driver.Email, Subject: subject, Body: b.String()}, true
}

func writeChanges(b *strings.Builder, changes []string) {
	if len(changes) == 0 {
		return
	}
	b.WriteString("Changes:\n")
	for _, c := range changes {
		b.WriteString("• " + c + "\n")
	}
	b.WriteString("\n")
}

func writeDetails(b *strings.Builder, e Event) {
	b.WriteString("Booking Details:\n")
	fmt.Fprintf(b, "- Booking ID: %s\n", e.BookingID)
	if e.Route != "" {
		fmt.Fprintf(b, "- Route: %s\n", e.Route)
	}
	if e.PickupDate != nil {
		fmt.Fprintf(b, "- Pickup Date: %s\n", e.PickupDate.Long())
	}
	if e.PickupTime != nil {
		fmt.Fprintf(b, "- Pickup Time: %s\n", e.PickupTime.Kitchen())
	}
	if e.TripType == domain.TripTypeReturn && e.ReturnDate != nil && e.ReturnTime != nil {
		fmt.Fprintf(b, "- Return: %s %s\n", e.ReturnDate.Long(), e.ReturnTime.Kitchen())
	}
	fmt.Fprintf(b, "- Status: %s\n", e.Status)
}
