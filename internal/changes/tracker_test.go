package changes

import (
	"testing"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/stretchr/testify/assert"
)

func existingBooking() domain.Booking {
	pickupDate := domain.Date{Year: 2025, Month: 3, Day: 1}
	pickupTime := domain.Clock{Hour: 8}
	return domain.Booking{
		BookingID: "fctaaaaa1",
		Itinerary: domain.Itinerary{
			RouteDurationMinutes: 45,
			TripType:             domain.TripTypeOneWay,
			PickupDate:           &pickupDate,
			PickupTime:           &pickupTime,
		},
		Status:        domain.BookingStatusPending,
		TimePeriod:    "Day Tariff",
		PaymentType:   domain.PaymentTypeCash,
		PaymentStatus: domain.PaymentStatusPartialPaid,
	}
}

func TestTracker_Diff(t *testing.T) {
	testCases := []struct {
		name     string
		patch    domain.BookingPatch
		expected []string
	}{
		{
			name:     "pickup time moved",
			patch:    domain.BookingPatch{PickupTime: domain.Some(domain.Clock{Hour: 9})},
			expected: []string{"Pickup Time: 08:00 AM → 09:00 AM"},
		},
		{
			name:     "identical values",
			patch:    domain.BookingPatch{PickupTime: domain.Some(domain.Clock{Hour: 8}), Status: domain.Some(domain.BookingStatusPending)},
			expected: []string{},
		},
		{
			name:     "empty patch",
			patch:    domain.BookingPatch{},
			expected: []string{},
		},
		{
			name: "return leg added",
			patch: domain.BookingPatch{
				TripType:   domain.Some(domain.TripTypeReturn),
				ReturnDate: domain.Some(domain.Date{Year: 2025, Month: 3, Day: 4}),
				ReturnTime: domain.Some(domain.Clock{Hour: 17, Minute: 30}),
			},
			expected: []string{
				"Return Date: Not set → March 04, 2025",
				"Return Time: Not set → 05:30 PM",
				"Trip Type: One Way → Return",
			},
		},
		{
			name:     "time period cleared",
			patch:    domain.BookingPatch{TimePeriod: domain.Null[string]()},
			expected: []string{"Time Period: Day Tariff → Not set"},
		},
		{
			name: "status and date",
			patch: domain.BookingPatch{
				Status:     domain.Some(domain.BookingStatusCancelled),
				PickupDate: domain.Some(domain.Date{Year: 2025, Month: 3, Day: 2}),
			},
			expected: []string{
				"Status: Pending → Cancelled",
				"Pickup Date: March 01, 2025 → March 02, 2025",
			},
		},
		{
			name:     "payment type",
			patch:    domain.BookingPatch{PaymentType: domain.Some(domain.PaymentTypeCard)},
			expected: []string{"Payment Type: cash → card"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tracker := Capture(existingBooking())
			assert.Equal(t, tc.expected, tracker.Diff(tc.patch))
		})
	}
}

func TestTracker_CaptureIsASnapshot(t *testing.T) {
	b := existingBooking()
	tracker := Capture(b)

	later := domain.Clock{Hour: 11}
	b.PickupTime = &later
	b.Status = domain.BookingStatusAssigned

	assert.Equal(t, []string{"Pickup Time: 08:00 AM → 11:00 AM"}, tracker.Diff(domain.BookingPatch{PickupTime: domain.Some(later)}))
}

func TestTracker_ScheduleChanged(t *testing.T) {
	tracker := Capture(existingBooking())

	assert.False(t, tracker.ScheduleChanged(domain.BookingPatch{}))
	assert.False(t, tracker.ScheduleChanged(domain.BookingPatch{PickupTime: domain.Some(domain.Clock{Hour: 8})}))
	assert.False(t, tracker.ScheduleChanged(domain.BookingPatch{Status: domain.Some(domain.BookingStatusCompleted)}))
	assert.False(t, tracker.ScheduleChanged(domain.BookingPatch{PaymentType: domain.Some(domain.PaymentTypeCard)}))
	assert.True(t, tracker.ScheduleChanged(domain.BookingPatch{PickupTime: domain.Some(domain.Clock{Hour: 8, Minute: 15})}))
	assert.True(t, tracker.ScheduleChanged(domain.BookingPatch{TripType: domain.Some(domain.TripTypeReturn)}))
	assert.True(t, tracker.ScheduleChanged(domain.BookingPatch{ReturnDate: domain.Some(domain.Date{Year: 2025, Month: 3, Day: 9})}))
}
