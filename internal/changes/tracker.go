// Package changes reports which booking fields an update touched, in the
// wording sent to passengers and drivers.
package changes

import (
	"fmt"

	"github.com/Domenick1991/transfers/internal/domain"
)

const notSet = "Not set"

type field struct {
	label    string
	schedule bool
	before   func(domain.Booking) string
	after    func(domain.BookingPatch) (string, bool)
}

var fields = []field{
	{
		label:  "Status",
		before: func(b domain.Booking) string { return text(string(b.Status)) },
		after: func(p domain.BookingPatch) (string, bool) {
			return optionalText(p.Status), p.Status.Value != nil
		},
	},
	{
		label:    "Pickup Date",
		schedule: true,
		before:   func(b domain.Booking) string { return date(b.PickupDate) },
		after: func(p domain.BookingPatch) (string, bool) {
			return date(p.PickupDate.Value), p.PickupDate.Set
		},
	},
	{
		label:    "Pickup Time",
		schedule: true,
		before:   func(b domain.Booking) string { return clock(b.PickupTime) },
		after: func(p domain.BookingPatch) (string, bool) {
			return clock(p.PickupTime.Value), p.PickupTime.Set
		},
	},
	{
		label:    "Return Date",
		schedule: true,
		before:   func(b domain.Booking) string { return date(b.ReturnDate) },
		after: func(p domain.BookingPatch) (string, bool) {
			return date(p.ReturnDate.Value), p.ReturnDate.Set
		},
	},
	{
		label:    "Return Time",
		schedule: true,
		before:   func(b domain.Booking) string { return clock(b.ReturnTime) },
		after: func(p domain.BookingPatch) (string, bool) {
			return clock(p.ReturnTime.Value), p.ReturnTime.Set
		},
	},
	{
		label:    "Trip Type",
		schedule: true,
		before:   func(b domain.Booking) string { return text(string(b.TripType)) },
		after: func(p domain.BookingPatch) (string, bool) {
			return optionalText(p.TripType), p.TripType.Value != nil
		},
	},
	{
		label:  "Time Period",
		before: func(b domain.Booking) string { return text(b.TimePeriod) },
		after: func(p domain.BookingPatch) (string, bool) {
			return optionalText(p.TimePeriod), p.TimePeriod.Set
		},
	},
	{
		label:  "Payment Status",
		before: func(b domain.Booking) string { return text(b.PaymentStatus) },
		after: func(p domain.BookingPatch) (string, bool) {
			return optionalText(p.PaymentStatus), p.PaymentStatus.Set
		},
	},
	{
		label:  "Payment Type",
		before: func(b domain.Booking) string { return text(string(b.PaymentType)) },
		after: func(p domain.BookingPatch) (string, bool) {
			return optionalText(p.PaymentType), p.PaymentType.Set
		},
	},
}

// Tracker holds the state of one booking before an update. It only compares;
// sending and storing are left to the caller.
type Tracker struct {
	before domain.Booking
}

func Capture(original domain.Booking) *Tracker {
	return &Tracker{before: original}
}

// Diff lists the tracked fields present in the patch whose value differs from
// the captured one, as "<Label>: <old> → <new>".
func (t *Tracker) Diff(patch domain.BookingPatch) []string {
	out := []string{}
	for _, f := range fields {
		next, present := f.after(patch)
		if !present {
			continue
		}
		prev := f.before(t.before)
		if prev != next {
			out = append(out, fmt.Sprintf("%s: %s → %s", f.label, prev, next))
		}
	}
	return out
}

// ScheduleChanged reports whether any date, time or trip type field actually
// changed, which is what forces a fresh conflict check.
func (t *Tracker) ScheduleChanged(patch domain.BookingPatch) bool {
	for _, f := range fields {
		if !f.schedule {
			continue
		}
		next, present := f.after(patch)
		if present && next != f.before(t.before) {
			return true
		}
	}
	return false
}

func text(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func optionalText[T ~string](o domain.Optional[T]) string {
	if o.Value == nil {
		return notSet
	}
	return text(string(*o.Value))
}

func date(d *domain.Date) string {
	if d == nil {
		return notSet
	}
	return d.Long()
}

func clock(c *domain.Clock) string {
	if c == nil {
		return notSet
	}
	return c.Kitchen()
}
