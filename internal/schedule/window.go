// Package schedule decides when bookings keep drivers and vehicles busy and
// whether two bookings may share one.
package schedule

import (
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
)

// DefaultBuffer is the turnaround time added after every leg.
const DefaultBuffer = 30 * time.Minute

// Window is a half-open interval [Start, End) during which a booking
// occupies its resources.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration { return w.End.Sub(w.Start) }

func (w Window) Overlaps(o Window) bool {
	return Overlaps(w.Start, w.End, o.Start, o.End)
}

// String renders the window for rejection messages. The end date is omitted
// when both ends fall on the same day.
func (w Window) String() string {
	start := w.Start.Format("2006-01-02 15:04")
	if domain.DateOf(w.Start) == domain.DateOf(w.End) {
		return start + " to " + w.End.Format("15:04")
	}
	return start + " to " + w.End.Format("2006-01-02 15:04")
}

// Overlaps reports whether [startA, endA) and [startB, endB) intersect.
// Windows that only touch do not overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

func anyOverlap(a, b []Window) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Overlaps(y) {
				return true
			}
		}
	}
	return false
}

// Describe formats every window of a booking.
func Describe(windows []Window) []string {
	out := make([]string, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.String())
	}
	return out
}

// Calculator derives busy windows from itineraries. The same buffer applies
// to every leg.
type Calculator struct {
	Buffer time.Duration
}

func NewCalculator(buffer time.Duration) Calculator {
	if buffer < 0 {
		buffer = 0
	}
	return Calculator{Buffer: buffer}
}

// Windows returns the pickup window and, for return trips with both return
// fields set, the return window. Missing data yields fewer windows rather
// than an error.
func (c Calculator) Windows(it domain.Itinerary) []Window {
	length := time.Duration(it.RouteDurationMinutes)*time.Minute + c.Buffer

	windows := make([]Window, 0, 2)
	if it.HasPickup() {
		start := it.PickupDate.At(*it.PickupTime)
		windows = append(windows, Window{Start: start, End: start.Add(length)})
	}
	if it.HasReturnLeg() {
		start := it.ReturnDate.At(*it.ReturnTime)
		windows = append(windows, Window{Start: start, End: start.Add(length)})
	}
	return windows
}
