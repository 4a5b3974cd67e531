package schedule

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/transfers/internal/domain"
)

// BookingSource is the read side of the booking store the resolver scans.
// Implementations return non-cancelled bookings ordered by id, without the
// excluded booking.
type BookingSource interface {
	BookingsForResource(ctx context.Context, kind domain.ResourceKind, resourceID int64, excludeBookingID string) ([]domain.Booking, error)
	AssignedBookings(ctx context.Context, kind domain.ResourceKind, excludeBookingID string) ([]domain.Booking, error)
}

// Conflict names the existing booking that already holds a resource.
type Conflict struct {
	Kind       domain.ResourceKind
	ResourceID int64
	Booking    domain.Booking
	Windows    []Window
}

func (c *Conflict) Err() error {
	return domain.ConflictError{
		Resource:   c.Kind,
		ResourceID: c.ResourceID,
		BookingID:  c.Booking.BookingID,
		Windows:    Describe(c.Windows),
	}
}

type Resolver struct {
	calc   Calculator
	source BookingSource
}

func NewResolver(calc Calculator, source BookingSource) *Resolver {
	return &Resolver{calc: calc, source: source}
}

// FindConflict returns the first booking of the resource whose windows
// overlap the candidate's, or nil. A nil resource never conflicts.
func (r *Resolver) FindConflict(ctx context.Context, kind domain.ResourceKind, resourceID *int64, candidate domain.Itinerary, excludeBookingID string) (*Conflict, error) {
	if resourceID == nil {
		return nil, nil
	}

	wanted := r.calc.Windows(candidate)
	if len(wanted) == 0 {
		return nil, nil
	}

	existing, err := r.source.BookingsForResource(ctx, kind, *resourceID, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("load %s %d bookings: %w", kind, *resourceID, err)
	}

	for _, b := range active(existing, excludeBookingID) {
		busy := r.calc.Windows(b.Itinerary)
		if anyOverlap(wanted, busy) {
			return &Conflict{Kind: kind, ResourceID: *resourceID, Booking: b, Windows: busy}, nil
		}
	}
	return nil, nil
}

// AvailableResources filters pool down to the resources with no overlapping
// booking, keeping pool order. It makes one pass over all assigned bookings
// instead of one query per resource.
func (r *Resolver) AvailableResources(ctx context.Context, kind domain.ResourceKind, pool []int64, candidate domain.Itinerary, excludeBookingID string) ([]int64, error) {
	wanted := r.calc.Windows(candidate)
	if len(wanted) == 0 {
		return append([]int64(nil), pool...), nil
	}

	existing, err := r.source.AssignedBookings(ctx, kind, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("load assigned %s bookings: %w", kind, err)
	}

	busy := make(map[int64]struct{})
	for _, b := range active(existing, excludeBookingID) {
		id := b.Resource(kind)
		if id == nil {
			continue
		}
		if _, seen := busy[*id]; seen {
			continue
		}
		if anyOverlap(wanted, r.calc.Windows(b.Itinerary)) {
			busy[*id] = struct{}{}
		}
	}

	free := make([]int64, 0, len(pool))
	for _, id := range pool {
		if _, taken := busy[id]; !taken {
			free = append(free, id)
		}
	}
	return free, nil
}

// active drops cancelled and excluded bookings and orders the rest by id so
// scans are deterministic whatever the source returns.
func active(bookings []domain.Booking, excludeBookingID string) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == domain.BookingStatusCancelled {
			continue
		}
		if excludeBookingID != "" && b.BookingID == excludeBookingID {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
