package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/notify"
	"github.com/Domenick1991/transfers/internal/observability"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/schedule"
)

// Target is what a scheduling question is asked about: a saved booking, or
// a trip that has not been booked yet. BookingID wins when both are set.
// ExcludeBookingID leaves one booking out of a hypothetical scan, so a "what
// if booking X moved here" question does not collide with X itself.
type Target struct {
	BookingID        string
	Hypothetical     *HypotheticalInput
	ExcludeBookingID string
}

type HypotheticalInput struct {
	RouteID    int64           `json:"route_id"`
	TripType   domain.TripType `json:"trip_type"`
	PickupDate *domain.Date    `json:"pickup_date"`
	PickupTime *domain.Clock   `json:"pickup_time"`
	ReturnDate *domain.Date    `json:"return_date"`
	ReturnTime *domain.Clock   `json:"return_time"`
}

// resolveTarget returns the itinerary to check and the booking id to leave
// out of the scan, so a booking never conflicts with itself.
func (s *BookingService) resolveTarget(ctx context.Context, t Target) (domain.Itinerary, string, error) {
	if t.BookingID != "" {
		b, err := s.bookings.GetByBookingID(ctx, t.BookingID)
		if err != nil {
			return domain.Itinerary{}, "", err
		}
		return b.Itinerary, b.BookingID, nil
	}
	if t.Hypothetical == nil {
		return domain.Itinerary{}, "", domain.ValidationError{Msg: "booking_id or itinerary is required"}
	}

	in := t.Hypothetical
	if !in.TripType.Valid() {
		return domain.Itinerary{}, "", domain.ValidationError{Field: "trip_type", Msg: fmt.Sprintf("unknown trip type %q", in.TripType)}
	}
	route, err := s.routes.GetByID(ctx, in.RouteID)
	if err != nil {
		return domain.Itinerary{}, "", err
	}
	return domain.Itinerary{
		RouteDurationMinutes: route.DurationMinutes,
		TripType:             in.TripType,
		PickupDate:           in.PickupDate,
		PickupTime:           in.PickupTime,
		ReturnDate:           in.ReturnDate,
		ReturnTime:           in.ReturnTime,
	}, t.ExcludeBookingID, nil
}

func (s *BookingService) CheckDriver(ctx context.Context, driverID int64, target Target) (*schedule.Conflict, error) {
	return s.check(ctx, domain.ResourceDriver, driverID, target)
}

func (s *BookingService) CheckVehicle(ctx context.Context, vehicleID int64, target Target) (*schedule.Conflict, error) {
	return s.check(ctx, domain.ResourceVehicle, vehicleID, target)
}

func (s *BookingService) check(ctx context.Context, kind domain.ResourceKind, resourceID int64, target Target) (*schedule.Conflict, error) {
	itinerary, exclude, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	conflict, err := schedule.NewResolver(s.calc, s.bookings).FindConflict(ctx, kind, &resourceID, itinerary, exclude)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		observability.ConflictsTotal.WithLabelValues(string(kind), "check").Inc()
	}
	return conflict, nil
}

func (s *BookingService) AvailableDrivers(ctx context.Context, target Target) ([]domain.Driver, error) {
	defer observeScan(domain.ResourceDriver, time.Now())

	itinerary, exclude, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	drivers, err := s.resources.ActiveDrivers(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]int64, 0, len(drivers))
	for _, d := range drivers {
		pool = append(pool, d.ID)
	}
	free, err := schedule.NewResolver(s.calc, s.bookings).AvailableResources(ctx, domain.ResourceDriver, pool, itinerary, exclude)
	if err != nil {
		return nil, err
	}

	keep := idSet(free)
	available := make([]domain.Driver, 0, len(free))
	for _, d := range drivers {
		if keep[d.ID] {
			available = append(available, d)
		}
	}
	return available, nil
}

func (s *BookingService) AvailableVehicles(ctx context.Context, target Target, vehicleType string) ([]domain.Vehicle, error) {
	defer observeScan(domain.ResourceVehicle, time.Now())

	itinerary, exclude, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.resources.ActiveVehicles(ctx, vehicleType)
	if err != nil {
		return nil, err
	}

	pool := make([]int64, 0, len(vehicles))
	for _, v := range vehicles {
		pool = append(pool, v.ID)
	}
	free, err := schedule.NewResolver(s.calc, s.bookings).AvailableResources(ctx, domain.ResourceVehicle, pool, itinerary, exclude)
	if err != nil {
		return nil, err
	}

	keep := idSet(free)
	available := make([]domain.Vehicle, 0, len(free))
	for _, v := range vehicles {
		if keep[v.ID] {
			available = append(available, v)
		}
	}
	return available, nil
}

func (s *BookingService) AssignDriver(ctx context.Context, bookingID string, driverID *int64) (*domain.Booking, error) {
	if driverID != nil {
		driver, err := s.resources.GetDriver(ctx, *driverID)
		if err != nil {
			return nil, err
		}
		if !driver.Assignable() {
			return nil, domain.ValidationError{Field: "driver_id", Msg: fmt.Sprintf("driver %d is inactive or disabled", driver.ID)}
		}
	}
	return s.assign(ctx, domain.ResourceDriver, bookingID, driverID)
}

func (s *BookingService) AssignVehicle(ctx context.Context, bookingID string, vehicleID *int64) (*domain.Booking, error) {
	if vehicleID != nil {
		vehicle, err := s.resources.GetVehicle(ctx, *vehicleID)
		if err != nil {
			return nil, err
		}
		if !vehicle.IsActive {
			return nil, domain.ValidationError{Field: "vehicle_id", Msg: fmt.Sprintf("vehicle %d is inactive", vehicle.ID)}
		}
	}
	return s.assign(ctx, domain.ResourceVehicle, bookingID, vehicleID)
}

// assign checks and writes one resource of a booking inside a transaction
// that holds row locks on both the booking and the resource, so two requests
// cannot both pass the scan for overlapping trips. A nil id unassigns.
func (s *BookingService) assign(ctx context.Context, kind domain.ResourceKind, bookingID string, resourceID *int64) (*domain.Booking, error) {
	if resourceID != nil && s.cache != nil {
		token, ok, err := s.cache.AcquireResourceLock(ctx, kind, *resourceID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			observability.AssignmentsTotal.WithLabelValues(string(kind), "busy").Inc()
			return nil, domain.ErrResourceBusy
		}
		defer func() {
			if err := s.cache.ReleaseResourceLock(ctx, kind, *resourceID, token); err != nil {
				s.logger.WarnContext(ctx, "release resource lock", slog.String("resource", string(kind)), slog.String("error", err.Error()))
			}
		}()
	}

	var (
		updated domain.Booking
		changed bool
	)
	err := s.bookings.WithinTx(ctx, func(tx repository.BookingRepository) error {
		current, err := tx.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return fmt.Errorf("assign %s to booking %s: %w", kind, bookingID, domain.ErrTerminalStatus)
		}
		if sameID(current.Resource(kind), resourceID) {
			updated = *current
			return nil
		}

		if resourceID != nil {
			if err := tx.LockResource(ctx, kind, *resourceID); err != nil {
				return err
			}
			conflict, err := schedule.NewResolver(s.calc, tx).FindConflict(ctx, kind, resourceID, current.Itinerary, current.BookingID)
			if err != nil {
				return err
			}
			if conflict != nil {
				observability.ConflictsTotal.WithLabelValues(string(kind), "assign").Inc()
				return conflict.Err()
			}
		}

		updated = *current
		updated.SetResource(kind, resourceID)
		updated.Status = updated.AssignmentStatus()
		changed = true
		return tx.SetResource(ctx, updated.ID, kind, resourceID, updated.Status)
	})
	if err != nil {
		observability.AssignmentsTotal.WithLabelValues(string(kind), "rejected").Inc()
		return nil, err
	}
	observability.AssignmentsTotal.WithLabelValues(string(kind), "ok").Inc()

	if changed && resourceID != nil {
		eventType := notify.EventDriverAssigned
		if kind == domain.ResourceVehicle {
			eventType = notify.EventVehicleAssigned
		}
		s.logger.InfoContext(ctx, "resource assigned",
			slog.String("booking_id", bookingID),
			slog.String("resource", string(kind)),
			slog.Int64("resource_id", *resourceID),
			slog.String("status", string(updated.Status)),
		)
		s.publish(ctx, notify.NewEvent(eventType, updated, s.routeName(ctx, updated.RouteID)))
	}
	return &updated, nil
}

func observeScan(kind domain.ResourceKind, started time.Time) {
	observability.AvailabilityScanDuration.WithLabelValues(string(kind)).Observe(time.Since(started).Seconds())
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
