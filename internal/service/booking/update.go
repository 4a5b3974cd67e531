package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/transfers/internal/changes"
	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/notify"
	"github.com/Domenick1991/transfers/internal/observability"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/schedule"
)

// UpdateBooking applies an admin edit. When the schedule moves, the driver
// and vehicle already on the booking are checked against their other work
// before anything is written.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID string, patch domain.BookingPatch) (*UpdateResult, error) {
	var (
		result   UpdateResult
		previous domain.BookingStatus
	)
	err := s.bookings.WithinTx(ctx, func(tx repository.BookingRepository) error {
		current, err := tx.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		previous = current.Status

		tracker := changes.Capture(*current)
		next := patch.Apply(*current)
		if err := validateTransition(*current, next); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}

		if tracker.ScheduleChanged(patch) && next.Status != domain.BookingStatusCancelled {
			resolver := schedule.NewResolver(s.calc, tx)
			for _, kind := range []domain.ResourceKind{domain.ResourceDriver, domain.ResourceVehicle} {
				id := next.Resource(kind)
				if id == nil {
					continue
				}
				if err := tx.LockResource(ctx, kind, *id); err != nil {
					return err
				}
				conflict, err := resolver.FindConflict(ctx, kind, id, next.Itinerary, next.BookingID)
				if err != nil {
					return err
				}
				if conflict != nil {
					observability.ConflictsTotal.WithLabelValues(string(kind), "reschedule").Inc()
					return conflict.Err()
				}
			}
		}

		result.Changes = tracker.Diff(patch)
		if len(result.Changes) == 0 && next.PaymentStatus == current.PaymentStatus {
			result.Booking = current
			return nil
		}
		if err := tx.Update(ctx, &next); err != nil {
			return err
		}
		result.Booking = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Changes) > 0 {
		s.logger.InfoContext(ctx, "booking updated", slog.String("booking_id", bookingID), slog.Any("changes", result.Changes))

		route := s.routeName(ctx, result.Booking.RouteID)
		event := notify.NewEvent(notify.EventBookingUpdated, *result.Booking, route)
		event.Changes = result.Changes
		s.publish(ctx, event)

		if result.Booking.Status != previous {
			statusEvent := notify.NewEvent(notify.EventStatusChanged, *result.Booking, route)
			statusEvent.PreviousStatus = previous
			s.publish(ctx, statusEvent)
		}
	}
	return &result, nil
}

// validateTransition keeps terminal statuses terminal and only lets a booking
// be marked Assigned once it has both a driver and a vehicle.
func validateTransition(current, next domain.Booking) error {
	if !next.Status.Valid() {
		return domain.ValidationError{Field: "booking_status", Msg: fmt.Sprintf("unknown status %q", next.Status)}
	}
	if current.Status.Terminal() && next.Status != current.Status {
		return fmt.Errorf("move booking %s from %s to %s: %w", current.BookingID, current.Status, next.Status, domain.ErrTerminalStatus)
	}
	if next.Status == domain.BookingStatusAssigned && !next.FullyAssigned() {
		return domain.ValidationError{Field: "booking_status", Msg: "a booking needs both a driver and a vehicle to be Assigned"}
	}
	return nil
}
