package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/Domenick1991/transfers/internal/notify"
	"github.com/Domenick1991/transfers/internal/repository"
	"github.com/Domenick1991/transfers/internal/schedule"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error)
	CheckDriver(ctx context.Context, driverID int64, target Target) (*schedule.Conflict, error)
	CheckVehicle(ctx context.Context, vehicleID int64, target Target) (*schedule.Conflict, error)
	AvailableDrivers(ctx context.Context, target Target) ([]domain.Driver, error)
	AvailableVehicles(ctx context.Context, target Target, vehicleType string) ([]domain.Vehicle, error)
	AssignDriver(ctx context.Context, bookingID string, driverID *int64) (*domain.Booking, error)
	AssignVehicle(ctx context.Context, bookingID string, vehicleID *int64) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, patch domain.BookingPatch) (*UpdateResult, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CompleteFinishedBookings(ctx context.Context, now time.Time) ([]domain.Booking, error)
}

type Cache interface {
	AcquireResourceLock(ctx context.Context, kind domain.ResourceKind, id int64, ttl time.Duration) (string, bool, error)
	ReleaseResourceLock(ctx context.Context, kind domain.ResourceKind, id int64, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	routes             repository.RouteRepository
	resources          repository.ResourceRepository
	cache              Cache
	producer           Producer
	calc               schedule.Calculator
	logger             *slog.Logger
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	location           *time.Location
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBuffer sets the turnaround added after every trip leg.
func WithBuffer(buffer time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.calc = schedule.NewCalculator(buffer)
	}
}

func WithAssignmentLockTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.lockTTL = ttl
	}
}

// WithLocation sets the operator's zone used to read pickup wall times
// against the real clock.
func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	routes repository.RouteRepository,
	resources repository.ResourceRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		routes:       routes,
		resources:    resources,
		cache:        cache,
		producer:     producer,
		calc:         schedule.NewCalculator(schedule.DefaultBuffer),
		logger:       slog.Default(),
		bookingTopic: bookingTopic,
		lockTTL:      10 * time.Second,
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreateBookingInput struct {
	RouteID           int64              `json:"route_id"`
	TripType          domain.TripType    `json:"trip_type"`
	PickupDate        *domain.Date       `json:"pickup_date"`
	PickupTime        *domain.Clock      `json:"pickup_time"`
	ReturnDate        *domain.Date       `json:"return_date"`
	ReturnTime        *domain.Clock      `json:"return_time"`
	VehicleType       string             `json:"vehicle_type"`
	TimePeriod        string             `json:"time_period"`
	PaymentType       domain.PaymentType `json:"payment_type"`
	TotalAmount       int64              `json:"total_amount"`
	AmountPaid        float64            `json:"amount_paid"`
	OutstandingAmount float64            `json:"outstanding_amount"`
	PassengerName     string             `json:"passenger_name"`
	PassengerEmail    string             `json:"passenger_email"`
}

// UpdateResult pairs the saved booking with the human-readable change list
// sent to the driver and passenger.
type UpdateResult struct {
	Booking *domain.Booking
	Changes []string
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	route, err := s.routes.GetByID(ctx, input.RouteID)
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		RouteID: route.ID,
		Itinerary: domain.Itinerary{
			RouteDurationMinutes: route.DurationMinutes,
			TripType:             input.TripType,
			PickupDate:           input.PickupDate,
			PickupTime:           input.PickupTime,
		},
		Status:            domain.BookingStatusPending,
		VehicleType:       input.VehicleType,
		TimePeriod:        input.TimePeriod,
		PaymentType:       input.PaymentType,
		PaymentStatus:     domain.PaymentStatusFor(input.PaymentType),
		TotalAmount:       input.TotalAmount,
		AmountPaid:        roundUpCents(input.AmountPaid),
		OutstandingAmount: roundUpCents(input.OutstandingAmount),
		PassengerName:     input.PassengerName,
		PassengerEmail:    input.PassengerEmail,
	}
	if input.TripType == domain.TripTypeReturn {
		b.ReturnDate = input.ReturnDate
		b.ReturnTime = input.ReturnTime
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.PaymentStatus == "" {
		return nil, domain.ValidationError{Field: "payment_type", Msg: fmt.Sprintf("unknown payment type %q", input.PaymentType)}
	}
	if input.TotalAmount <= 0 {
		return nil, domain.ValidationError{Field: "total_amount", Msg: "total amount must be positive"}
	}
	if input.PassengerName == "" {
		return nil, domain.ValidationError{Field: "passenger_name", Msg: "passenger name is required"}
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking created", slog.String("booking_id", b.BookingID), slog.Int64("route_id", b.RouteID))
	s.publish(ctx, notify.NewEvent(notify.EventBookingCreated, *b, route.Name()))
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookings.GetByBookingID(ctx, bookingID)
}

func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	return s.bookings.List(ctx, filter)
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	var (
		cancelled *domain.Booking
		previous  domain.BookingStatus
	)
	err := s.bookings.WithinTx(ctx, func(tx repository.BookingRepository) error {
		current, err := tx.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		previous = current.Status
		switch current.Status {
		case domain.BookingStatusCancelled:
			cancelled = current
			return nil
		case domain.BookingStatusCompleted:
			return fmt.Errorf("cancel booking %s: %w", bookingID, domain.ErrTerminalStatus)
		}
		cancelled, err = tx.UpdateStatus(ctx, bookingID, domain.BookingStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}
	if previous == domain.BookingStatusCancelled {
		return cancelled, nil
	}

	s.logger.InfoContext(ctx, "booking cancelled", slog.String("booking_id", bookingID), slog.String("previous_status", string(previous)))
	event := notify.NewEvent(notify.EventBookingCancelled, *cancelled, s.routeName(ctx, cancelled.RouteID))
	event.PreviousStatus = previous
	s.publish(ctx, event)
	return cancelled, nil
}

// CompleteFinishedBookings marks assigned bookings whose last window has
// closed as completed.
func (s *BookingService) CompleteFinishedBookings(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	assigned, err := s.bookings.List(ctx, repository.BookingFilter{Status: domain.BookingStatusAssigned})
	if err != nil {
		return nil, err
	}

	wallNow := domain.WallTime(now, s.location)
	completed := make([]domain.Booking, 0)
	for _, b := range assigned {
		windows := s.calc.Windows(b.Itinerary)
		if len(windows) == 0 || windows[len(windows)-1].End.After(wallNow) {
			continue
		}
		updated, err := s.bookings.TransitionStatus(ctx, b.BookingID, domain.BookingStatusAssigned, domain.BookingStatusCompleted)
		if errors.Is(err, domain.ErrStatusChanged) {
			s.logger.InfoContext(ctx, "skip completion, booking moved on", slog.String("booking_id", b.BookingID))
			continue
		}
		if err != nil {
			return completed, err
		}
		event := notify.NewEvent(notify.EventStatusChanged, *updated, s.routeName(ctx, updated.RouteID))
		event.PreviousStatus = b.Status
		s.publish(ctx, event)
		completed = append(completed, *updated)
	}
	return completed, nil
}

func (s *BookingService) routeName(ctx context.Context, routeID int64) string {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		s.logger.WarnContext(ctx, "route lookup for notification failed", slog.Int64("route_id", routeID), slog.String("error", err.Error()))
		return ""
	}
	return route.Name()
}

// publish sends the event to the booking topic and, when configured, the
// notifications topic. The change is already committed, so failures are
// logged only.
func (s *BookingService) publish(ctx context.Context, event notify.Event) {
	if s.producer == nil {
		return
	}
	for _, topic := range []string{s.bookingTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.BookingID, event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish event",
				slog.String("type", string(event.Type)),
				slog.String("booking_id", event.BookingID),
				slog.String("topic", topic),
				slog.String("error", err.Error()),
			)
		}
	}
}

func roundUpCents(v float64) float64 {
	return math.Ceil(v*100) / 100
}

var _ BookingUseCase = (*BookingService)(nil)
