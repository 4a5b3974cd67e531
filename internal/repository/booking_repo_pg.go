package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingFilter struct {
	Status        domain.BookingStatus
	PickupDate    *domain.Date
	PaymentStatus string
	VehicleType   string
	DriverID      *int64
	Limit         int
	Offset        int
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error)
	// GetForUpdate locks the booking row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	BookingsForResource(ctx context.Context, kind domain.ResourceKind, resourceID int64, excludeBookingID string) ([]domain.Booking, error)
	AssignedBookings(ctx context.Context, kind domain.ResourceKind, excludeBookingID string) ([]domain.Booking, error)
	// LockResource takes a row lock on the driver or vehicle so concurrent
	// assignments of the same resource serialize.
	LockResource(ctx context.Context, kind domain.ResourceKind, resourceID int64) error
	SetResource(ctx context.Context, id int64, kind domain.ResourceKind, resourceID *int64, status domain.BookingStatus) error
	Update(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) (*domain.Booking, error)
	// TransitionStatus moves the booking from one status to another and
	// returns domain.ErrStatusChanged when it is no longer in from.
	TransitionStatus(ctx context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error)
	WithinTx(ctx context.Context, fn func(tx BookingRepository) error) error
}

type PGBookingRepository struct {
	pool *pgxpool.Pool
	db   querier
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{pool: pool, db: pool}
}

const bookingColumns = `b.id, COALESCE(b.booking_id, ''), b.route_id, r.duration_minutes, b.trip_type,
	b.pickup_date, b.pickup_time, b.return_date, b.return_time, b.booking_status,
	b.driver_id, b.vehicle_id, b.vehicle_type, b.time_period, b.payment_type, b.payment_status,
	b.total_amount, b.amount_paid, b.outstanding_amount, b.passenger_name, b.passenger_email,
	b.created_at, b.updated_at`

const bookingFrom = ` FROM bookings b JOIN routes r ON r.id = b.route_id`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b                                  domain.Booking
		pickupDate, returnDate             pgtype.Date
		pickupTime, returnTime             pgtype.Time
		vehicleType, timePeriod, payStatus pgtype.Text
	)
	if err := row.Scan(&b.ID, &b.BookingID, &b.RouteID, &b.RouteDurationMinutes, &b.TripType,
		&pickupDate, &pickupTime, &returnDate, &returnTime, &b.Status,
		&b.DriverID, &b.VehicleID, &vehicleType, &timePeriod, &b.PaymentType, &payStatus,
		&b.TotalAmount, &b.AmountPaid, &b.OutstandingAmount, &b.PassengerName, &b.PassengerEmail,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.PickupDate = dateFromPG(pickupDate)
	b.PickupTime = clockFromPG(pickupTime)
	b.ReturnDate = dateFromPG(returnDate)
	b.ReturnTime = clockFromPG(returnTime)
	b.VehicleType = vehicleType.String
	b.TimePeriod = timePeriod.String
	b.PaymentStatus = payStatus.String
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Create inserts the booking and assigns its public reference, which needs
// the generated row id.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.WithinTx(ctx, func(tx BookingRepository) error {
		db := tx.(*PGBookingRepository).db

		if err := db.QueryRow(ctx, `INSERT INTO bookings (route_id, trip_type, pickup_date, pickup_time, return_date, return_time,
			booking_status, vehicle_type, time_period, payment_type, payment_status, total_amount, amount_paid,
			outstanding_amount, passenger_name, passenger_email)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id, created_at, updated_at`,
			booking.RouteID, booking.TripType, dateToPG(booking.PickupDate), clockToPG(booking.PickupTime),
			dateToPG(booking.ReturnDate), clockToPG(booking.ReturnTime), booking.Status, booking.VehicleType,
			booking.TimePeriod, booking.PaymentType, booking.PaymentStatus, booking.TotalAmount, booking.AmountPaid,
			booking.OutstandingAmount, booking.PassengerName, booking.PassengerEmail).
			Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		ref, err := domain.NewBookingID(booking.ID)
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, `UPDATE bookings SET booking_id=$1 WHERE id=$2`, ref, booking.ID); err != nil {
			return fmt.Errorf("set booking id: %w", err)
		}
		booking.BookingID = ref
		return nil
	})
}

func (r *PGBookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+` WHERE b.booking_id=$1`, bookingID))
	if err != nil {
		return nil, notFound("booking", err)
	}
	return b, nil
}

func (r *PGBookingRepository) GetForUpdate(ctx context.Context, bookingID string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+` WHERE b.booking_id=$1 FOR UPDATE OF b`, bookingID))
	if err != nil {
		return nil, notFound("booking", err)
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("b.booking_status ILIKE $%d", string(filter.Status))
	}
	if filter.PickupDate != nil {
		add("b.pickup_date = $%d", dateToPG(filter.PickupDate))
	}
	if filter.PaymentStatus != "" {
		add("b.payment_status ILIKE $%d", filter.PaymentStatus)
	}
	if filter.VehicleType != "" {
		add("b.vehicle_type = $%d", filter.VehicleType)
	}
	if filter.DriverID != nil {
		add("b.driver_id = $%d", *filter.DriverID)
	}

	query := `SELECT ` + bookingColumns + bookingFrom
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY b.pickup_date DESC, b.pickup_time DESC, b.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func resourceColumn(kind domain.ResourceKind) (string, error) {
	switch kind {
	case domain.ResourceDriver:
		return "driver_id", nil
	case domain.ResourceVehicle:
		return "vehicle_id", nil
	}
	return "", fmt.Errorf("unknown resource kind %q", kind)
}

func resourceTable(kind domain.ResourceKind) (string, error) {
	switch kind {
	case domain.ResourceDriver:
		return "drivers", nil
	case domain.ResourceVehicle:
		return "vehicles", nil
	}
	return "", fmt.Errorf("unknown resource kind %q", kind)
}

func (r *PGBookingRepository) BookingsForResource(ctx context.Context, kind domain.ResourceKind, resourceID int64, excludeBookingID string) ([]domain.Booking, error) {
	column, err := resourceColumn(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+bookingFrom+`
		WHERE b.`+column+` = $1 AND b.booking_status <> $2 AND ($3 = '' OR b.booking_id IS DISTINCT FROM $3)
		ORDER BY b.id`, resourceID, domain.BookingStatusCancelled, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) AssignedBookings(ctx context.Context, kind domain.ResourceKind, excludeBookingID string) ([]domain.Booking, error) {
	column, err := resourceColumn(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+bookingFrom+`
		WHERE b.`+column+` IS NOT NULL AND b.booking_status <> $1 AND ($2 = '' OR b.booking_id IS DISTINCT FROM $2)
		ORDER BY b.id`, domain.BookingStatusCancelled, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) LockResource(ctx context.Context, kind domain.ResourceKind, resourceID int64) error {
	table, err := resourceTable(kind)
	if err != nil {
		return err
	}
	var id int64
	if err := r.db.QueryRow(ctx, `SELECT id FROM `+table+` WHERE id=$1 FOR UPDATE`, resourceID).Scan(&id); err != nil {
		return notFound(string(kind), err)
	}
	return nil
}

func (r *PGBookingRepository) SetResource(ctx context.Context, id int64, kind domain.ResourceKind, resourceID *int64, status domain.BookingStatus) error {
	column, err := resourceColumn(kind)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(ctx, `UPDATE bookings SET `+column+`=$1, booking_status=$2, updated_at=now() WHERE id=$3`, resourceID, status, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET trip_type=$1, pickup_date=$2, pickup_time=$3, return_date=$4, return_time=$5,
		booking_status=$6, time_period=$7, payment_type=$8, payment_status=$9, updated_at=now()
		WHERE id=$10`,
		booking.TripType, dateToPG(booking.PickupDate), clockToPG(booking.PickupTime), dateToPG(booking.ReturnDate),
		clockToPG(booking.ReturnTime), booking.Status, booking.TimePeriod, booking.PaymentType, booking.PaymentStatus, booking.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFoundError{Resource: "booking"}
	}
	return nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, bookingID string, status domain.BookingStatus) (*domain.Booking, error) {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET booking_status=$1, updated_at=now() WHERE booking_id=$2`, status, bookingID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, domain.NotFoundError{Resource: "booking"}
	}
	return r.GetByBookingID(ctx, bookingID)
}

func (r *PGBookingRepository) TransitionStatus(ctx context.Context, bookingID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET booking_status=$1, updated_at=now()
		WHERE booking_id=$2 AND booking_status=$3`, to, bookingID, from)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, fmt.Errorf("booking %s: %w", bookingID, domain.ErrStatusChanged)
	}
	return r.GetByBookingID(ctx, bookingID)
}

// WithinTx runs fn against a repository bound to one read-committed
// transaction. Calls on an already transactional repository reuse it.
func (r *PGBookingRepository) WithinTx(ctx context.Context, fn func(tx BookingRepository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&PGBookingRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
