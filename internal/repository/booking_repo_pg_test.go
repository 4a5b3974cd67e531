package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewRouteRepository(t *testing.T) {
	assert.NotNil(t, NewRouteRepository(&pgxpool.Pool{}))
}

func TestNewResourceRepository(t *testing.T) {
	assert.NotNil(t, NewResourceRepository(&pgxpool.Pool{}))
}

func TestResourceColumn(t *testing.T) {
	col, err := resourceColumn(domain.ResourceDriver)
	require.NoError(t, err)
	assert.Equal(t, "driver_id", col)

	col, err = resourceColumn(domain.ResourceVehicle)
	require.NoError(t, err)
	assert.Equal(t, "vehicle_id", col)

	_, err = resourceColumn("aircraft")
	assert.Error(t, err)

	table, err := resourceTable(domain.ResourceVehicle)
	require.NoError(t, err)
	assert.Equal(t, "vehicles", table)
}

func TestDateConversion(t *testing.T) {
	assert.Nil(t, dateFromPG(pgtype.Date{}))
	assert.False(t, dateToPG(nil).Valid)

	d := domain.Date{Year: 2025, Month: 1, Day: 10}
	pg := dateToPG(&d)
	require.True(t, pg.Valid)
	assert.Equal(t, d, *dateFromPG(pg))
}

func TestClockConversion(t *testing.T) {
	assert.Nil(t, clockFromPG(pgtype.Time{}))
	assert.False(t, clockToPG(nil).Valid)

	c := domain.Clock{Hour: 8, Minute: 45}
	pg := clockToPG(&c)
	require.True(t, pg.Valid)
	assert.Equal(t, int64((8*60+45)*60_000_000), pg.Microseconds)
	assert.Equal(t, c, *clockFromPG(pg))
}

func TestNotFoundMapping(t *testing.T) {
	err := notFound("booking", pgx.ErrNoRows)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, errors.Is(err, pgx.ErrNoRows))

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound("booking", other))
}

func TestWithinTx_ReusesTransaction(t *testing.T) {
	repo := &PGBookingRepository{}
	called := false
	err := repo.WithinTx(context.Background(), func(tx BookingRepository) error {
		called = true
		assert.Same(t, repo, tx)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

type execRecorder struct {
	sql  string
	args []any
	tag  pgconn.CommandTag
}

func (e *execRecorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql, e.args = sql, args
	return e.tag, nil
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestTransitionStatus_StatusMovedOn(t *testing.T) {
	db := &execRecorder{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := &PGBookingRepository{db: db}

	b, err := repo.TransitionStatus(context.Background(), "fctab12c1", domain.BookingStatusAssigned, domain.BookingStatusCompleted)

	assert.Nil(t, b)
	assert.ErrorIs(t, err, domain.ErrStatusChanged)
	assert.Contains(t, db.sql, "booking_status=$3")
	assert.Equal(t, []any{domain.BookingStatusCompleted, "fctab12c1", domain.BookingStatusAssigned}, db.args)
}
