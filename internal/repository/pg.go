package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func notFound(resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

func dateFromPG(d pgtype.Date) *domain.Date {
	if !d.Valid {
		return nil
	}
	v := domain.DateOf(d.Time)
	return &v
}

func dateToPG(d *domain.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func clockFromPG(t pgtype.Time) *domain.Clock {
	if !t.Valid {
		return nil
	}
	v := domain.ClockFromOffset(time.Duration(t.Microseconds) * time.Microsecond)
	return &v
}

func clockToPG(c *domain.Clock) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: c.SinceMidnight().Microseconds(), Valid: true}
}
