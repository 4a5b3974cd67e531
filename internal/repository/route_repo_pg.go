package repository

import (
	"context"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepository interface {
	List(ctx context.Context) ([]domain.Route, error)
	GetByID(ctx context.Context, id int64) (*domain.Route, error)
}

type PGRouteRepository struct {
	db *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) RouteRepository {
	return &PGRouteRepository{db: db}
}

const routeColumns = `id, booking_route_id, slug, from_location, to_location, duration_minutes, distance, created_at, updated_at`

func (r *PGRouteRepository) List(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY from_location, to_location`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	routes := make([]domain.Route, 0)
	for rows.Next() {
		var route domain.Route
		if err := rows.Scan(&route.ID, &route.BookingRouteID, &route.Slug, &route.FromLocation, &route.ToLocation,
			&route.DurationMinutes, &route.Distance, &route.CreatedAt, &route.UpdatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

func (r *PGRouteRepository) GetByID(ctx context.Context, id int64) (*domain.Route, error) {
	var route domain.Route
	err := r.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id).
		Scan(&route.ID, &route.BookingRouteID, &route.Slug, &route.FromLocation, &route.ToLocation,
			&route.DurationMinutes, &route.Distance, &route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return nil, notFound("route", err)
	}
	return &route, nil
}

var _ RouteRepository = (*PGRouteRepository)(nil)
