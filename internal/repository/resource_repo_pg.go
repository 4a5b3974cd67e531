package repository

import (
	"context"

	"github.com/Domenick1991/transfers/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResourceRepository reads the driver and vehicle pools offered for assignment.
type ResourceRepository interface {
	ActiveDrivers(ctx context.Context) ([]domain.Driver, error)
	ActiveVehicles(ctx context.Context, vehicleType string) ([]domain.Vehicle, error)
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type PGResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) ResourceRepository {
	return &PGResourceRepository{db: db}
}

const (
	driverColumns  = `id, full_name, email, phone_number, status, is_active, disabled`
	vehicleColumns = `id, license_plate, make, model, vehicle_type, status, max_passengers, max_luggage, is_active, created_at`
)

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var d domain.Driver
	if err := row.Scan(&d.ID, &d.FullName, &d.Email, &d.PhoneNumber, &d.Status, &d.IsActive, &d.Disabled); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.LicensePlate, &v.Make, &v.Model, &v.VehicleType, &v.Status,
		&v.MaxPassengers, &v.MaxLuggage, &v.IsActive, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PGResourceRepository) ActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	rows, err := r.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers WHERE is_active AND NOT disabled ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, *d)
	}
	return drivers, rows.Err()
}

// ActiveVehicles returns active vehicles, narrowed to one type when vehicleType is set.
func (r *PGResourceRepository) ActiveVehicles(ctx context.Context, vehicleType string) ([]domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles
		WHERE is_active AND ($1 = '' OR vehicle_type = $1) ORDER BY id`, vehicleType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *PGResourceRepository) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id=$1`, id))
	if err != nil {
		return nil, notFound("driver", err)
	}
	return d, nil
}

func (r *PGResourceRepository) GetVehicle(ctx context.Context, id int64) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
	if err != nil {
		return nil, notFound("vehicle", err)
	}
	return v, nil
}

var _ ResourceRepository = (*PGResourceRepository)(nil)
