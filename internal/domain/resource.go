package domain

import "time"

// ResourceKind names the two things a booking occupies.
type ResourceKind string

const (
	ResourceDriver  ResourceKind = "driver"
	ResourceVehicle ResourceKind = "vehicle"
)

func (k ResourceKind) Valid() bool {
	return k == ResourceDriver || k == ResourceVehicle
}

type Driver struct {
	ID          int64
	FullName    string
	Email       string
	PhoneNumber string
	Status      string
	IsActive    bool
	Disabled    bool
}

// Assignable reports whether the driver belongs to the pool offered for new work.
func (d Driver) Assignable() bool {
	return d.IsActive && !d.Disabled
}

type Vehicle struct {
	ID            int64
	LicensePlate  string
	Make          string
	Model         string
	VehicleType   string
	Status        string
	MaxPassengers int
	MaxLuggage    int
	IsActive      bool
	CreatedAt     time.Time
}
