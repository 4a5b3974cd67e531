package domain

import "time"

// Route is reference data owned by route management; scheduling only reads
// its duration.
type Route struct {
	ID              int64
	BookingRouteID  string
	Slug            string
	FromLocation    string
	ToLocation      string
	DurationMinutes int
	Distance        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r Route) Name() string {
	return r.FromLocation + " → " + r.ToLocation
}
