package domain

import "time"

// DriverStatus represents whether a driver is taking rides.
type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

// DriverStats are the counters accumulated at ride completion.
type DriverStats struct {
	Earnings    int64
	RidesCount  int
	HoursWorked float64
	Rating      *float64 // nil until the first rated ride
}

// Driver represents a captain in the system.
type Driver struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Status    DriverStatus
	Vehicle   Vehicle
	Stats     DriverStats
	CreatedAt time.Time
}

// DriverPresence is the dispatch projection of a driver: last position,
// capability and the realtime session it can be reached on.
type DriverPresence struct {
	DriverID     string
	Lat          float64
	Lng          float64
	VehicleClass VehicleClass
	Capacity     int
	DistanceKm   float64
	SessionID    string // empty when the driver has no live session
}

// Reachable reports whether the driver has a session to push events to.
func (p DriverPresence) Reachable() bool {
	return p.SessionID != ""
}
