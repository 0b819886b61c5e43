package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "requested"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// allowedTransitions lists the forward edges of the ride state machine.
var allowedTransitions = map[RideStatus][]RideStatus{
	RideStatusRequested: {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:  {RideStatusOngoing, RideStatusCancelled},
	RideStatusOngoing:   {RideStatusCompleted, RideStatusCancelled},
}

// CanTransition reports whether a ride may move from one status to another.
func CanTransition(from, to RideStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FareQuote is the priced table computed once at ride creation.
// Breakdown keeps every class for audit; Total is the billed amount for the chosen class.
type FareQuote struct {
	Breakdown map[VehicleClass]int64
	Total     int64
}

// Ride represents a ride request and its lifecycle.
type Ride struct {
	ID           string
	RiderID      string
	DriverID     string // empty until accepted, then immutable
	Pickup       string
	Destination  string
	VehicleClass VehicleClass
	Fare         FareQuote
	Status       RideStatus
	OTP          string

	DistanceMeters  int64
	DurationSeconds int64
	AcceptedAt      time.Time
	StartedAt       time.Time
	EndedAt         time.Time

	Rating int // 0 means unrated

	PaymentStatus  PaymentStatus
	PaymentMethod  PaymentMethod
	PaymentOrderID string
	PaymentID      string
	PaymentEvents  []PaymentEvent

	CancelledAt time.Time
	CancelledBy string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDriver reports whether a driver has been assigned.
func (r *Ride) HasDriver() bool {
	return r.DriverID != ""
}

// IsPaid reports whether the payment gate has been satisfied.
func (r *Ride) IsPaid() bool {
	return r.PaymentStatus == PaymentStatusPaid
}
