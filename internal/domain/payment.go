package domain

import "time"

// PaymentStatus represents the payment state of a ride.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethod represents how a ride is settled.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
)

// PaymentEventType classifies an entry of the payment audit log.
type PaymentEventType string

const (
	PaymentEventMade             PaymentEventType = "payment_made"
	PaymentEventVerified         PaymentEventType = "payment_verified"
	PaymentEventWebhook          PaymentEventType = "payment_webhook"
	PaymentEventCashAcknowledged PaymentEventType = "cash_acknowledged"
	PaymentEventRideCompleted    PaymentEventType = "ride_completed"
)

// PaymentEvent is one append-only entry of a ride's payment audit trail.
type PaymentEvent struct {
	ID        int64
	RideID    string
	Type      PaymentEventType
	Method    PaymentMethod
	PaymentID string
	Amount    int64
	Actor     string
	At        time.Time
}

// PaymentIntent is a provider order created for an online payment.
type PaymentIntent struct {
	IntentID string
	RideID   string
	Amount   int64
	Currency string
}

// Receipt summarizes a completed ride.
type Receipt struct {
	RideID          string
	RiderID         string
	DriverID        string
	Pickup          string
	Destination     string
	VehicleClass    VehicleClass
	Fare            int64
	Currency        string
	DistanceMeters  int64
	DurationSeconds int64
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	StartedAt       time.Time
	EndedAt         time.Time
}
