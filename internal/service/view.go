package service

import (
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/redis"
)

// RideView is the wire shape of a ride, shared by HTTP responses and realtime events.
type RideView struct {
	ID              string                        `json:"id"`
	RiderID         string                        `json:"rider_id"`
	DriverID        string                        `json:"driver_id,omitempty"`
	Pickup          string                        `json:"pickup"`
	Destination     string                        `json:"destination"`
	VehicleClass    domain.VehicleClass           `json:"vehicle_class"`
	Fare            int64                         `json:"fare"`
	FareBreakdown   map[domain.VehicleClass]int64 `json:"fare_breakdown,omitempty"`
	Status          domain.RideStatus             `json:"status"`
	OTP             string                        `json:"otp,omitempty"`
	DistanceMeters  int64                         `json:"distance_meters,omitempty"`
	DurationSeconds int64                         `json:"duration_seconds,omitempty"`
	Rating          int                           `json:"rating,omitempty"`
	PaymentStatus   domain.PaymentStatus          `json:"payment_status"`
	PaymentMethod   domain.PaymentMethod          `json:"payment_method"`
	PaymentOrderID  string                        `json:"payment_order_id,omitempty"`
	PaymentEvents   []PaymentEventView            `json:"payment_events,omitempty"`
	AcceptedAt      *time.Time                    `json:"accepted_at,omitempty"`
	StartedAt       *time.Time                    `json:"started_at,omitempty"`
	EndedAt         *time.Time                    `json:"ended_at,omitempty"`
	CancelledAt     *time.Time                    `json:"cancelled_at,omitempty"`
	CancelledBy     string                        `json:"cancelled_by,omitempty"`
	CreatedAt       time.Time                     `json:"created_at"`
	Driver          *DriverView                   `json:"driver,omitempty"`
}

// PaymentEventView is one audit log entry.
type PaymentEventView struct {
	Type      domain.PaymentEventType `json:"type"`
	Method    domain.PaymentMethod    `json:"method,omitempty"`
	PaymentID string                  `json:"payment_id,omitempty"`
	Amount    int64                   `json:"amount,omitempty"`
	Actor     string                  `json:"actor"`
	At        time.Time               `json:"at"`
}

// DriverView is what a rider sees about the driver on confirmation.
type DriverView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone,omitempty"`
	VehicleClass string  `json:"vehicle_class"`
	Plate        string  `json:"plate"`
	Color        string  `json:"color"`
	VehicleName  string  `json:"vehicle_name,omitempty"`
	Capacity     int     `json:"capacity"`
	Rating       float64 `json:"rating,omitempty"`
}

// ReceiptView is the wire shape of a receipt.
type ReceiptView struct {
	RideID          string               `json:"ride_id"`
	RiderID         string               `json:"rider_id"`
	DriverID        string               `json:"driver_id"`
	Pickup          string               `json:"pickup"`
	Destination     string               `json:"destination"`
	VehicleClass    domain.VehicleClass  `json:"vehicle_class"`
	Fare            int64                `json:"fare"`
	Currency        string               `json:"currency"`
	DistanceMeters  int64                `json:"distance_meters"`
	DurationSeconds int64                `json:"duration_seconds"`
	PaymentMethod   domain.PaymentMethod `json:"payment_method"`
	PaymentStatus   domain.PaymentStatus `json:"payment_status"`
	StartedAt       time.Time            `json:"started_at"`
	EndedAt         time.Time            `json:"ended_at"`
}

// NewRideView renders a ride. The OTP is only copied when includeOTP is set,
// which callers do for the ride's own rider.
func NewRideView(ride *domain.Ride, includeOTP bool) RideView {
	v := RideView{
		ID:              ride.ID,
		RiderID:         ride.RiderID,
		DriverID:        ride.DriverID,
		Pickup:          ride.Pickup,
		Destination:     ride.Destination,
		VehicleClass:    ride.VehicleClass,
		Fare:            ride.Fare.Total,
		FareBreakdown:   ride.Fare.Breakdown,
		Status:          ride.Status,
		DistanceMeters:  ride.DistanceMeters,
		DurationSeconds: ride.DurationSeconds,
		Rating:          ride.Rating,
		PaymentStatus:   ride.PaymentStatus,
		PaymentMethod:   ride.PaymentMethod,
		PaymentOrderID:  ride.PaymentOrderID,
		AcceptedAt:      timePtr(ride.AcceptedAt),
		StartedAt:       timePtr(ride.StartedAt),
		EndedAt:         timePtr(ride.EndedAt),
		CancelledAt:     timePtr(ride.CancelledAt),
		CancelledBy:     ride.CancelledBy,
		CreatedAt:       ride.CreatedAt,
	}
	if includeOTP {
		v.OTP = ride.OTP
	}
	for _, e := range ride.PaymentEvents {
		v.PaymentEvents = append(v.PaymentEvents, NewPaymentEventView(e))
	}
	return v
}

// NewPaymentEventView renders one audit log entry.
func NewPaymentEventView(e domain.PaymentEvent) PaymentEventView {
	return PaymentEventView{
		Type:      e.Type,
		Method:    e.Method,
		PaymentID: e.PaymentID,
		Amount:    e.Amount,
		Actor:     e.Actor,
		At:        e.At,
	}
}

// NewReceiptView renders a receipt.
func NewReceiptView(r *domain.Receipt) ReceiptView {
	return ReceiptView{
		RideID:          r.RideID,
		RiderID:         r.RiderID,
		DriverID:        r.DriverID,
		Pickup:          r.Pickup,
		Destination:     r.Destination,
		VehicleClass:    r.VehicleClass,
		Fare:            r.Fare,
		Currency:        r.Currency,
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		PaymentMethod:   r.PaymentMethod,
		PaymentStatus:   r.PaymentStatus,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
	}
}

func newDriverView(p *redis.CachedDriver) *DriverView {
	if p == nil {
		return nil
	}
	return &DriverView{
		ID:           p.ID,
		Name:         p.Name,
		Phone:        p.Phone,
		VehicleClass: p.VehicleClass,
		Plate:        p.Plate,
		Color:        p.Color,
		VehicleName:  p.VehicleName,
		Capacity:     p.Capacity,
		Rating:       p.Rating,
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
