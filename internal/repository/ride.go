package repository

import (
	"context"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// StartParams describes the accepted -> ongoing transition.
type StartParams struct {
	RideID    string
	DriverID  string
	StartedAt time.Time
}

// CompleteParams describes the ongoing -> completed transition.
type CompleteParams struct {
	RideID          string
	DriverID        string
	EndedAt         time.Time
	DurationSeconds int64
	DistanceMeters  int64
}

// RideRepository defines the persistence operations for rides.
// Every transition method is a single conditional update: it returns false
// (and no error) when the row exists but its current state does not satisfy
// the guard, and ErrNotFound when the row is missing.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByPaymentOrderID retrieves the ride a provider order was created for.
	GetByPaymentOrderID(ctx context.Context, orderID string) (*domain.Ride, error)

	// ListByRider returns a rider's rides, newest first.
	ListByRider(ctx context.Context, riderID string, limit int) ([]*domain.Ride, error)

	// ListByDriver returns a driver's rides, newest first.
	ListByDriver(ctx context.Context, driverID string, limit int) ([]*domain.Ride, error)

	// AssignDriver sets the driver and moves the ride to accepted only if it is
	// still requested and has no driver.
	AssignDriver(ctx context.Context, rideID, driverID string, at time.Time) (bool, error)

	// Start moves an accepted ride owned by the driver to ongoing.
	Start(ctx context.Context, p StartParams) (bool, error)

	// Complete moves an ongoing, paid ride owned by the driver to completed.
	Complete(ctx context.Context, p CompleteParams) (bool, error)

	// Cancel moves a non-terminal ride to cancelled.
	Cancel(ctx context.Context, rideID, cancelledBy string, at time.Time) (bool, error)

	// SetPaymentOrder records the provider order id if none is set yet.
	SetPaymentOrder(ctx context.Context, rideID, orderID string) (bool, error)

	// MarkPaid flips payment status from pending to paid. It returns false
	// when the ride was already paid.
	MarkPaid(ctx context.Context, rideID string, method domain.PaymentMethod, paymentID string) (bool, error)

	// SetRating stores a rating on a completed, unrated ride.
	SetRating(ctx context.Context, rideID string, rating int) (bool, error)

	// AverageDriverRating returns the mean rating over the driver's rated
	// completed rides and how many rides were counted.
	AverageDriverRating(ctx context.Context, driverID string) (float64, int, error)
}
