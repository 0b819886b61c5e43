package repository

import (
	"context"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// UpdateStatus updates the status of a driver.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// IncrementStats adds a completed ride to the driver's counters.
	IncrementStats(ctx context.Context, id string, earnings int64, hours float64) error

	// LockForUpdate holds the driver row until the surrounding transaction ends.
	LockForUpdate(ctx context.Context, id string) error

	// SetRating overwrites the driver's aggregate rating.
	SetRating(ctx context.Context, id string, rating float64) error
}
