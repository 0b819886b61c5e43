package repository

import (
	"context"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// UserRepository defines the persistence operations for riders.
type UserRepository interface {
	// Create persists a new rider.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a rider by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
