package repository

import (
	"context"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// PaymentEventRepository is the append-only payment audit log.
// There is intentionally no update or delete operation.
type PaymentEventRepository interface {
	// Append adds an event and fills in its ID.
	Append(ctx context.Context, event *domain.PaymentEvent) error

	// ListByRide returns a ride's events in insertion order.
	ListByRide(ctx context.Context, rideID string) ([]domain.PaymentEvent, error)
}
