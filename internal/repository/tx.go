package repository

import "context"

// Repositories groups the repositories that take part in one transaction.
type Repositories struct {
	Rides         RideRepository
	Drivers       DriverRepository
	PaymentEvents PaymentEventRepository
}

// Transactor runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
