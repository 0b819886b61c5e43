package postgres

import (
	"context"
	"database/sql"

	"github.com/atharavsawant52/NeoRide/internal/repository"
)

// Transactor runs repository work inside a database transaction.
type Transactor struct {
	db *sql.DB
}

// NewTransactor creates a new Transactor.
func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

var _ repository.Transactor = (*Transactor)(nil)

// WithinTx begins a transaction, hands tx-scoped repositories to fn and
// commits if fn succeeds.
func (t *Transactor) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = fn(repository.Repositories{
		Rides:         NewRideRepositoryWithTx(tx),
		Drivers:       NewDriverRepositoryWithTx(tx),
		PaymentEvents: NewPaymentEventRepositoryWithTx(tx),
	})
	if err != nil {
		return err
	}

	return tx.Commit()
}
