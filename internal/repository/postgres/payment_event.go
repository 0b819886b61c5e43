package postgres

import (
	"context"
	"database/sql"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

// PaymentEventRepository is a PostgreSQL implementation of repository.PaymentEventRepository.
type PaymentEventRepository struct {
	q Querier
}

// NewPaymentEventRepository creates a new PostgreSQL payment event repository.
func NewPaymentEventRepository(db *sql.DB) *PaymentEventRepository {
	return &PaymentEventRepository{q: db}
}

// NewPaymentEventRepositoryWithTx creates a payment event repository using a transaction.
func NewPaymentEventRepositoryWithTx(tx *sql.Tx) *PaymentEventRepository {
	return &PaymentEventRepository{q: tx}
}

var _ repository.PaymentEventRepository = (*PaymentEventRepository)(nil)

// Append adds an event to the audit log.
func (r *PaymentEventRepository) Append(ctx context.Context, event *domain.PaymentEvent) error {
	query := `
		INSERT INTO payment_events (ride_id, type, method, payment_id, amount, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var method sql.NullString
	if event.Method != "" {
		method = sql.NullString{String: string(event.Method), Valid: true}
	}

	err := r.q.QueryRowContext(ctx, query,
		event.RideID,
		event.Type,
		method,
		nullString(event.PaymentID),
		event.Amount,
		event.Actor,
		event.At,
	).Scan(&event.ID)
	return translateError(err)
}

// ListByRide returns a ride's events in insertion order.
func (r *PaymentEventRepository) ListByRide(ctx context.Context, rideID string) ([]domain.PaymentEvent, error) {
	query := `
		SELECT id, ride_id, type, COALESCE(method, ''), COALESCE(payment_id, ''), amount, actor, created_at
		FROM payment_events WHERE ride_id = $1 ORDER BY id
	`

	rows, err := r.q.QueryContext(ctx, query, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.PaymentEvent
	for rows.Next() {
		var e domain.PaymentEvent
		if err := rows.Scan(&e.ID, &e.RideID, &e.Type, &e.Method, &e.PaymentID, &e.Amount, &e.Actor, &e.At); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
