package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

const rideColumns = `id, rider_id, driver_id, pickup, destination, vehicle_class, fare_breakdown, fare_total,
	status, otp, distance_meters, duration_seconds, accepted_at, started_at, ended_at, rating,
	payment_status, payment_method, payment_order_id, payment_id, cancelled_at, cancelled_by,
	created_at, updated_at`

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

var _ repository.RideRepository = (*RideRepository)(nil)

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider_id, pickup, destination, vehicle_class, fare_breakdown, fare_total,
			status, otp, payment_status, payment_method, distance_meters, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12::bigint, 0), $13, $13)
	`

	breakdown, err := json.Marshal(ride.Fare.Breakdown)
	if err != nil {
		return fmt.Errorf("encode fare breakdown: %w", err)
	}

	_, err = r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		ride.Pickup,
		ride.Destination,
		ride.VehicleClass,
		breakdown,
		ride.Fare.Total,
		ride.Status,
		ride.OTP,
		ride.PaymentStatus,
		ride.PaymentMethod,
		ride.DistanceMeters,
		ride.CreatedAt,
	)
	return translateError(err)
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return scanRide(r.q.QueryRowContext(ctx, query, id))
}

// GetByPaymentOrderID retrieves the ride a provider order was created for.
func (r *RideRepository) GetByPaymentOrderID(ctx context.Context, orderID string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE payment_order_id = $1`
	return scanRide(r.q.QueryRowContext(ctx, query, orderID))
}

// ListByRider returns a rider's rides, newest first.
func (r *RideRepository) ListByRider(ctx context.Context, riderID string, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE rider_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, riderID, limit)
}

// ListByDriver returns a driver's rides, newest first.
func (r *RideRepository) ListByDriver(ctx context.Context, driverID string, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, driverID, limit)
}

func (r *RideRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// AssignDriver sets the driver only if the ride is still requested and unassigned.
// This is the single compare-and-set that arbitrates concurrent accepts.
func (r *RideRepository) AssignDriver(ctx context.Context, rideID, driverID string, at time.Time) (bool, error) {
	query := `
		UPDATE rides
		SET driver_id = $2, status = $3, accepted_at = $4, updated_at = $4
		WHERE id = $1 AND status = $5 AND driver_id IS NULL
	`
	return r.conditional(ctx, rideID, query,
		rideID, driverID, domain.RideStatusAccepted, at, domain.RideStatusRequested)
}

// Start moves an accepted ride owned by the driver to ongoing.
func (r *RideRepository) Start(ctx context.Context, p repository.StartParams) (bool, error) {
	query := `
		UPDATE rides
		SET status = $3, started_at = $4, updated_at = $4
		WHERE id = $1 AND driver_id = $2 AND status = $5
	`
	return r.conditional(ctx, p.RideID, query,
		p.RideID, p.DriverID, domain.RideStatusOngoing, p.StartedAt, domain.RideStatusAccepted)
}

// Complete moves an ongoing, paid ride owned by the driver to completed.
func (r *RideRepository) Complete(ctx context.Context, p repository.CompleteParams) (bool, error) {
	query := `
		UPDATE rides
		SET status = $3, ended_at = $4, duration_seconds = $5, distance_meters = COALESCE($6, distance_meters), updated_at = $4
		WHERE id = $1 AND driver_id = $2 AND status = $7 AND payment_status = $8
	`
	var distance sql.NullInt64
	if p.DistanceMeters > 0 {
		distance = sql.NullInt64{Int64: p.DistanceMeters, Valid: true}
	}
	return r.conditional(ctx, p.RideID, query,
		p.RideID, p.DriverID, domain.RideStatusCompleted, p.EndedAt, p.DurationSeconds, distance,
		domain.RideStatusOngoing, domain.PaymentStatusPaid)
}

// Cancel moves a non-terminal ride to cancelled.
func (r *RideRepository) Cancel(ctx context.Context, rideID, cancelledBy string, at time.Time) (bool, error) {
	query := `
		UPDATE rides
		SET status = $2, cancelled_at = $3, cancelled_by = $4, updated_at = $3
		WHERE id = $1 AND status NOT IN ($5, $6)
	`
	return r.conditional(ctx, rideID, query,
		rideID, domain.RideStatusCancelled, at, cancelledBy, domain.RideStatusCompleted, domain.RideStatusCancelled)
}

// SetPaymentOrder records the provider order id if none is set yet.
func (r *RideRepository) SetPaymentOrder(ctx context.Context, rideID, orderID string) (bool, error) {
	query := `
		UPDATE rides
		SET payment_order_id = $2, payment_method = $3, updated_at = NOW()
		WHERE id = $1 AND payment_order_id IS NULL
	`
	return r.conditional(ctx, rideID, query, rideID, orderID, domain.PaymentMethodOnline)
}

// MarkPaid flips payment status from pending to paid.
func (r *RideRepository) MarkPaid(ctx context.Context, rideID string, method domain.PaymentMethod, paymentID string) (bool, error) {
	query := `
		UPDATE rides
		SET payment_status = $2, payment_method = $3, payment_id = $4, updated_at = NOW()
		WHERE id = $1 AND payment_status = $5
	`
	return r.conditional(ctx, rideID, query,
		rideID, domain.PaymentStatusPaid, method, nullString(paymentID), domain.PaymentStatusPending)
}

// SetRating stores a rating on a completed, unrated ride.
func (r *RideRepository) SetRating(ctx context.Context, rideID string, rating int) (bool, error) {
	query := `
		UPDATE rides
		SET rating = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND rating IS NULL
	`
	return r.conditional(ctx, rideID, query, rideID, rating, domain.RideStatusCompleted)
}

// AverageDriverRating returns the mean over the driver's rated completed rides.
func (r *RideRepository) AverageDriverRating(ctx context.Context, driverID string) (float64, int, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(rating)
		FROM rides
		WHERE driver_id = $1 AND status = $2 AND rating IS NOT NULL
	`
	var avg float64
	var count int
	if err := r.q.QueryRowContext(ctx, query, driverID, domain.RideStatusCompleted).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

// conditional runs a guarded update. A miss is disambiguated into
// "row does not exist" (ErrNotFound) and "guard not satisfied" (false).
func (r *RideRepository) conditional(ctx context.Context, rideID, query string, args ...any) (bool, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, translateError(err)
	}

	ok, err := affectedOne(result)
	if err != nil || ok {
		return ok, err
	}

	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM rides WHERE id = $1)`, rideID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var (
		driverID       sql.NullString
		breakdown      []byte
		distance       sql.NullInt64
		duration       sql.NullInt64
		acceptedAt     sql.NullTime
		startedAt      sql.NullTime
		endedAt        sql.NullTime
		rating         sql.NullInt64
		paymentOrderID sql.NullString
		paymentID      sql.NullString
		cancelledAt    sql.NullTime
		cancelledBy    sql.NullString
	)

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&driverID,
		&ride.Pickup,
		&ride.Destination,
		&ride.VehicleClass,
		&breakdown,
		&ride.Fare.Total,
		&ride.Status,
		&ride.OTP,
		&distance,
		&duration,
		&acceptedAt,
		&startedAt,
		&endedAt,
		&rating,
		&ride.PaymentStatus,
		&ride.PaymentMethod,
		&paymentOrderID,
		&paymentID,
		&cancelledAt,
		&cancelledBy,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &ride.Fare.Breakdown); err != nil {
			return nil, fmt.Errorf("decode fare breakdown: %w", err)
		}
	}

	ride.DriverID = driverID.String
	ride.DistanceMeters = distance.Int64
	ride.DurationSeconds = duration.Int64
	ride.AcceptedAt = acceptedAt.Time
	ride.StartedAt = startedAt.Time
	ride.EndedAt = endedAt.Time
	ride.Rating = int(rating.Int64)
	ride.PaymentOrderID = paymentOrderID.String
	ride.PaymentID = paymentID.String
	ride.CancelledAt = cancelledAt.Time
	ride.CancelledBy = cancelledBy.String

	return &ride, nil
}
