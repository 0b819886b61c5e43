package postgres

import (
	"context"
	"database/sql"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

const driverColumns = `id, name, email, COALESCE(phone, ''), status, vehicle_class, vehicle_plate, vehicle_color,
	COALESCE(vehicle_name, ''), vehicle_capacity, earnings, rides_count, hours_worked, rating, created_at`

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

var _ repository.DriverRepository = (*DriverRepository)(nil)

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, email, phone, status, vehicle_class, vehicle_plate, vehicle_color,
			vehicle_name, vehicle_capacity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Email,
		nullString(driver.Phone),
		driver.Status,
		driver.Vehicle.Class,
		driver.Vehicle.Plate,
		driver.Vehicle.Color,
		nullString(driver.Vehicle.Name),
		driver.Vehicle.Capacity,
		driver.CreatedAt,
	)
	return translateError(err)
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return scanDriver(r.q.QueryRowContext(ctx, query, id))
}

// UpdateStatus updates the status of a driver.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	query := `UPDATE drivers SET status = $1 WHERE id = $2`
	return r.exec(ctx, query, status, id)
}

// IncrementStats adds a completed ride to the driver's counters.
func (r *DriverRepository) IncrementStats(ctx context.Context, id string, earnings int64, hours float64) error {
	query := `
		UPDATE drivers
		SET earnings = earnings + $1, rides_count = rides_count + 1, hours_worked = hours_worked + $2
		WHERE id = $3
	`
	return r.exec(ctx, query, earnings, hours, id)
}

// LockForUpdate takes a row lock on the driver. Outside a transaction the
// lock is released immediately.
func (r *DriverRepository) LockForUpdate(ctx context.Context, id string) error {
	var locked string
	err := r.q.QueryRowContext(ctx, `SELECT id FROM drivers WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return translateError(err)
}

// SetRating overwrites the driver's aggregate rating.
func (r *DriverRepository) SetRating(ctx context.Context, id string, rating float64) error {
	query := `UPDATE drivers SET rating = $1 WHERE id = $2`
	return r.exec(ctx, query, rating, id)
}

func (r *DriverRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	ok, err := affectedOne(result)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var rating sql.NullFloat64

	err := row.Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.Phone,
		&driver.Status,
		&driver.Vehicle.Class,
		&driver.Vehicle.Plate,
		&driver.Vehicle.Color,
		&driver.Vehicle.Name,
		&driver.Vehicle.Capacity,
		&driver.Stats.Earnings,
		&driver.Stats.RidesCount,
		&driver.Stats.HoursWorked,
		&rating,
		&driver.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}

	if rating.Valid {
		v := rating.Float64
		driver.Stats.Rating = &v
	}
	return &driver, nil
}
