package postgres

import (
	"context"
	"database/sql"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Create adds a new rider.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO riders (id, name, email, phone, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, nullString(user.Phone), user.CreatedAt)
	return translateError(err)
}

// GetByID retrieves a rider by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, name, email, COALESCE(phone, ''), created_at FROM riders WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.CreatedAt); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}
