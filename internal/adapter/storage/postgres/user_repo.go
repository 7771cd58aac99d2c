package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetByID fetches a user profile by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, display_name, wallet_balance, last_updated
		FROM users WHERE id = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.WalletBalance, &u.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrUserMissing
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// UpdateEmail sets the user's email address.
func (r *UserRepo) UpdateEmail(ctx context.Context, id, email string) error {
	query := `UPDATE users SET email = $1, last_updated = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, email, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update user email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrUserMissing
	}
	return nil
}
