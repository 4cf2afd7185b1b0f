package postgres

import (
	"context"
	"errors"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `
SELECT id, principal_id, role, created_at
FROM users
WHERE id = $1
`
	var u domain.User
	var role string
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.PrincipalID, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound("user not found")
		}
		return domain.User{}, domain.ErrUnavailable(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *UserRepo) GetByPrincipal(ctx context.Context, principalID string) (domain.User, error) {
	const q = `
SELECT id, principal_id, role, created_at
FROM users
WHERE principal_id = $1
`
	var u domain.User
	var role string
	err := r.pool.QueryRow(ctx, q, principalID).Scan(&u.ID, &u.PrincipalID, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound("user not found")
		}
		return domain.User{}, domain.ErrUnavailable(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// CreateIfAbsent races on the principal_id unique constraint: the
// losing insert is a no-op and the winner's row is read back, so every
// caller sees the same stored user.
func (r *UserRepo) CreateIfAbsent(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
INSERT INTO users (id, principal_id, role, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (principal_id) DO NOTHING
`
	if _, err := r.pool.Exec(ctx, q, u.ID, u.PrincipalID, string(u.Role), u.CreatedAt); err != nil {
		return domain.User{}, domain.ErrUnavailable(err)
	}
	return r.GetByPrincipal(ctx, u.PrincipalID)
}
