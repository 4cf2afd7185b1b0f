package postgres

import (
	"context"
	"errors"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type BookingRepo struct {
	pool *pgxpool.Pool
}

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{pool: pool}
}

// Insert relies on the bookings_user_event_unique constraint: under any
// interleaving of concurrent inserts for the same (user_id, event_id)
// pair, Postgres lets exactly one through and rejects the rest with a
// unique violation, which we surface as AlreadyBooked.
func (r *BookingRepo) Insert(ctx context.Context, b domain.Booking) error {
	const q = `
INSERT INTO bookings (id, user_id, event_id, created_at)
VALUES ($1, $2, $3, $4)
`
	_, err := r.pool.Exec(ctx, q, b.ID, b.UserID, b.EventID, b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyBooked()
		}
		return domain.ErrUnavailable(err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `
SELECT id, user_id, event_id, created_at
FROM bookings
WHERE id = $1
`
	var b domain.Booking
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.UserID, &b.EventID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound("booking not found")
		}
		return domain.Booking{}, domain.ErrUnavailable(err)
	}
	return b, nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const q = `
SELECT id, user_id, event_id, created_at
FROM bookings
WHERE user_id = $1
ORDER BY created_at DESC, id ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, domain.ErrUnavailable(err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.CreatedAt); err != nil {
			return nil, domain.ErrUnavailable(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrUnavailable(err)
	}
	return out, nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return domain.ErrUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("booking not found")
	}
	return nil
}
