package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	const q = `
INSERT INTO events (id, organizer_id, title, description, date, location, image_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := r.pool.Exec(ctx, q,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Date, e.Location, e.ImageURL,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return domain.ErrUnavailable(err)
	}
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const q = `
SELECT id, organizer_id, title, description, date, location, image_url, created_at, updated_at
FROM events
WHERE id = $1
`
	var e domain.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Date, &e.Location, &e.ImageURL,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound("event not found")
		}
		return nil, domain.ErrUnavailable(err)
	}
	return &e, nil
}

// Update never touches id or organizer_id.
func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	const q = `
UPDATE events
SET title = $2, description = $3, date = $4, location = $5, image_url = $6, updated_at = $7
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, q,
		e.ID, e.Title, e.Description, e.Date, e.Location, e.ImageURL, e.UpdatedAt,
	)
	if err != nil {
		return domain.ErrUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("event not found")
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return domain.ErrUnavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("event not found")
	}
	return nil
}

func (r *EventRepo) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	q := `
SELECT id, organizer_id, title, description, date, location, image_url, created_at, updated_at
FROM events
`
	var args []any
	if loc := strings.TrimSpace(f.LocationContains); loc != "" {
		q += `WHERE location ILIKE '%' || $1 || '%'` + "\n"
		args = append(args, loc)
	}
	q += `ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, domain.ErrUnavailable(err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	const q = `
SELECT id, organizer_id, title, description, date, location, image_url, created_at, updated_at
FROM events
WHERE organizer_id = $1
ORDER BY created_at DESC, id ASC
`
	rows, err := r.pool.Query(ctx, q, organizerID)
	if err != nil {
		return nil, domain.ErrUnavailable(err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var out []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(
			&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Date, &e.Location, &e.ImageURL,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, domain.ErrUnavailable(err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrUnavailable(err)
	}
	return out, nil
}
