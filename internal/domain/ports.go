package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFilter narrows a public listing. Zero value lists everything.
type EventFilter struct {
	// LocationContains matches case-insensitively as a substring.
	LocationContains string
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByPrincipal(ctx context.Context, principalID string) (User, error)

	// CreateIfAbsent inserts u keyed on PrincipalID and returns the
	// stored row. When a concurrent insert won the race, the existing
	// row is returned; exactly one row per principal ever exists.
	CreateIfAbsent(ctx context.Context, u User) (User, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, f EventFilter) ([]*Event, error)
	ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*Event, error)
}

type BookingRepository interface {
	// Insert persists b with a storage-level uniqueness guarantee on
	// (UserID, EventID): of any number of concurrent inserts for the
	// same pair exactly one succeeds, the rest get ErrAlreadyBooked.
	Insert(ctx context.Context, b Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error)
}

// Publisher pushes domain notifications to the broker. Failures are
// best-effort for callers; nothing in the core retries.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
