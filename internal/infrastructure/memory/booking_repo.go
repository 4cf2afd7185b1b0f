package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
)

type pairKey struct {
	userID  uuid.UUID
	eventID uuid.UUID
}

type BookingRepo struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]domain.Booking
	byPair map[pairKey]uuid.UUID
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{
		byID:   make(map[uuid.UUID]domain.Booking),
		byPair: make(map[pairKey]uuid.UUID),
	}
}

// Insert is the serialized compare-and-insert: the pair check and the
// write happen under one lock, so concurrent inserts for the same
// (user, event) see exactly one winner.
func (r *BookingRepo) Insert(ctx context.Context, b domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{userID: b.UserID, eventID: b.EventID}
	if _, exists := r.byPair[key]; exists {
		return domain.ErrAlreadyBooked()
	}
	r.byID[b.ID] = b
	r.byPair[key] = b.ID
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound("booking not found")
	}
	return b, nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Booking
	for _, b := range r.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound("booking not found")
	}
	delete(r.byID, id)
	delete(r.byPair, pairKey{userID: b.UserID, eventID: b.EventID})
	return nil
}
