package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
)

type EventRepo struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]domain.Event
}

func NewEventRepo() *EventRepo {
	return &EventRepo{byID: make(map[uuid.UUID]domain.Event)}
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[e.ID] = *e
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	out := e
	return &out, nil
}

func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID]; !ok {
		return domain.ErrNotFound("event not found")
	}
	r.byID[e.ID] = *e
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound("event not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *EventRepo) List(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	needle := strings.ToLower(strings.TrimSpace(f.LocationContains))

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Event, 0, len(r.byID))
	for _, e := range r.byID {
		if needle != "" && !strings.Contains(strings.ToLower(e.Location), needle) {
			continue
		}
		c := e
		out = append(out, &c)
	}
	sortEvents(out, false)
	return out, nil
}

func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Event
	for _, e := range r.byID {
		if e.OrganizerID != organizerID {
			continue
		}
		c := e
		out = append(out, &c)
	}
	sortEvents(out, true)
	return out, nil
}

// sortEvents keeps listings deterministic: created_at then id, newest
// first for the organizer view.
func sortEvents(items []*domain.Event, newestFirst bool) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
