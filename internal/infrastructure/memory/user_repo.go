package memory

import (
	"context"
	"sync"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
)

type UserRepo struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]domain.User
	byPrincipal map[string]uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:        make(map[uuid.UUID]domain.User),
		byPrincipal: make(map[string]uuid.UUID),
	}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound("user not found")
	}
	return u, nil
}

func (r *UserRepo) GetByPrincipal(ctx context.Context, principalID string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPrincipal[principalID]
	if !ok {
		return domain.User{}, domain.ErrNotFound("user not found")
	}
	return r.byID[id], nil
}

func (r *UserRepo) CreateIfAbsent(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.byPrincipal[u.PrincipalID]; exists {
		return r.byID[id], nil
	}
	r.byID[u.ID] = u
	r.byPrincipal[u.PrincipalID] = u.ID
	return u, nil
}
