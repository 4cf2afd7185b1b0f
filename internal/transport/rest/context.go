package rest

import (
	"context"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
)

type ctxKeyUserID struct{}
type ctxKeyRole struct{}

type AuthContext struct {
	UserID uuid.UUID
	Role   domain.Role
}

func withAuth(ctx context.Context, a AuthContext) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID{}, a.UserID)
	ctx = context.WithValue(ctx, ctxKeyRole{}, a.Role)
	return ctx
}

func GetAuth(ctx context.Context) (AuthContext, bool) {
	uid, ok := ctx.Value(ctxKeyUserID{}).(uuid.UUID)
	if !ok {
		return AuthContext{}, false
	}
	role, _ := ctx.Value(ctxKeyRole{}).(domain.Role)

	return AuthContext{UserID: uid, Role: role}, true
}

// actorFrom maps the authenticated request context to a policy actor.
func actorFrom(ctx context.Context) (domain.Actor, bool) {
	a, ok := GetAuth(ctx)
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: a.UserID, Role: a.Role}, true
}
