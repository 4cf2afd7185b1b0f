package identity

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/google/uuid"
)

type Clock interface{ Now() time.Time }

// Resolver maps an opaque authenticated token to a durable User. The
// first resolution for a principal creates the User record with role
// attendee; after that the stored role is authoritative regardless of
// what later tokens claim.
type Resolver struct {
	verifier       TokenVerifier
	users          domain.UserRepository
	clock          Clock
	expectedIssuer string
}

func NewResolver(verifier TokenVerifier, users domain.UserRepository, clock Clock, expectedIssuer string) *Resolver {
	return &Resolver{
		verifier:       verifier,
		users:          users,
		clock:          clock,
		expectedIssuer: expectedIssuer,
	}
}

func (r *Resolver) Resolve(ctx context.Context, rawToken string) (domain.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.User{}, domain.ErrUnauthenticated("no token provided")
	}

	claims, err := r.verifier.VerifyAccessToken(rawToken)
	if err != nil {
		return domain.User{}, domain.ErrUnauthenticated("invalid token")
	}
	if r.expectedIssuer != "" && claims.Issuer != r.expectedIssuer {
		return domain.User{}, domain.ErrUnauthenticated("invalid token")
	}

	principalID := strings.TrimSpace(claims.Subject)
	if principalID == "" {
		return domain.User{}, domain.ErrUnauthenticated("invalid token")
	}

	u, err := r.users.GetByPrincipal(ctx, principalID)
	if err == nil {
		return u, nil
	}
	if !domain.IsCode(err, domain.CodeNotFound) {
		return domain.User{}, err
	}

	// First-seen principal: create with the default role. CreateIfAbsent
	// is keyed on the principal id, so concurrent first resolutions all
	// converge on the same stored row.
	return r.users.CreateIfAbsent(ctx, domain.User{
		ID:          uuid.New(),
		PrincipalID: principalID,
		Role:        domain.RoleAttendee,
		CreatedAt:   r.clock.Now().UTC(),
	})
}

// Provision creates a user with an explicit role before their first
// sign-in (organizer onboarding). It never changes an existing user's
// role: if the principal already exists the stored row is returned
// unchanged.
func (r *Resolver) Provision(ctx context.Context, principalID string, role domain.Role) (domain.User, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return domain.User{}, domain.ErrValidationMeta("invalid field", map[string]string{"principal_id": "required"})
	}
	if !domain.IsValidRole(string(role)) {
		return domain.User{}, domain.ErrValidationMeta("invalid field", map[string]string{"role": "must be attendee or organizer"})
	}
	return r.users.CreateIfAbsent(ctx, domain.User{
		ID:          uuid.New(),
		PrincipalID: principalID,
		Role:        role,
		CreatedAt:   r.clock.Now().UTC(),
	})
}
