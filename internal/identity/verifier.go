package identity

import (
	"errors"
	"time"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is what the identity provider vouches for. Subject is the
// stable principal id. Role is advisory only, the stored role wins.
type TokenClaims struct {
	Subject string
	Role    string
	Exp     time.Time
	Issuer  string
}

type TokenVerifier interface {
	VerifyAccessToken(token string) (TokenClaims, error)
}
