package rest

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/identity"
)

// AuthMiddleware resolves the Bearer token to a stored user and puts
// the resulting identity on the request context. Resolution may create
// the user on first sight, so this middleware needs the resolver, not
// just the verifier.
func AuthMiddleware(resolver *identity.Resolver) func(next http.Handler) http.Handler {
	if resolver == nil {
		panic("AuthMiddleware: nil resolver")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "missing bearer token", nil)
				return
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "missing bearer token", nil)
				return
			}

			u, err := resolver.Resolve(r.Context(), parts[1])
			if err != nil {
				handleErr(w, r, err)
				return
			}

			ctx := withAuth(r.Context(), AuthContext{
				UserID: u.ID,
				Role:   u.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware is a per-IP fixed window limiter backed by the
// shared cache. It fails open when the cache is unreachable.
func RateLimitMiddleware(cache domain.Cache, limit int, window time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, _ := cache.AllowRequest(r.Context(), ip, limit, window)
			if !allowed {
				fail(w, r, http.StatusTooManyRequests, "rate.limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keeps it simple: RemoteAddr host part. Trusting
// X-Forwarded-For blindly is a spoofing risk, so we don't.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

		next.ServeHTTP(w, r)
	})
}
