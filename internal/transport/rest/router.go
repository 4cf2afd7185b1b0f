package rest

import (
	"net/http"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/identity"
	"github.com/baechuer/cityevents/services/booking-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

type RouterDeps struct {
	Handler  *Handler
	Resolver *identity.Resolver

	// Cache backs the shared rate limiter; when nil an in-process
	// limiter is used instead.
	Cache     domain.Cache
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Handler == nil {
		panic("rest.NewRouter: nil handler")
	}
	if d.Resolver == nil {
		panic("rest.NewRouter: nil resolver")
	}

	r := chi.NewRouter()

	// Request ID + structured access log
	r.Use(RequestID)
	r.Use(HTTPLogger)

	// Panic recovery
	r.Use(middleware.Recoverer)

	// Cross-cutting
	if d.RLEnabled {
		if d.Cache != nil {
			r.Use(RateLimitMiddleware(d.Cache, d.RLLimit, d.RLWindow))
		} else {
			r.Use(httprate.LimitByIP(d.RLLimit, d.RLWindow))
		}
	}
	r.Use(SecurityHeaders)

	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// public catalog reads
		r.Get("/events", d.Handler.ListEvents)
		r.Get("/events/{eventID}", d.Handler.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(d.Resolver))

			// catalog writes
			r.Post("/events", d.Handler.CreateEvent)
			r.Patch("/events/{eventID}", d.Handler.UpdateEvent)
			r.Delete("/events/{eventID}", d.Handler.DeleteEvent)
			r.Put("/events/{eventID}/image", d.Handler.UploadEventImage)
			r.Get("/organizer/events", d.Handler.OwnEvents)

			// bookings
			r.Post("/bookings", d.Handler.CreateBooking)
			r.Get("/me/bookings", d.Handler.MyBookings)
			r.Delete("/bookings/{bookingID}", d.Handler.CancelBooking)
		})
	})

	return r
}
