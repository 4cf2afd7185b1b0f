package service

import (
	"context"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/metrics"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// BookingService owns booking creation and query. The at-most-one
// booking per (user, event) invariant is enforced by the repository's
// atomic insert, never by an in-process lock: requests may be served by
// independent processes.
type BookingService struct {
	bookings domain.BookingRepository
	events   domain.EventRepository
	pub      domain.Publisher
	clock    Clock
}

func NewBookingService(bookings domain.BookingRepository, events domain.EventRepository, pub domain.Publisher, clock Clock) *BookingService {
	return &BookingService{bookings: bookings, events: events, pub: pub, clock: clock}
}

func (s *BookingService) CreateBooking(ctx context.Context, actor domain.Actor, eventID uuid.UUID) (domain.Booking, error) {
	if err := domain.Authorize(actor, domain.ActionCreateBooking, domain.Resource{}); err != nil {
		return domain.Booking{}, err
	}

	// the event must exist at booking time; a later delete leaves the
	// booking orphaned, which reads tolerate
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return domain.Booking{}, err
	}

	b := domain.Booking{
		ID:        uuid.New(),
		UserID:    actor.ID,
		EventID:   eventID,
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := s.bookings.Insert(ctx, b); err != nil {
		if domain.IsCode(err, domain.CodeAlreadyBooked) {
			metrics.BookingsConflict.Inc()
		}
		return domain.Booking{}, err
	}

	metrics.BookingsCreated.Inc()
	if s.pub != nil {
		if err := s.pub.Publish(ctx, "booking.created", map[string]any{
			"booking_id": b.ID,
			"event_id":   b.EventID,
			"user_id":    b.UserID,
		}); err != nil {
			zlog.Warn().Err(err).Msg("publish booking.created failed")
		}
	}
	return b, nil
}

// ListBookings returns the actor's own bookings joined with their
// events. A booking whose event has been deleted is omitted from the
// result rather than failing the call.
func (s *BookingService) ListBookings(ctx context.Context, actor domain.Actor) ([]domain.BookedEvent, error) {
	if err := domain.Authorize(actor, domain.ActionListOwnBookings, domain.Resource{}); err != nil {
		return nil, err
	}

	items, err := s.bookings.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.BookedEvent, 0, len(items))
	for _, b := range items {
		e, err := s.events.GetByID(ctx, b.EventID)
		if err != nil {
			if domain.IsCode(err, domain.CodeNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, domain.BookedEvent{Booking: b, Event: e})
	}
	return out, nil
}

// CancelBooking removes the booking, freeing the (user, event) pair for
// a future CreateBooking.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) error {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := domain.Authorize(actor, domain.ActionCancelBooking, domain.Resource{Booking: &b}); err != nil {
		return err
	}
	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		return err
	}

	metrics.BookingsCanceled.Inc()
	if s.pub != nil {
		if err := s.pub.Publish(ctx, "booking.canceled", map[string]any{
			"booking_id": b.ID,
			"event_id":   b.EventID,
			"user_id":    b.UserID,
		}); err != nil {
			zlog.Warn().Err(err).Msg("publish booking.canceled failed")
		}
	}
	return nil
}
