package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

type failingEventRepo struct{}

func (failingEventRepo) Create(context.Context, *domain.Event) error {
	return domain.ErrUnavailable(errDown)
}

func (failingEventRepo) GetByID(context.Context, uuid.UUID) (*domain.Event, error) {
	return nil, domain.ErrUnavailable(errDown)
}

func (failingEventRepo) Update(context.Context, *domain.Event) error {
	return domain.ErrUnavailable(errDown)
}

func (failingEventRepo) Delete(context.Context, uuid.UUID) error {
	return domain.ErrUnavailable(errDown)
}

func (failingEventRepo) List(context.Context, domain.EventFilter) ([]*domain.Event, error) {
	return nil, domain.ErrUnavailable(errDown)
}

func (failingEventRepo) ListByOrganizer(context.Context, uuid.UUID) ([]*domain.Event, error) {
	return nil, domain.ErrUnavailable(errDown)
}

type failingBookingRepo struct{}

func (failingBookingRepo) Insert(context.Context, domain.Booking) error {
	return domain.ErrUnavailable(errDown)
}

func (failingBookingRepo) GetByID(context.Context, uuid.UUID) (domain.Booking, error) {
	return domain.Booking{}, domain.ErrUnavailable(errDown)
}

func (failingBookingRepo) ListByUser(context.Context, uuid.UUID) ([]domain.Booking, error) {
	return nil, domain.ErrUnavailable(errDown)
}

func (failingBookingRepo) Delete(context.Context, uuid.UUID) error {
	return domain.ErrUnavailable(errDown)
}

// Storage outages surface as Unavailable with the cause kept on the
// wrapped error, never swallowed and never turned into not-found.
func TestStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	attendee := domain.Actor{ID: uuid.New(), Role: domain.RoleAttendee}
	organizer := domain.Actor{ID: uuid.New(), Role: domain.RoleOrganizer}

	t.Run("catalog reads", func(t *testing.T) {
		catalog := service.NewCatalogService(failingEventRepo{}, nil, nil, clock, 0, 0)

		_, err := catalog.ListEvents(ctx, domain.EventFilter{})
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable), "got %v", err)

		_, err = catalog.GetEvent(ctx, uuid.New())
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
		assert.ErrorIs(t, err, errDown)
	})

	t.Run("catalog writes", func(t *testing.T) {
		catalog := service.NewCatalogService(failingEventRepo{}, nil, nil, clock, 0, 0)

		_, err := catalog.CreateEvent(ctx, organizer, service.CreateEventCmd{
			Title:       "Meetup",
			Description: "Talks.",
			Date:        "2025-07-01",
			Location:    "Berlin",
		})
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
	})

	t.Run("booking insert", func(t *testing.T) {
		f := newFixture(t)
		e := f.createEvent(t, "Meetup", "Berlin")
		svc := service.NewBookingService(failingBookingRepo{}, f.events, nil, clock)

		_, err := svc.CreateBooking(ctx, attendee, e.ID)
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
	})

	t.Run("booking event lookup", func(t *testing.T) {
		svc := service.NewBookingService(failingBookingRepo{}, failingEventRepo{}, nil, clock)

		_, err := svc.CreateBooking(ctx, attendee, uuid.New())
		require.True(t, domain.IsCode(err, domain.CodeUnavailable))

		// a failing join must not read as "no bookings"
		_, err = svc.ListBookings(ctx, attendee)
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
	})
}
