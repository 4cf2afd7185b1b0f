package service_test

import (
	"context"
	"testing"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer creates", func(t *testing.T) {
		f := newFixture(t)
		e, err := f.catalog.CreateEvent(ctx, f.organizer, service.CreateEventCmd{
			Title:       "Meetup",
			Description: "Talks.",
			Date:        "2025-07-01",
			Location:    "Berlin",
		})
		require.NoError(t, err)
		assert.Equal(t, f.organizer.ID, e.OrganizerID)

		got, err := f.catalog.GetEvent(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meetup", got.Title)
	})

	t.Run("attendee denied", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.catalog.CreateEvent(ctx, f.attendee, service.CreateEventCmd{
			Title:       "Meetup",
			Description: "Talks.",
			Date:        "2025-07-01",
			Location:    "Berlin",
		})
		assert.True(t, domain.IsCode(err, domain.CodeForbidden))
	})

	t.Run("validation failure reaches the caller", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.catalog.CreateEvent(ctx, f.organizer, service.CreateEventCmd{
			Title:       "Meetup",
			Description: "Talks.",
			Date:        "July 1st",
			Location:    "Berlin",
		})
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
	})
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("owner patches fields", func(t *testing.T) {
		f := newFixture(t)
		e := f.createEvent(t, "Meetup", "Berlin")

		loc := "Hamburg"
		updated, err := f.catalog.UpdateEvent(ctx, f.organizer, e.ID, service.UpdateEventCmd{Location: &loc})
		require.NoError(t, err)
		assert.Equal(t, "Hamburg", updated.Location)
		assert.Equal(t, "Meetup", updated.Title)
	})

	t.Run("non-owner organizer denied", func(t *testing.T) {
		f := newFixture(t)
		e := f.createEvent(t, "Meetup", "Berlin")
		other := domain.Actor{ID: uuid.New(), Role: domain.RoleOrganizer}

		title := "Hijacked"
		_, err := f.catalog.UpdateEvent(ctx, other, e.ID, service.UpdateEventCmd{Title: &title})
		assert.True(t, domain.IsCode(err, domain.CodeForbidden))
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newFixture(t)
		title := "Renamed"
		_, err := f.catalog.UpdateEvent(ctx, f.organizer, uuid.New(), service.UpdateEventCmd{Title: &title})
		assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		f := newFixture(t)
		e := f.createEvent(t, "Meetup", "Berlin")

		require.NoError(t, f.catalog.DeleteEvent(ctx, f.organizer, e.ID))
		_, err := f.catalog.GetEvent(ctx, e.ID)
		assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	})

	t.Run("attendee denied", func(t *testing.T) {
		f := newFixture(t)
		e := f.createEvent(t, "Meetup", "Berlin")

		err := f.catalog.DeleteEvent(ctx, f.attendee, e.ID)
		assert.True(t, domain.IsCode(err, domain.CodeForbidden))
	})
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("no filter returns all, oldest first", func(t *testing.T) {
		f := newFixture(t)
		first := f.createEvent(t, "First", "Berlin")
		second := f.createEvent(t, "Second", "Hamburg")

		items, err := f.catalog.ListEvents(ctx, domain.EventFilter{})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, first.ID, items[0].ID)
		assert.Equal(t, second.ID, items[1].ID)
	})

	t.Run("location filter is a case-insensitive substring", func(t *testing.T) {
		f := newFixture(t)
		f.createEvent(t, "A", "London")
		f.createEvent(t, "B", "East London")
		f.createEvent(t, "C", "Paris")

		items, err := f.catalog.ListEvents(ctx, domain.EventFilter{LocationContains: "lon"})
		require.NoError(t, err)
		require.Len(t, items, 2)
		for _, e := range items {
			assert.Contains(t, e.Location, "London")
		}
	})

	t.Run("repeated calls return the same set", func(t *testing.T) {
		f := newFixture(t)
		f.createEvent(t, "A", "Berlin")

		first, err := f.catalog.ListEvents(ctx, domain.EventFilter{LocationContains: "ber"})
		require.NoError(t, err)
		second, err := f.catalog.ListEvents(ctx, domain.EventFilter{LocationContains: "BER"})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		f := newFixture(t)
		f.createEvent(t, "A", "Berlin")

		items, err := f.catalog.ListEvents(ctx, domain.EventFilter{LocationContains: "tokyo"})
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestListOwnEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("only own events", func(t *testing.T) {
		f := newFixture(t)
		mine := f.createEvent(t, "Mine", "Berlin")

		other := domain.Actor{ID: uuid.New(), Role: domain.RoleOrganizer}
		_, err := f.catalog.CreateEvent(ctx, other, service.CreateEventCmd{
			Title:       "Theirs",
			Description: "Talks.",
			Date:        "2025-07-01",
			Location:    "Berlin",
		})
		require.NoError(t, err)

		items, err := f.catalog.ListOwnEvents(ctx, f.organizer)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, mine.ID, items[0].ID)
	})

	t.Run("attendee denied", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.catalog.ListOwnEvents(ctx, f.attendee)
		assert.True(t, domain.IsCode(err, domain.CodeForbidden))
	})

	t.Run("anonymous denied", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.catalog.ListOwnEvents(ctx, domain.Actor{})
		assert.True(t, domain.IsCode(err, domain.CodeUnauthenticated))
	})
}
