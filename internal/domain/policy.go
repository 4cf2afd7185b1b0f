package domain

import "github.com/google/uuid"

type Action string

const (
	ActionCreateEvent     Action = "event.create"
	ActionUpdateEvent     Action = "event.update"
	ActionDeleteEvent     Action = "event.delete"
	ActionReadEvent       Action = "event.read"
	ActionListEvents      Action = "event.list"
	ActionCreateBooking   Action = "booking.create"
	ActionListOwnBookings Action = "booking.list_own"
	ActionCancelBooking   Action = "booking.cancel"
)

// Actor is the authenticated principal a request runs as. The zero
// value is the anonymous actor.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) Anonymous() bool { return a.ID == uuid.Nil }

// Resource carries the loaded record an action targets, when ownership
// matters. Only the relevant pointer is set.
type Resource struct {
	Event   *Event
	Booking *Booking
}

// Authorize is the whole access policy: pure, total over (role, action),
// nil means allow. Unknown actions are denied, never passed through.
func Authorize(actor Actor, action Action, res Resource) error {
	switch action {
	case ActionReadEvent, ActionListEvents:
		// public read, anonymous included
		return nil

	case ActionCreateEvent:
		if actor.Anonymous() {
			return ErrUnauthenticated("sign in required")
		}
		if actor.Role != RoleOrganizer {
			return ErrForbidden("only organizers can create events")
		}
		return nil

	case ActionUpdateEvent, ActionDeleteEvent:
		if actor.Anonymous() {
			return ErrUnauthenticated("sign in required")
		}
		if actor.Role != RoleOrganizer {
			return ErrForbidden("only organizers can manage events")
		}
		if res.Event == nil || res.Event.OrganizerID != actor.ID {
			return ErrForbidden("not the event owner")
		}
		return nil

	case ActionCreateBooking:
		if actor.Anonymous() {
			return ErrUnauthenticated("sign in required")
		}
		if actor.Role != RoleAttendee {
			return ErrForbidden("only attendees can book events")
		}
		return nil

	case ActionListOwnBookings:
		if actor.Anonymous() {
			return ErrUnauthenticated("sign in required")
		}
		return nil

	case ActionCancelBooking:
		if actor.Anonymous() {
			return ErrUnauthenticated("sign in required")
		}
		if res.Booking == nil || res.Booking.UserID != actor.ID {
			return ErrForbidden("not the booking owner")
		}
		return nil

	default:
		return ErrForbidden("unknown action")
	}
}
