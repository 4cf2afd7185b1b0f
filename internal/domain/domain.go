package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	// Attendee can book a seat on published events.
	RoleAttendee Role = "attendee"
	// Organizer can create and manage own events.
	RoleOrganizer Role = "organizer"
)

func IsValidRole(r string) bool {
	return r == string(RoleAttendee) || r == string(RoleOrganizer)
}

// User binds an identity-provider principal to a durable id and role.
// Role is assigned once (attendee by default) and never changes after.
type User struct {
	ID          uuid.UUID
	PrincipalID string
	Role        Role
	CreatedAt   time.Time
}

// DateLayout is the calendar-date format events carry ("2025-06-01").
const DateLayout = "2006-01-02"

type Event struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	Title       string
	Description string
	Date        string
	Location    string
	ImageURL    string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEvent(organizerID uuid.UUID, title, description, date, location, imageURL string, now time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	date = strings.TrimSpace(date)
	location = strings.TrimSpace(location)
	imageURL = strings.TrimSpace(imageURL)

	if organizerID == uuid.Nil {
		return nil, ErrValidationMeta("invalid field", map[string]string{"organizer_id": "required"})
	}
	if title == "" || len(title) > 120 {
		return nil, ErrValidationMeta("invalid field", map[string]string{"title": "required, <= 120 chars"})
	}
	if description == "" || len(description) > 4000 {
		return nil, ErrValidationMeta("invalid field", map[string]string{"description": "required, <= 4000 chars"})
	}
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if location == "" || len(location) > 120 {
		return nil, ErrValidationMeta("invalid field", map[string]string{"location": "required, <= 120 chars"})
	}
	if imageURL != "" {
		if err := validateImageURL(imageURL); err != nil {
			return nil, err
		}
	}

	return &Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		ImageURL:    imageURL,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// ApplyUpdate patches only the provided fields and re-validates them.
// ID and OrganizerID are never touched here.
func (e *Event) ApplyUpdate(title, description, date, location, imageURL *string, now time.Time) error {
	if title != nil {
		v := strings.TrimSpace(*title)
		if v == "" || len(v) > 120 {
			return ErrValidationMeta("invalid field", map[string]string{"title": "required, <= 120 chars"})
		}
		e.Title = v
	}
	if description != nil {
		v := strings.TrimSpace(*description)
		if v == "" || len(v) > 4000 {
			return ErrValidationMeta("invalid field", map[string]string{"description": "required, <= 4000 chars"})
		}
		e.Description = v
	}
	if date != nil {
		v := strings.TrimSpace(*date)
		if err := validateDate(v); err != nil {
			return err
		}
		e.Date = v
	}
	if location != nil {
		v := strings.TrimSpace(*location)
		if v == "" || len(v) > 120 {
			return ErrValidationMeta("invalid field", map[string]string{"location": "required, <= 120 chars"})
		}
		e.Location = v
	}
	if imageURL != nil {
		v := strings.TrimSpace(*imageURL)
		if v != "" {
			if err := validateImageURL(v); err != nil {
				return err
			}
		}
		e.ImageURL = v
	}
	e.UpdatedAt = now.UTC()
	return nil
}

func validateDate(date string) error {
	if date == "" {
		return ErrValidationMeta("invalid field", map[string]string{"date": "required"})
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrValidationMeta("invalid field", map[string]string{"date": "must be a calendar date (YYYY-MM-DD)"})
	}
	return nil
}

func validateImageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrValidationMeta("invalid field", map[string]string{"image_url": "must be an absolute URL"})
	}
	return nil
}

// Booking records one attendee's seat on one event. At most one
// non-deleted booking exists per (UserID, EventID) system-wide; the
// storage adapter enforces that atomically.
type Booking struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	EventID   uuid.UUID
	CreatedAt time.Time
}

// BookedEvent is a booking joined with its event for display. Bookings
// whose event has been deleted are omitted from joined results, never
// an error.
type BookedEvent struct {
	Booking Booking
	Event   *Event
}
