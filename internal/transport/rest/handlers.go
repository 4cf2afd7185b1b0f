package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	appCtx "github.com/baechuer/cityevents/services/booking-service/internal/pkg/context"
	"github.com/baechuer/cityevents/services/booking-service/internal/service"
	"github.com/baechuer/cityevents/services/booking-service/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type Handler struct {
	catalog  *service.CatalogService
	bookings *service.BookingService
	images   ImageStore
}

// NewHandler wires the HTTP surface. images may be nil when no blob
// store is configured; the upload endpoint then responds 503.
func NewHandler(catalog *service.CatalogService, bookings *service.BookingService, images ImageStore) *Handler {
	return &Handler{catalog: catalog, bookings: bookings, images: images}
}

type eventDTO struct {
	ID          uuid.UUID `json:"id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEventDTO(e *domain.Event) eventDTO {
	return eventDTO{
		ID:          e.ID,
		OrganizerID: e.OrganizerID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		ImageURL:    e.ImageURL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEventDTOs(items []*domain.Event) []eventDTO {
	out := make([]eventDTO, 0, len(items))
	for _, e := range items {
		out = append(out, toEventDTO(e))
	}
	return out
}

type bookingDTO struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toBookingDTO(b domain.Booking) bookingDTO {
	return bookingDTO{ID: b.ID, EventID: b.EventID, UserID: b.UserID, CreatedAt: b.CreatedAt}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Date        string `json:"date"`
		Location    string `json:"location"`
		ImageURL    string `json:"image_url"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	e, err := h.catalog.CreateEvent(r.Context(), actor, service.CreateEventCmd{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toEventDTO(e))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Date        *string `json:"date"`
		Location    *string `json:"location"`
		ImageURL    *string `json:"image_url"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	e, err := h.catalog.UpdateEvent(r.Context(), actor, eventID, service.UpdateEventCmd{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventDTO(e))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	if err := h.catalog.DeleteEvent(r.Context(), actor, eventID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "deleted"})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid eventID", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	e, err := h.catalog.GetEvent(r.Context(), eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventDTO(e))
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	f := domain.EventFilter{
		LocationContains: strings.TrimSpace(r.URL.Query().Get("location")),
	}

	items, err := h.catalog.ListEvents(r.Context(), f)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]any{"items": toEventDTOs(items)})
}

func (h *Handler) OwnEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	items, err := h.catalog.ListOwnEvents(r.Context(), actor)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]any{"items": toEventDTOs(items)})
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	var req struct {
		EventID string `json:"event_id"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid body", nil)
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid event_id", map[string]string{
			"event_id": "must be a valid uuid",
		})
		return
	}

	b, err := h.bookings.CreateBooking(r.Context(), actor, eventID)
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusCreated, toBookingDTO(b))
}

func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	items, err := h.bookings.ListBookings(r.Context(), actor)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	type bookedDTO struct {
		Booking bookingDTO `json:"booking"`
		Event   eventDTO   `json:"event"`
	}
	out := make([]bookedDTO, 0, len(items))
	for _, be := range items {
		out = append(out, bookedDTO{
			Booking: toBookingDTO(be.Booking),
			Event:   toEventDTO(be.Event),
		})
	}
	response.Data(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", "unauthorized", nil)
		return
	}

	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "request.invalid", "invalid bookingID", map[string]string{
			"booking_id": "must be a valid uuid",
		})
		return
	}

	if err := h.bookings.CancelBooking(r.Context(), actor, bookingID); err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, map[string]string{"msg": "canceled"})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleErr(w http.ResponseWriter, r *http.Request, err error) {
	msg := "internal error"
	var meta map[string]string
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
		meta = appErr.Meta
	}

	switch domain.CodeOf(err) {
	case domain.CodeUnauthenticated:
		fail(w, r, http.StatusUnauthorized, "auth.unauthorized", msg, meta)
	case domain.CodeForbidden:
		fail(w, r, http.StatusForbidden, "auth.forbidden", msg, meta)
	case domain.CodeValidation:
		fail(w, r, http.StatusBadRequest, "request.invalid", msg, meta)
	case domain.CodeNotFound:
		fail(w, r, http.StatusNotFound, "not_found", msg, meta)
	case domain.CodeAlreadyBooked:
		fail(w, r, http.StatusConflict, "booking.already_booked", msg, meta)
	case domain.CodeUnavailable:
		// never leak the wrapped storage error
		fail(w, r, http.StatusServiceUnavailable, "unavailable", "service unavailable", nil)
	default:
		fail(w, r, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	reqID := appCtx.GetRequestID(r.Context())
	if reqID == "" {
		reqID = "no-request-id"
	}
	response.Fail(w, status, code, message, meta, reqID)
}
