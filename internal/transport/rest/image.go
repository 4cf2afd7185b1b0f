package rest

import (
	"context"
	"io"
	"net/http"

	"github.com/baechuer/cityevents/services/booking-service/internal/service"
	"github.com/baechuer/cityevents/services/booking-service/internal/transport/rest/response"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ImageStore uploads event cover images and returns a public URL.
type ImageStore interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string, size int64) (string, error)
}

const maxImageBytes = 5 << 20 // 5 MiB

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadEventImage stores the raw request body as the event's cover
// image and patches the event's image URL. The event must exist and
// the actor must own it before anything is written to the blob store.
func (h *Handler) UploadEventImage(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		fail(w, r, http.StatusServiceUnavailable, "unavailable", "image storage not configured", nil)
		return
	}

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

	// ownership is checked before the blob write: the object key is
	// deterministic per event, so an unauthorized Put would already
	// overwrite the displayed cover
	if _, err := h.catalog.AuthorizeEventUpdate(r.Context(), actor, eventID); err != nil {
		handleErr(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		fail(w, r, http.StatusBadRequest, "request.invalid", "unsupported image type", map[string]string{
			"content_type": "must be image/jpeg, image/png or image/webp",
		})
		return
	}
	if r.ContentLength <= 0 || r.ContentLength > maxImageBytes {
		fail(w, r, http.StatusBadRequest, "request.invalid", "image too large", map[string]string{
			"content_length": "must be between 1 byte and 5 MiB",
		})
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImageBytes)
	path := "events/" + eventID.String() + "/cover" + ext
	url, err := h.images.Put(r.Context(), path, body, contentType, r.ContentLength)
	if err != nil {
		handleErr(w, r, err)
		return
	}

	e, err := h.catalog.UpdateEvent(r.Context(), actor, eventID, service.UpdateEventCmd{
		ImageURL: &url,
	})
	if err != nil {
		handleErr(w, r, err)
		return
	}
	response.Data(w, http.StatusOK, toEventDTO(e))
}
