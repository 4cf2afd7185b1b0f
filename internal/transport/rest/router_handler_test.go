package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/identity"
	"github.com/baechuer/cityevents/services/booking-service/internal/infrastructure/memory"
	"github.com/baechuer/cityevents/services/booking-service/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testServer struct {
	srv      *httptest.Server
	resolver *identity.Resolver
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWith(t, nil, nil)
}

// newTestServerWith lets a test swap in an image store or a failing
// event repository.
func newTestServerWith(t *testing.T, images ImageStore, events domain.EventRepository) *testServer {
	t.Helper()

	users := memory.NewUserRepo()
	if events == nil {
		events = memory.NewEventRepo()
	}
	bookings := memory.NewBookingRepo()

	clock := service.SystemClock{}
	verifier := identity.NewHS256Verifier(testSecret)
	resolver := identity.NewResolver(verifier, users, clock, "")

	catalog := service.NewCatalogService(events, nil, nil, clock, 0, 0)
	bookingSvc := service.NewBookingService(bookings, events, nil, clock)

	h := NewHandler(catalog, bookingSvc, images)
	router := NewRouter(RouterDeps{
		Handler:  h,
		Resolver: resolver,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, resolver: resolver}
}

func signToken(t *testing.T, principalID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": principalID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (ts *testServer) organizerToken(t *testing.T, principalID string) string {
	t.Helper()
	_, err := ts.resolver.Provision(context.Background(), principalID, domain.RoleOrganizer)
	require.NoError(t, err)
	return signToken(t, principalID)
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func decodeErrCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var env struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.NotEmpty(t, env.Error.RequestID)
	return env.Error.Code
}

func validEventBody() map[string]any {
	return map[string]any{
		"title":       "Meetup",
		"description": "An evening of talks.",
		"date":        "2025-07-01",
		"location":    "Berlin",
	}
}

func (ts *testServer) createEvent(t *testing.T, token string) eventDTO {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/v1/events", token, validEventBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var e eventDTO
	decodeData(t, resp, &e)
	return e
}

func TestRouter_EventLifecycle(t *testing.T) {
	ts := newTestServer(t)
	orgToken := ts.organizerToken(t, "org-1")

	// create
	e := ts.createEvent(t, orgToken)
	assert.Equal(t, "Meetup", e.Title)

	// public read without a token
	resp := ts.do(t, http.MethodGet, "/api/v1/events/"+e.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/events?location=ber", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []eventDTO `json:"items"`
	}
	decodeData(t, resp, &list)
	require.Len(t, list.Items, 1)

	// patch
	resp = ts.do(t, http.MethodPatch, "/api/v1/events/"+e.ID.String(), orgToken, map[string]any{"location": "Hamburg"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated eventDTO
	decodeData(t, resp, &updated)
	assert.Equal(t, "Hamburg", updated.Location)

	// own events
	resp = ts.do(t, http.MethodGet, "/api/v1/organizer/events", orgToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// delete
	resp = ts.do(t, http.MethodDelete, "/api/v1/events/"+e.ID.String(), orgToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/v1/events/"+e.ID.String(), "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decodeErrCode(t, resp))
}

func TestRouter_EventAuthz(t *testing.T) {
	ts := newTestServer(t)
	orgToken := ts.organizerToken(t, "org-1")

	t.Run("write without a token", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/events", "", validEventBody())
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "auth.unauthorized", decodeErrCode(t, resp))
	})

	t.Run("attendee cannot create", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/events", signToken(t, "att-1"), validEventBody())
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "auth.forbidden", decodeErrCode(t, resp))
	})

	t.Run("non-owner organizer cannot patch", func(t *testing.T) {
		e := ts.createEvent(t, orgToken)
		otherToken := ts.organizerToken(t, "org-2")

		resp := ts.do(t, http.MethodPatch, "/api/v1/events/"+e.ID.String(), otherToken, map[string]any{"title": "Hijacked"})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		body := validEventBody()
		body["date"] = "July 1st"
		resp := ts.do(t, http.MethodPost, "/api/v1/events", orgToken, body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "request.invalid", decodeErrCode(t, resp))
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/api/v1/events", "not.a.jwt", validEventBody())
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRouter_Bookings(t *testing.T) {
	ts := newTestServer(t)
	orgToken := ts.organizerToken(t, "org-1")
	attToken := signToken(t, "att-1")

	e := ts.createEvent(t, orgToken)
	bookBody := map[string]any{"event_id": e.ID.String()}

	// first booking
	resp := ts.do(t, http.MethodPost, "/api/v1/bookings", attToken, bookBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var b bookingDTO
	decodeData(t, resp, &b)
	assert.Equal(t, e.ID, b.EventID)

	// duplicate conflicts
	resp = ts.do(t, http.MethodPost, "/api/v1/bookings", attToken, bookBody)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "booking.already_booked", decodeErrCode(t, resp))

	// organizer cannot book
	resp = ts.do(t, http.MethodPost, "/api/v1/bookings", orgToken, bookBody)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// list own bookings
	resp = ts.do(t, http.MethodGet, "/api/v1/me/bookings", attToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Items []struct {
			Booking bookingDTO `json:"booking"`
			Event   eventDTO   `json:"event"`
		} `json:"items"`
	}
	decodeData(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Meetup", list.Items[0].Event.Title)

	// another user cannot cancel it
	resp = ts.do(t, http.MethodDelete, "/api/v1/bookings/"+b.ID.String(), signToken(t, "att-2"), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// owner cancels
	resp = ts.do(t, http.MethodDelete, "/api/v1/bookings/"+b.ID.String(), attToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the pair is free again
	resp = ts.do(t, http.MethodPost, "/api/v1/bookings", attToken, bookBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

type downEventRepo struct{}

var errRepoDown = errors.New("dial tcp 10.0.0.9:5432: connection refused")

func (downEventRepo) Create(context.Context, *domain.Event) error {
	return domain.ErrUnavailable(errRepoDown)
}

func (downEventRepo) GetByID(context.Context, uuid.UUID) (*domain.Event, error) {
	return nil, domain.ErrUnavailable(errRepoDown)
}

func (downEventRepo) Update(context.Context, *domain.Event) error {
	return domain.ErrUnavailable(errRepoDown)
}

func (downEventRepo) Delete(context.Context, uuid.UUID) error {
	return domain.ErrUnavailable(errRepoDown)
}

func (downEventRepo) List(context.Context, domain.EventFilter) ([]*domain.Event, error) {
	return nil, domain.ErrUnavailable(errRepoDown)
}

func (downEventRepo) ListByOrganizer(context.Context, uuid.UUID) ([]*domain.Event, error) {
	return nil, domain.ErrUnavailable(errRepoDown)
}

func TestRouter_StorageUnavailable(t *testing.T) {
	ts := newTestServerWith(t, nil, downEventRepo{})

	resp := ts.do(t, http.MethodGet, "/api/v1/events", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "unavailable", env.Error.Code)
	// the storage cause stays out of the response
	assert.Equal(t, "service unavailable", env.Error.Message)
	assert.NotContains(t, env.Error.Message, "connection refused")
}

func TestRouter_Plumbing(t *testing.T) {
	ts := newTestServer(t)

	t.Run("healthz", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/healthz", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/metrics", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set(requestIDHeader, "rid-123")

		resp, err := ts.srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "rid-123", resp.Header.Get(requestIDHeader))
	})

	t.Run("request id is generated when absent", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/healthz", "", nil)
		assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	})

	t.Run("security headers", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	})

	t.Run("image upload without a store", func(t *testing.T) {
		orgToken := ts.organizerToken(t, "org-img")
		e := ts.createEvent(t, orgToken)

		req, err := http.NewRequest(http.MethodPut, ts.srv.URL+"/api/v1/events/"+e.ID.String()+"/image", bytes.NewReader([]byte{0xFF, 0xD8}))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+orgToken)
		req.Header.Set("Content-Type", "image/jpeg")

		resp, err := ts.srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
