package service

import (
	"context"
	"time"

	"github.com/baechuer/cityevents/services/booking-service/internal/domain"
	"github.com/baechuer/cityevents/services/booking-service/internal/metrics"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// CatalogService owns the event lifecycle. Every mutating operation
// authorizes through domain.Authorize before touching storage.
type CatalogService struct {
	repo  domain.EventRepository
	cache domain.Cache
	pub   domain.Publisher
	clock Clock

	ttlDetails time.Duration
	ttlList    time.Duration
}

func NewCatalogService(repo domain.EventRepository, cache domain.Cache, pub domain.Publisher, clock Clock, ttlDetails, ttlList time.Duration) *CatalogService {
	if ttlDetails == 0 {
		ttlDetails = 5 * time.Minute
	}
	if ttlList == 0 {
		ttlList = 15 * time.Second
	}
	return &CatalogService{
		repo:       repo,
		cache:      cache,
		pub:        pub,
		clock:      clock,
		ttlDetails: ttlDetails,
		ttlList:    ttlList,
	}
}

type CreateEventCmd struct {
	Title       string
	Description string
	Date        string
	Location    string
	ImageURL    string
}

func (s *CatalogService) CreateEvent(ctx context.Context, actor domain.Actor, cmd CreateEventCmd) (*domain.Event, error) {
	if err := domain.Authorize(actor, domain.ActionCreateEvent, domain.Resource{}); err != nil {
		return nil, err
	}
	e, err := domain.NewEvent(actor.ID, cmd.Title, cmd.Description, cmd.Date, cmd.Location, cmd.ImageURL, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	metrics.EventsCreated.Inc()
	s.invalidateListCache(ctx, e.Location)
	s.publish(ctx, "event.created", map[string]any{
		"event_id":     e.ID,
		"organizer_id": e.OrganizerID,
	})
	return e, nil
}

// AuthorizeEventUpdate loads the event and checks the actor may modify
// it, without writing anything. Callers whose side effects live outside
// the repository (image uploads) run this before mutating.
func (s *CatalogService) AuthorizeEventUpdate(ctx context.Context, actor domain.Actor, eventID uuid.UUID) (*domain.Event, error) {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, domain.ActionUpdateEvent, domain.Resource{Event: e}); err != nil {
		return nil, err
	}
	return e, nil
}

type UpdateEventCmd struct {
	Title       *string
	Description *string
	Date        *string
	Location    *string
	ImageURL    *string
}

func (s *CatalogService) UpdateEvent(ctx context.Context, actor domain.Actor, eventID uuid.UUID, cmd UpdateEventCmd) (*domain.Event, error) {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(actor, domain.ActionUpdateEvent, domain.Resource{Event: e}); err != nil {
		return nil, err
	}
	oldLocation := e.Location
	if err := e.ApplyUpdate(cmd.Title, cmd.Description, cmd.Date, cmd.Location, cmd.ImageURL, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.invalidateDetailCache(ctx, e.ID)
	s.invalidateListCache(ctx, oldLocation, e.Location)
	return e, nil
}

// DeleteEvent removes the event record only. Bookings against it are
// kept: attendees still see them in raw listings, and joined results
// simply omit the missing event.
func (s *CatalogService) DeleteEvent(ctx context.Context, actor domain.Actor, eventID uuid.UUID) error {
	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := domain.Authorize(actor, domain.ActionDeleteEvent, domain.Resource{Event: e}); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}
	s.invalidateDetailCache(ctx, e.ID)
	s.invalidateListCache(ctx, e.Location)
	s.publish(ctx, "event.deleted", map[string]any{
		"event_id":     e.ID,
		"organizer_id": e.OrganizerID,
	})
	return nil
}

func (s *CatalogService) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	key := cacheKeyEventDetails(id.String())
	if s.cache != nil {
		var cached domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			return &cached, nil
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, e, s.ttlDetails); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return e, nil
}

// ListEvents is public. The filter matches location case-insensitively
// as a substring; repeated calls with no intervening writes return the
// same set.
func (s *CatalogService) ListEvents(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	key := cacheKeyEventList(f.LocationContains)
	if s.cache != nil {
		var cached []*domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache list get failed")
		} else if found {
			return cached, nil
		}
	}

	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(items) > 0 {
		if err := s.cache.Set(ctx, key, items, s.ttlList); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache list set failed")
		}
	}
	return items, nil
}

// ListOwnEvents returns the actor's events only, by construction of the
// filter. Organizer role is still required so attendees get a clean 403
// instead of an always-empty list.
func (s *CatalogService) ListOwnEvents(ctx context.Context, actor domain.Actor) ([]*domain.Event, error) {
	if actor.Anonymous() {
		return nil, domain.ErrUnauthenticated("sign in required")
	}
	if actor.Role != domain.RoleOrganizer {
		return nil, domain.ErrForbidden("only organizers have own events")
	}
	return s.repo.ListByOrganizer(ctx, actor.ID)
}

func (s *CatalogService) invalidateDetailCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := cacheKeyEventDetails(id.String())
	if err := s.cache.Delete(ctx, key); err != nil {
		zlog.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}

func (s *CatalogService) invalidateListCache(ctx context.Context, locations ...string) {
	if s.cache == nil {
		return
	}
	keys := []string{cacheKeyEventList("")}
	for _, loc := range locations {
		keys = append(keys, cacheKeyEventList(loc))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		zlog.Warn().Err(err).Msg("cache list invalidate failed")
	}
}

func (s *CatalogService) publish(ctx context.Context, routingKey string, payload any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, routingKey, payload); err != nil {
		zlog.Warn().Err(err).Str("routing_key", routingKey).Msg("publish failed")
	}
}
