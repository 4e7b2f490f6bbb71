package services

import (
	"context"
	"fmt"
	"time"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

// HTTPCacheKeyPrefix prefixes the keys written by the HTTP cache middleware
const HTTPCacheKeyPrefix = "http:cache:"

// CacheInvalidationService drops cached responses that a booking or salon
// change made stale.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
	}
}

// Start listens for booking updates until Stop is called
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	events, err := s.eventBus.Subscribe(ctx, providers.EventChannelBookingUpdates)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to booking updates: %w", err)
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	go s.processEvents(ctx, events)

	observability.LoggerFromContext(ctx).Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops listening and waits for the worker to exit
func (s *CacheInvalidationService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *CacheInvalidationService) processEvents(ctx context.Context, events <-chan *entities.BookingEvent) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event != nil {
				s.handleEvent(event)
			}
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.LoggerFromContext(ctx)
	if err := s.InvalidateSalonCache(ctx, event.SalonID); err != nil {
		logger.Warn().Err(err).Str("salon_id", event.SalonID).Str("event_id", event.ID).Msg("failed to invalidate salon cache")
		return
	}
	logger.Debug().Str("salon_id", event.SalonID).Str("event_type", string(event.Type)).Msg("invalidated salon cache")
}

// InvalidateSalonCache drops cached responses for one salon's routes, such
// as its availability and bookings.
func (s *CacheInvalidationService) InvalidateSalonCache(ctx context.Context, salonID string) error {
	if salonID == "" {
		return nil
	}
	pattern := fmt.Sprintf("%s*salons/%s*", HTTPCacheKeyPrefix, salonID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate salon cache: %w", err)
	}
	return nil
}

// InvalidateSearchCaches drops every cached search result. Called when the
// catalog changes.
func (s *CacheInvalidationService) InvalidateSearchCaches(ctx context.Context) error {
	for _, pattern := range []string{searchCacheKeyPrefix + "*", HTTPCacheKeyPrefix + "*salons*"} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
		}
	}
	return nil
}
