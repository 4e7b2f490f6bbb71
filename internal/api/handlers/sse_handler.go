package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
)

const defaultHeartbeatInterval = 30 * time.Second

// SalonLookup resolves a salon before a stream is opened
type SalonLookup interface {
	GetByID(ctx context.Context, id string) (*entities.Salon, error)
}

// SSEHandler streams live booking events of one salon as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	salons    SalonLookup
	heartbeat time.Duration

	mu      sync.RWMutex
	clients map[string]int // channel -> open streams
}

// NewSSEHandler creates a new SSE handler. salons may be nil, in which case
// unknown salon ids are not rejected up front.
func NewSSEHandler(eventBus providers.EventBus, salons SalonLookup) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		salons:    salons,
		heartbeat: defaultHeartbeatInterval,
		clients:   make(map[string]int),
	}
}

// WithHeartbeat overrides the keep-alive interval
func (h *SSEHandler) WithHeartbeat(interval time.Duration) *SSEHandler {
	if interval > 0 {
		h.heartbeat = interval
	}
	return h
}

// StreamSalonEvents handles GET /api/salons/{id}/events
func (h *SSEHandler) StreamSalonEvents(w http.ResponseWriter, r *http.Request) {
	salonID := r.PathValue("id")
	if salonID == "" {
		respondWithError(w, http.StatusBadRequest, "salon ID is required")
		return
	}

	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	if h.salons != nil {
		if _, err := h.salons.GetByID(ctx, salonID); err != nil {
			respondWithAppError(w, r, err)
			return
		}
	}

	channel := providers.GetSalonChannel(salonID)
	events, err := h.eventBus.Subscribe(ctx, channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to salon events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	h.registerClient(channel)
	defer h.unregisterClient(channel)

	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := h.send(w, rc, "connected", map[string]interface{}{
		"salon_id":  salonID,
		"timestamp": time.Now().UTC(),
	}); err != nil {
		logger.Warn().Err(err).Str("salon_id", salonID).Msg("streaming not supported")
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("salon_id", salonID).Msg("client disconnected from salon stream")
			return
		case <-ticker.C:
			if err := h.send(w, rc, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()}); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			if err := h.send(w, rc, string(event.Type), event); err != nil {
				logger.Debug().Err(err).Str("salon_id", salonID).Msg("salon stream write failed")
				return
			}
		}
	}
}

// ClientCount returns the number of open streams across all salons
func (h *SSEHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}

func (h *SSEHandler) registerClient(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]++
}

func (h *SSEHandler) unregisterClient(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]--
	if h.clients[channel] <= 0 {
		delete(h.clients, channel)
	}
}

// send writes one SSE frame and flushes it
func (h *SSEHandler) send(w http.ResponseWriter, rc *http.ResponseController, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return err
	}
	return rc.Flush()
}
