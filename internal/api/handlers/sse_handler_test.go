package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/booksaloon/backend/internal/api/handlers"
	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/providers"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

// MockEventBus fans published events out to in-memory subscribers
type MockEventBus struct {
	mu           sync.RWMutex
	subscribers  map[string][]chan *entities.BookingEvent
	subscribeErr error
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.BookingEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	m.mu.RLock()
	channels := append([]chan *entities.BookingEvent(nil), m.subscribers[channel]...)
	m.mu.RUnlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.BookingEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, channels := range m.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	m.subscribers = make(map[string][]chan *entities.BookingEvent)
	return nil
}

func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[channel])
}

// streamRecorder is a ResponseWriter safe to read while the handler writes
type streamRecorder struct {
	mu      sync.Mutex
	header  http.Header
	body    bytes.Buffer
	code    int
	flushes int
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{header: make(http.Header)}
}

func (s *streamRecorder) Header() http.Header { return s.header }

func (s *streamRecorder) WriteHeader(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == 0 {
		s.code = code
	}
}

func (s *streamRecorder) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == 0 {
		s.code = http.StatusOK
	}
	return s.body.Write(p)
}

func (s *streamRecorder) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
}

func (s *streamRecorder) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body.String()
}

func (s *streamRecorder) Status() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func startStream(t *testing.T, h *handlers.SSEHandler, salonID string) (*streamRecorder, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/salons/"+salonID+"/events", nil).WithContext(ctx)
	req.SetPathValue("id", salonID)

	w := newStreamRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.StreamSalonEvents(w, req)
	}()
	return w, cancel, done
}

func TestSSEHandler_StreamSalonEvents(t *testing.T) {
	bus := NewMockEventBus()
	salons := new(MockSalonService)
	salons.On("GetByID", mock.Anything, "salon-1").Return(&entities.Salon{ID: "salon-1"}, nil)
	h := handlers.NewSSEHandler(bus, salons)

	w, cancel, done := startStream(t, h, "salon-1")
	channel := providers.GetSalonChannel("salon-1")

	require.Eventually(t, func() bool {
		return bus.SubscriberCount(channel) == 1 && strings.Contains(w.String(), "event: connected")
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, h.ClientCount())

	booking := &entities.Booking{ID: "booking-1", SalonID: "salon-1", Date: "2024-06-01", Time: "10:00", Status: entities.BookingStatusConfirmed}
	require.NoError(t, bus.Publish(context.Background(), channel, entities.NewBookingEvent(entities.BookingEventTypeCreated, booking)))
	// Other salons' events never reach this stream
	require.NoError(t, bus.Publish(context.Background(), providers.GetSalonChannel("salon-2"),
		entities.NewBookingEvent(entities.BookingEventTypeCreated, &entities.Booking{ID: "booking-2", SalonID: "salon-2"})))

	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), "event: booking.created")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after client disconnect")
	}

	body := w.String()
	assert.Equal(t, http.StatusOK, w.Status())
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, body, `"salon_id":"salon-1"`)
	assert.Contains(t, body, `"booking_id":"booking-1"`)
	assert.NotContains(t, body, "booking-2")
	assert.Less(t, strings.Index(body, "event: connected"), strings.Index(body, "event: booking.created"))
	assert.Equal(t, 0, h.ClientCount())
}

func TestSSEHandler_Heartbeat(t *testing.T) {
	h := handlers.NewSSEHandler(NewMockEventBus(), nil).WithHeartbeat(10 * time.Millisecond)

	w, cancel, done := startStream(t, h, "salon-1")
	defer func() {
		cancel()
		<-done
	}()

	assert.Eventually(t, func() bool {
		return strings.Count(w.String(), "event: heartbeat") >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSSEHandler_EndsWhenBusCloses(t *testing.T) {
	bus := NewMockEventBus()
	h := handlers.NewSSEHandler(bus, nil)

	_, cancel, done := startStream(t, h, "salon-1")
	defer cancel()

	require.Eventually(t, func() bool {
		return bus.SubscriberCount(providers.GetSalonChannel("salon-1")) == 1
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after the bus closed")
	}
}

func TestSSEHandler_Rejections(t *testing.T) {
	t.Run("missing salon id", func(t *testing.T) {
		h := handlers.NewSSEHandler(NewMockEventBus(), nil)

		w := httptest.NewRecorder()
		h.StreamSalonEvents(w, httptest.NewRequest(http.MethodGet, "/api/salons//events", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown salon", func(t *testing.T) {
		bus := NewMockEventBus()
		salons := new(MockSalonService)
		salons.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.NewNotFoundError("salon not found"))
		h := handlers.NewSSEHandler(bus, salons)

		req := httptest.NewRequest(http.MethodGet, "/api/salons/nope/events", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		h.StreamSalonEvents(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 0, bus.SubscriberCount(providers.GetSalonChannel("nope")))
	})

	t.Run("bus unavailable", func(t *testing.T) {
		bus := NewMockEventBus()
		bus.subscribeErr = errors.New("redis: connection refused")
		h := handlers.NewSSEHandler(bus, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/salons/salon-1/events", nil)
		req.SetPathValue("id", "salon-1")
		w := httptest.NewRecorder()
		h.StreamSalonEvents(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, 0, h.ClientCount())
	})
}
