// Package realtime is an in-process publish/subscribe channel with
// at-most-once delivery and a bounded replay buffer per topic.
package realtime

import (
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	TopicBookings = "bookings"
	TopicMetrics  = "metrics"

	EventNewBooking    = "booking.created"
	EventMetricsUpdate = "metrics.updated"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// Event is one published payload. Delivery is fire-and-forget: slow
// subscribers drop events rather than block the publisher.
type Event struct {
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	PublishedAt time.Time      `json:"published_at"`
}

type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub   *Hub
	topic string
	id    uint64
	ch    chan Event
	once  sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

func (h *Hub) Publish(topic string, event Event) {
	if h == nil {
		return
	}
	name := strings.TrimSpace(topic)
	if name == "" {
		return
	}
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	st := h.ensureStream(name)

	st.mu.Lock()
	st.buffer = append(st.buffer, event)
	if len(st.buffer) > h.bufferSize {
		st.buffer = st.buffer[len(st.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(st.subs))
	for _, ch := range st.subs {
		subs = append(subs, ch)
	}
	st.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a listener on a topic and returns the retained replay
// buffer alongside the live channel.
func (h *Hub) Subscribe(topic string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	name := strings.TrimSpace(topic)
	if name == "" {
		return nil, nil, errors.New("invalid_topic")
	}

	st := h.ensureStream(name)
	st.mu.Lock()
	if st.subs == nil {
		st.subs = make(map[uint64]chan Event)
	}
	id := st.nextID
	st.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	st.subs[id] = ch
	buffer := append([]Event(nil), st.buffer...)
	st.mu.Unlock()

	return &Subscription{
		hub:   h,
		topic: name,
		id:    id,
		ch:    ch,
	}, buffer, nil
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close unregisters the subscription. The event channel is never closed:
// publishers send to a snapshot of channels outside the stream lock, so a
// close here would race a concurrent Publish. Readers stop on their own
// context instead.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.hub.mu.RLock()
		st := s.hub.streams[s.topic]
		s.hub.mu.RUnlock()
		if st == nil {
			return
		}
		st.mu.Lock()
		delete(st.subs, s.id)
		st.mu.Unlock()
	})
}

func (h *Hub) ensureStream(topic string) *stream {
	h.mu.RLock()
	st := h.streams[topic]
	h.mu.RUnlock()
	if st != nil {
		return st
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if st = h.streams[topic]; st != nil {
		return st
	}
	st = &stream{subs: make(map[uint64]chan Event)}
	h.streams[topic] = st
	return st
}
