// Package realtime fans movieDetailsUpdated notifications out to connected
// clients.  Delivery is fire-and-forget: there are no acknowledgements and a
// client that is disconnected or too slow misses events.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/metrics"
)

// MovieDetailsUpdated is emitted when a buddy profile's showtime or seats change.
const MovieDetailsUpdated = "movieDetailsUpdated"

// Event is one notification.  Data is the JSON encoded payload.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEvent encodes payload into an Event of type typ.
func NewEvent(typ string, payload interface{}) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: typ, Data: b}, nil
}

// Hub keeps the local subscribers of one process.  With a Redis client,
// Publish goes through a pub/sub channel and Run relays that channel to the
// local subscribers, so every instance sees every event.
type Hub struct {
	mu      sync.RWMutex
	subs    map[chan Event]struct{}
	rdb     *redis.Client
	channel string
	log     *logrus.Entry
}

// NewHub returns a hub.  rdb may be nil for a single-process hub.
func NewHub(rdb *redis.Client, channel string) *Hub {
	return &Hub{
		subs:    make(map[chan Event]struct{}),
		rdb:     rdb,
		channel: channel,
		log:     logging.Component("realtime"),
	}
}

// Subscribe registers a subscriber with the given buffer size.  The returned
// function unregisters it and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of local subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish sends ev to every subscriber of every instance.  If Redis is
// unavailable the event is delivered locally only.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if h.rdb != nil {
		b, err := json.Marshal(ev)
		if err == nil {
			err = h.rdb.Publish(ctx, h.channel, b).Err()
		}
		if err == nil {
			metrics.EventsPublished.WithLabelValues("realtime", "ok").Inc()
			return
		}
		h.log.WithError(err).Warn("redis publish failed; delivering locally")
		metrics.EventsPublished.WithLabelValues("realtime", "error").Inc()
	}
	h.Broadcast(ev)
}

// Broadcast delivers ev to local subscribers without blocking.  A subscriber
// whose buffer is full misses the event.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Run relays the Redis channel to local subscribers until ctx is done.  It
// returns immediately when the hub has no Redis client.
func (h *Hub) Run(ctx context.Context) error {
	if h.rdb == nil {
		return nil
	}
	sub := h.rdb.Subscribe(ctx, h.channel)
	defer func() { _ = sub.Close() }()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				h.log.WithError(err).Warn("dropping malformed event")
				continue
			}
			h.Broadcast(ev)
		}
	}
}
