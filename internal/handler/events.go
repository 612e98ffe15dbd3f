package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/realtime"
)

// Subscriber is implemented by *realtime.Hub.
type Subscriber interface {
	Subscribe(buffer int) (<-chan realtime.Event, func())
}

// EventsHandler streams realtime events as Server-Sent Events.
type EventsHandler struct {
	hub       Subscriber
	keepAlive time.Duration
}

func NewEventsHandler(hub Subscriber) *EventsHandler {
	return &EventsHandler{hub: hub, keepAlive: 25 * time.Second}
}

// Stream holds the connection open and writes one SSE frame per event until
// the client goes away.  Events missed while disconnected are not replayed.
func (h *EventsHandler) Stream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	events, unsubscribe := h.hub.Subscribe(16)
	defer unsubscribe()
	ping := time.NewTicker(h.keepAlive)
	defer ping.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.Data); err != nil {
				return nil
			}
			w.Flush()
		case <-ping.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
