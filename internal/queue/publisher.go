package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinema-booking/internal/logging"
	"github.com/iliyamo/cinema-booking/internal/metrics"
)

// BookingQueueName is the durable queue carrying BookingEvent messages.
const BookingQueueName = "booking.events"

// Publisher sends booking events to RabbitMQ.  A connection is dialled per
// publish; booking writes are infrequent enough that holding a channel open
// is not worth the reconnect bookkeeping.
type Publisher struct {
	url   string
	queue string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, queue: BookingQueueName}
}

// PublishBooking publishes ev as a persistent JSON message.  Errors are
// logged and returned so the caller can choose to ignore them.
func (p *Publisher) PublishBooking(ctx context.Context, ev BookingEvent) error {
	err := p.publish(ctx, ev)
	result := "ok"
	if err != nil {
		result = "error"
		logging.FromContext(ctx).WithError(err).WithField("event", ev.Type).Warn("rabbitmq: publish failed")
	}
	metrics.EventsPublished.WithLabelValues("amqp", result).Inc()
	return err
}

func (p *Publisher) publish(ctx context.Context, ev BookingEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
