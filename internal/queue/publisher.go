package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/cinebook/internal/model"
)

// Publisher sends reservation events to durable queues on the default
// exchange.  It opens a short-lived connection per event, which keeps
// it free of reconnect state at the volume reservations arrive.
type Publisher struct {
	url            string
	createdQueue   string
	cancelledQueue string
	log            *zap.Logger
	now            func() time.Time
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url, createdQueue, cancelledQueue string, log *zap.Logger) *Publisher {
	return &Publisher{
		url:            url,
		createdQueue:   createdQueue,
		cancelledQueue: cancelledQueue,
		log:            log.Named("publisher"),
		now:            time.Now,
	}
}

// ReservationCreated publishes a reservation.created event.
func (p *Publisher) ReservationCreated(ctx context.Context, res model.Reservation, showing model.Showing) error {
	return p.publish(ctx, p.createdQueue, NewCreatedEvent(res, showing, p.now()))
}

// ReservationCancelled publishes a reservation.cancelled event.
func (p *Publisher) ReservationCancelled(ctx context.Context, res model.Reservation) error {
	return p.publish(ctx, p.cancelledQueue, NewCancelledEvent(res, p.now()))
}

func (p *Publisher) publish(ctx context.Context, queue string, ev ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", queue, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		MessageId:    ev.ReservationID,
		Type:         ev.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", queue, err)
	}
	p.log.Debug("event published",
		zap.String("queue", queue), zap.String("reservation_id", ev.ReservationID))
	return nil
}
