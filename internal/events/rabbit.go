package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errPublisherClosed = errors.New("amqp publisher is closed")

// RabbitPublisher sends JSON events to a durable topic exchange. A connection
// or channel lost to a broker restart is redialled on the next Publish.
type RabbitPublisher struct {
	mu       sync.Mutex
	url      string
	exchange string
	conn     *amqp.Connection
	ch       *amqp.Channel
	closed   bool
}

func NewRabbitPublisher(url string, exchange string) (*RabbitPublisher, error) {
	if exchange == "" {
		return nil, errors.New("amqp exchange is required")
	}
	r := &RabbitPublisher{url: url, exchange: exchange}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

// connect dials the broker, opens a channel and declares the exchange.
// Callers hold r.mu.
func (r *RabbitPublisher) connect() error {
	r.drop()

	conn, err := amqp.Dial(r.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(r.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	r.conn, r.ch = conn, ch
	return nil
}

// drop releases whatever is left of the current connection.
func (r *RabbitPublisher) drop() {
	if r.ch != nil && !r.ch.IsClosed() {
		_ = r.ch.Close()
	}
	if r.conn != nil && !r.conn.IsClosed() {
		_ = r.conn.Close()
	}
	r.conn, r.ch = nil, nil
}

func (r *RabbitPublisher) healthy() bool {
	return r.conn != nil && !r.conn.IsClosed() && r.ch != nil && !r.ch.IsClosed()
}

func (r *RabbitPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	var errs []error
	if r.ch != nil && !r.ch.IsClosed() {
		errs = append(errs, r.ch.Close())
	}
	if r.conn != nil && !r.conn.IsClosed() {
		errs = append(errs, r.conn.Close())
	}
	r.conn, r.ch = nil, nil
	return errors.Join(errs...)
}

func (r *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errPublisherClosed
	}
	if !r.healthy() {
		if err := r.connect(); err != nil {
			return err
		}
	}

	err = r.ch.PublishWithContext(ctx, r.exchange, routingKey, false, false, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	// The channel died between the health check and the publish.
	if err := r.connect(); err != nil {
		return err
	}
	return r.ch.PublishWithContext(ctx, r.exchange, routingKey, false, false, msg)
}
