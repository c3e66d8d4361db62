package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-booking/internal/domain"
)

// Publisher sends reservation events to a durable topic exchange. A dropped
// connection is redialed on the next publish.
type Publisher struct {
	url      string
	exchange string

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed chan *amqp.Error
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect dials and declares the exchange. Callers hold mu or own p.
func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.closed = conn.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch, p.closed = nil, nil, nil
}

// ensure returns a usable channel, redialing after the broker went away.
func (p *Publisher) ensure() (*amqp.Channel, error) {
	if p.closed != nil {
		select {
		case <-p.closed:
			p.reset()
		default:
		}
	}
	if p.ch != nil && p.ch.IsClosed() {
		p.reset()
	}
	if p.ch == nil {
		if err := p.connect(); err != nil {
			return nil, err
		}
	}
	return p.ch, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, err := p.ensure()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	})
	if err != nil {
		p.reset()
	}
	return err
}

func (p *Publisher) SendConfirmation(ctx context.Context, r *domain.Reservation) error {
	if err := p.PublishJSON(ctx, RoutingKeyReservationCreated, NewReservationCreated(r)); err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyReservationCreated, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		err = p.conn.Close()
	}
	p.conn, p.ch, p.closed = nil, nil, nil
	return err
}
