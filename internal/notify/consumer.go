package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads reservation events from a queue bound to the exchange.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewConsumer(url, exchange, queue string, prefetch int) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	if err := ch.QueueBind(q.Name, RoutingKeyReservationCreated, exchange, false, nil); err != nil {
		return fail("bind queue", err)
	}
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail("set qos", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name}, nil
}

// Run hands every delivery to w until ctx is done or the broker closes the
// channel.
func (c *Consumer) Run(ctx context.Context, w *Worker) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			w.Handle(ctx, d)
		}
	}
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Sender delivers one plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Worker turns reservation events into confirmation mails.
type Worker struct {
	Sender Sender
	Log    *zap.Logger
}

// Handle acks a delivery once the mail is sent. Anything else is rejected
// without requeue so a poison message cannot loop.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	if err := w.process(ctx, d); err != nil {
		w.Log.Error("reservation mail failed",
			zap.String("routing_key", d.RoutingKey),
			zap.Uint64("delivery_tag", d.DeliveryTag),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) error {
	if d.RoutingKey != RoutingKeyReservationCreated {
		return fmt.Errorf("unexpected routing key %q", d.RoutingKey)
	}
	var ev ReservationCreated
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if ev.Email == "" {
		return fmt.Errorf("reservation %d has no recipient", ev.ReservationID)
	}
	subject, body, err := RenderConfirmation(ev)
	if err != nil {
		return err
	}
	if err := w.Sender.Send(ctx, ev.Email, subject, body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	w.Log.Info("reservation mail sent",
		zap.Uint("reservation_id", ev.ReservationID),
		zap.String("email", ev.Email),
	)
	return nil
}
