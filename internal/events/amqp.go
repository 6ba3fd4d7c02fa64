package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange     = "orders.events"
	QueueName    = "orders.notifications"
	dlxExchange  = "orders.dlx"
	dlqQueueName = "orders.notifications.dlq"
)

// SetupRabbitMQ declares the event exchange, consumer queue, and DLX/DLQ.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, QueueName, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": QueueName,
	}); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(QueueName, "order.#", Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

type AMQPPublisher struct {
	ch *amqp.Channel
}

func NewAMQPPublisher(ch *amqp.Channel) *AMQPPublisher {
	return &AMQPPublisher{ch: ch}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, Exchange, string(ev.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.ID.String(),
		Timestamp:    ev.OccurredAt,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

type AMQPSubscriber struct {
	ch   *amqp.Channel
	log  *slog.Logger
	done chan struct{}
}

func NewAMQPSubscriber(ch *amqp.Channel, log *slog.Logger) *AMQPSubscriber {
	return &AMQPSubscriber{ch: ch, log: log, done: make(chan struct{})}
}

// Subscribe consumes until ctx ends or Close is called. Malformed messages
// and handler failures are nacked to the DLQ.
func (s *AMQPSubscriber) Subscribe(ctx context.Context, h Handler) error {
	msgs, err := s.ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var ev OrderEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				s.log.Error("unmarshal order event", "error", err)
				_ = msg.Nack(false, false)
				continue
			}
			if err := h(ctx, ev); err != nil {
				s.log.Error("handle order event", "error", err, "event_id", ev.ID, "order_id", ev.OrderID)
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *AMQPSubscriber) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}
