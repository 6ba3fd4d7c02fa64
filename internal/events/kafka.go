package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher keys messages by shop so a shop's events stay ordered.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ShopID.String()),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

type KafkaSubscriber struct {
	r   *kafka.Reader
	log *slog.Logger
}

func NewKafkaSubscriber(brokers []string, topic, groupID string, log *slog.Logger) *KafkaSubscriber {
	return &KafkaSubscriber{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		log: log,
	}
}

// Subscribe commits each message after the handler runs. A failed handler is
// logged and committed so one bad event cannot stall the partition.
func (s *KafkaSubscriber) Subscribe(ctx context.Context, h Handler) error {
	for {
		msg, err := s.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var ev OrderEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			s.log.Error("unmarshal order event", "error", err, "offset", msg.Offset)
		} else if err := h(ctx, ev); err != nil {
			s.log.Error("handle order event", "error", err, "event_id", ev.ID, "order_id", ev.OrderID)
		}

		if err := s.r.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (s *KafkaSubscriber) Close() error { return s.r.Close() }
