package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/ec-storefront/internal/notification"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes notification envelopes to a topic. It satisfies
// notification.Notifier.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}
	return &Publisher{writer: writer, now: time.Now}
}

// Notify publishes the event keyed by its type.
func (p *Publisher) Notify(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(notification.Envelope{
		Type:       event,
		Payload:    raw,
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event),
		Value: data,
		Time:  p.now(),
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
