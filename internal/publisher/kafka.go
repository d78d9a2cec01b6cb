package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventTypeCheckoutCompleted = "checkout_completed"

// KafkaPublisher writes checkout events to a topic, keyed by checkout id so
// every event of one checkout lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishCheckout(ctx context.Context, event domain.CheckoutCompleted) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write checkout event %s: %w", event.CheckoutID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(event domain.CheckoutCompleted) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal checkout event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.CheckoutID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeCheckoutCompleted)},
		},
	}, nil
}
