// Package events publishes backend availability transitions so other
// processes (dashboards, alerting) can follow the client's view of the
// backend.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/ridepool-client/internal/models"
)

const publishTimeout = 2 * time.Second

type Publisher interface {
	PublishAvailability(ctx context.Context, ev models.AvailabilityEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w}
}

// PublishAvailability keys messages by backend URL so transitions for one
// backend stay ordered within a partition.
func (k *KafkaPublisher) PublishAvailability(ctx context.Context, ev models.AvailabilityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode availability event: %w", err)
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.BackendURL), Value: b, Time: ev.CheckedAt}); err != nil {
		return fmt.Errorf("publish availability event: %w", err)
	}
	return nil
}

func (k *KafkaPublisher) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) PublishAvailability(context.Context, models.AvailabilityEvent) error { return nil }
func (Nop) Close() error                                                       { return nil }
