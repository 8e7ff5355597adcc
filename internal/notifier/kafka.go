package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CryptoSignals/internal/model"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes event envelopes as JSON, keyed by symbol so that every
// event of one symbol lands on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w, topic: topic}, nil
}

func (k *KafkaPublisher) Name() string { return "kafka" }

func (k *KafkaPublisher) Dispatch(ctx context.Context, ev model.Event) error {
	v, err := json.Marshal(model.NewEnvelope(ev))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	meta := ev.Meta()
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(meta.Symbol),
		Value: v,
		Time:  meta.At,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind())},
			{Key: "event_id", Value: []byte(meta.ID)},
		},
	})
}

// Close flushes and closes the writer.
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}
