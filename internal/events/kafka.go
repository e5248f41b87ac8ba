package events

import (
	"context"
	"encoding/json"
	"socialnet/internal/logger"
	"socialnet/internal/services"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes domain events to one topic, keyed by entity id.
type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher takes a comma separated broker list. Writes are async;
// delivery failures are logged.
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error.Printf("kafka: %d event(s) not delivered: %v", len(messages), err)
			}
		},
	}
	return &KafkaPublisher{w: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e services.Event) {
	value, err := json.Marshal(e)
	if err != nil {
		logger.Error.Printf("kafka: encode %s: %v", e.Type, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		logger.Error.Printf("kafka: publish %s: %v", e.Type, err)
	}
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

var _ services.EventPublisher = (*KafkaPublisher)(nil)
