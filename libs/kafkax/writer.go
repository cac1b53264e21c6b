package kafkax

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

type WriterConfig struct {
	Brokers      string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// NewWriter returns a writer that hashes on the message key so every event for one
// aggregate lands on the same partition. Returns nil when no brokers are configured.
func NewWriter(cfg WriterConfig) *kafka.Writer {
	brokers := SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

// NewMessage builds a keyed message with event headers and the caller's trace context.
func NewMessage(ctx context.Context, eventID, eventType, key string, value []byte) kafka.Message {
	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(eventID)},
		{Key: HeaderEventType, Value: []byte(eventType)},
	}
	return kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: InjectTraceHeaders(ctx, headers),
	}
}
