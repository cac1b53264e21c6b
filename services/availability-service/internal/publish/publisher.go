package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/md-rashed-zaman/freeslots/libs/kafkax"
	"github.com/md-rashed-zaman/freeslots/services/availability-service/internal/availability"
	"github.com/segmentio/kafka-go"
)

const EventTypeSlotsGenerated = "availability.slots.generated.v1"

// SlotsGenerated is emitted after a successful availability computation.
type SlotsGenerated struct {
	UserID      string              `json:"user_id"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Timezone    string              `json:"timezone"`
	Slots       []availability.View `json:"slots"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type Publisher interface {
	PublishSlots(ctx context.Context, evt SlotsGenerated) error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	w      MessageWriter
	logger *slog.Logger
}

func NewKafkaPublisher(w MessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{w: w, logger: logger}
}

// PublishSlots writes one message keyed by user id so a user's events stay ordered.
func (p *KafkaPublisher) PublishSlots(ctx context.Context, evt SlotsGenerated) error {
	if evt.Slots == nil {
		evt.Slots = []availability.View{}
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", EventTypeSlotsGenerated, err)
	}
	eventID := uuid.NewString()
	msg := kafkax.NewMessage(ctx, eventID, EventTypeSlotsGenerated, evt.UserID, payload)
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", EventTypeSlotsGenerated, err)
	}
	p.logger.Debug("slots published", "event_id", eventID, "user_id", evt.UserID, "slots", len(evt.Slots))
	return nil
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) PublishSlots(context.Context, SlotsGenerated) error { return nil }
