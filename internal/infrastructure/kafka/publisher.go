package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/altlend/decisioning/internal/domain/event"
	pkgkafka "github.com/altlend/decisioning/pkg/kafka"
)

// EventPublisher implements port.EventPublisher by writing events to Kafka.
// Event types route to topics so decision consumers and feature-quality
// consumers subscribe independently.
type EventPublisher struct {
	producer     *pkgkafka.Producer
	topicByType  map[string]string
	defaultTopic string
	logger       *slog.Logger
}

// NewEventPublisher creates a publisher over the given producer. Events whose
// type has no explicit topic mapping go to defaultTopic.
func NewEventPublisher(
	producer *pkgkafka.Producer,
	topicByType map[string]string,
	defaultTopic string,
	logger *slog.Logger,
) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		topicByType:  topicByType,
		defaultTopic: defaultTopic,
		logger:       logger,
	}
}

// Publish serialises and sends domain events.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	byTopic := make(map[string][]pkgkafka.Message)
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		topic := p.defaultTopic
		if t, ok := p.topicByType[evt.EventType()]; ok {
			topic = t
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", topic,
			"payload_size", len(payload),
		)

		byTopic[topic] = append(byTopic[topic], pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID().String(),
			},
		})
	}

	for topic, messages := range byTopic {
		if err := p.producer.Publish(ctx, topic, messages...); err != nil {
			return fmt.Errorf("publish events to topic %s: %w", topic, err)
		}
	}
	return nil
}
