package events

import (
	"context"

	"github.com/track-asia/service-navigation/internal/domain/navigation"
)

const eventSource = "service-navigation"

// EventPublisher writes events to the navigation events topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event CloudEvent) error
}

// KafkaSink publishes navigation events as cloud events keyed by session id.
type KafkaSink struct {
	publisher EventPublisher
	topic     string
}

// NewKafkaSink creates a KafkaSink. An empty topic selects TopicNavigationEvents.
func NewKafkaSink(publisher EventPublisher, topic string) *KafkaSink {
	if topic == "" {
		topic = TopicNavigationEvents
	}
	return &KafkaSink{publisher: publisher, topic: topic}
}

// Deliver implements Sink.
func (s *KafkaSink) Deliver(ctx context.Context, event navigation.Event) error {
	ce, err := NewCloudEvent(eventSource, EventTypeName(event.Type), event)
	if err != nil {
		return err
	}
	ce.Subject = event.SessionID.String()
	return s.publisher.PublishEvent(ctx, s.topic, event.SessionID.String(), ce)
}

// EventTypeName is the cloud event type for a navigation event type.
func EventTypeName(t navigation.EventType) string {
	return "navigation." + string(t)
}
