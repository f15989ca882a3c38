package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix namespaces every topic published by this project.
const TopicPrefix = "storefront"

// SchemaVersion is stamped on every envelope.
const SchemaVersion = 1

// Topic builds "<prefix>.<aggregate>.<action>", e.g. storefront.cart.saved.
func Topic(aggregate, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, aggregate, action)
}

// Aggregate identifies the entity an event describes. Its ID is the message key.
type Aggregate struct {
	Type string
	ID   string
}

// Event is the envelope written as the value of every Kafka message.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope for topic. The event type is the topic name.
func NewEvent(topic string, agg Aggregate, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     topic,
		AggregateID:   agg.ID,
		AggregateType: agg.Type,
		Version:       SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
	}, nil
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a message value written by Producer.Publish.
func DecodeEvent(value []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if e.EventID == "" || e.EventType == "" {
		return nil, fmt.Errorf("decode event: missing event_id or event_type")
	}
	return &e, nil
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
