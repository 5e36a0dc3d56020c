package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix namespaces every topic the backend publishes to.
const TopicPrefix = "fashion"

// Topic returns the topic for an entity action, e.g. "fashion.material.created".
func Topic(entity, action string) string {
	return TopicPrefix + "." + entity + "." + action
}

// ErrMalformedEvent is returned by DecodeEvent for payloads that are not a
// usable envelope. Such messages are dead-lettered without retries.
var ErrMalformedEvent = errors.New("malformed event")

// envelopeVersion is bumped on incompatible envelope changes.
const envelopeVersion = 1

// Event is the JSON envelope carried by every message. Type equals the topic
// the event was published to.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh ID.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Version:       envelopeVersion,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Source:        source,
		OccurredAt:    time.Now().UTC(),
		Data:          raw,
	}, nil
}

// WithCorrelationID sets the request correlation ID and returns e.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// DecodeEvent parses an envelope. Payloads missing an ID or type are rejected.
func DecodeEvent(b []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if e.ID == "" || e.Type == "" {
		return nil, fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}
	return &e, nil
}

// DecodeData unmarshals the payload into v.
func (e *Event) DecodeData(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
