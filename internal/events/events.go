// Package events publishes catalog change notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ProductCreated   = "ProductCreated"
	ProductUpdated   = "ProductUpdated"
	ProductDeleted   = "ProductDeleted"
	ProductPurchased = "ProductPurchased"
)

// Envelope wraps every published event (version 1).
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

// NewEnvelope encodes payload and stamps a fresh event id.
func NewEnvelope(producer, eventType, traceID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		TraceID:      traceID,
		Payload:      b,
	}, nil
}

// Publisher hands events to a broker. Publish never fails the caller;
// implementations log delivery problems themselves.
type Publisher interface {
	Publish(ctx context.Context, key string, ev Envelope)
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, Envelope) {}
