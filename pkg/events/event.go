package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all domain events put on the bus.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOWNSELL_ACCEPTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation the constructors below build on.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeDownsellAccepted      = "DOWNSELL_ACCEPTED"
	TypeCancellationCompleted = "CANCELLATION_COMPLETED"
	TypeInsightDetected       = "INSIGHT_DETECTED"
)

// NewDownsellAccepted records a user keeping their subscription at the
// discounted price.
func NewDownsellAccepted(userID uuid.UUID, subscriptionID uuid.UUID, variant string, chargedCents int, transactionID string) Event {
	return BaseEvent{
		Type: TypeDownsellAccepted,
		Data: map[string]interface{}{
			"user_id":         userID.String(),
			"subscription_id": subscriptionID.String(),
			"variant":         variant,
			"charged_cents":   chargedCents,
			"transaction_id":  transactionID,
		},
		OccurredAt: time.Now(),
	}
}

// NewCancellationCompleted records a user finishing the flow by cancelling.
func NewCancellationCompleted(userID uuid.UUID, subscriptionID uuid.UUID, variant string, reason string) Event {
	return BaseEvent{
		Type: TypeCancellationCompleted,
		Data: map[string]interface{}{
			"user_id":         userID.String(),
			"subscription_id": subscriptionID.String(),
			"variant":         variant,
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewInsightDetected records a notable condition found by a metrics run.
func NewInsightDetected(kind string, message string) Event {
	return BaseEvent{
		Type: TypeInsightDetected,
		Data: map[string]interface{}{
			"kind":    kind,
			"message": message,
		},
		OccurredAt: time.Now(),
	}
}
