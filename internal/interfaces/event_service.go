package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventUsageThresholdBreached fires once per level per day when the
	// daily estimated spend crosses a configured threshold. Payload is a
	// models.ThresholdAlert.
	EventUsageThresholdBreached EventType = "usage_threshold_breached"

	// EventAuditCompleted fires after every successful audit. Payload is the
	// *models.AuditResult.
	EventAuditCompleted EventType = "audit_completed"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the in-process pub/sub event bus. It is the side
// channel through which the surrounding application observes ledger threshold
// breaches and audit completions.
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
