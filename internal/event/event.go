package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version  string                 `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type                   `json:"type"`
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Crop cycle event types
const (
	CycleCreated      Type = "cycle.created"
	CycleUpdated      Type = "cycle.updated"
	CycleDeleted      Type = "cycle.deleted"
	TaskStatusChanged Type = "task.status_changed"
	TasksAdded        Type = "task.added"
	ObservationAdded  Type = "observation.added"
	StageUpdated      Type = "stage.updated"
	RiskRaised        Type = "risk.raised"
	RiskAcknowledged  Type = "risk.acknowledged"
	RiskResolved      Type = "risk.resolved"
)

// CyclePayloadV1 is the typed payload for cycle, stage and observation events
type CyclePayloadV1 struct {
	ClientID  string `json:"client_id"`
	CycleID   string `json:"cycle_id"`
	Status    string `json:"status,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// TaskPayloadV1 is the typed payload for task events
type TaskPayloadV1 struct {
	ClientID   string   `json:"client_id"`
	CycleID    string   `json:"cycle_id"`
	TaskIDs    []string `json:"task_ids"`
	FromStatus string   `json:"from_status,omitempty"`
	ToStatus   string   `json:"to_status,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

// RiskPayloadV1 is the typed payload for risk alert events
type RiskPayloadV1 struct {
	ClientID  string `json:"client_id"`
	CycleID   string `json:"cycle_id"`
	RiskID    string `json:"risk_id"`
	RiskType  string `json:"risk_type"`
	Severity  string `json:"severity"`
	Timestamp int64  `json:"timestamp"`
}

// NewCycleEvent creates a cycle-scoped event
func NewCycleEvent(eventType Type, clientID, cycleID, status string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: CyclePayloadV1{
			ClientID:  clientID,
			CycleID:   cycleID,
			Status:    status,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewTaskEvent creates a task event; from and to are empty for insertions
func NewTaskEvent(eventType Type, clientID, cycleID string, taskIDs []string, from, to string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: TaskPayloadV1{
			ClientID:   clientID,
			CycleID:    cycleID,
			TaskIDs:    taskIDs,
			FromStatus: from,
			ToStatus:   to,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewRiskEvent creates a risk alert event
func NewRiskEvent(eventType Type, clientID, cycleID, riskID, riskType, severity string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: RiskPayloadV1{
			ClientID:  clientID,
			CycleID:   cycleID,
			RiskID:    riskID,
			RiskType:  riskType,
			Severity:  severity,
			Timestamp: time.Now().Unix(),
		},
	}
}

// ClientIDOf returns the owning client of a crop cycle event, or "" for other payloads
func ClientIDOf(e Event) string {
	switch p := e.Payload.(type) {
	case CyclePayloadV1:
		return p.ClientID
	case TaskPayloadV1:
		return p.ClientID
	case RiskPayloadV1:
		return p.ClientID
	}
	if p, err := DecodePayload[CyclePayloadV1](e.Payload); err == nil {
		return p.ClientID
	}
	return ""
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers.
// Handlers run synchronously on the caller's goroutine; every handler runs even if an earlier one fails.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(ErrMsgHandlersFailedFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll subscribes one handler to several event types
func SubscribeAll(bus Bus, handler Handler, types ...Type) {
	for _, t := range types {
		bus.Subscribe(t, handler)
	}
}

// NopBus discards every event
type NopBus struct{}

// Publish does nothing
func (NopBus) Publish(ctx context.Context, event Event) error { return nil }

// Subscribe does nothing
func (NopBus) Subscribe(eventType Type, handler Handler) {}
