package metrics

import (
	"context"

	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all crop cycle events
func (e *EventMetricsCollector) Register(bus event.Bus) {
	event.SubscribeAll(bus, e.HandleEvent,
		event.CycleCreated,
		event.CycleUpdated,
		event.CycleDeleted,
		event.TasksAdded,
		event.TaskStatusChanged,
		event.ObservationAdded,
		event.StageUpdated,
		event.RiskRaised,
		event.RiskAcknowledged,
		event.RiskResolved,
	)
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch p := evt.Payload.(type) {
	case event.RiskPayloadV1:
		if evt.Type == event.RiskRaised {
			RiskAlertsRaised.WithLabelValues(p.RiskType, p.Severity).Inc()
		}
	case event.TaskPayloadV1:
		if evt.Type == event.TaskStatusChanged && p.ToStatus != "" {
			TaskTransitions.WithLabelValues(p.ToStatus).Inc()
		}
	}

	logger.FromContext(ctx).Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
