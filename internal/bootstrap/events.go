package bootstrap

import (
	"log/slog"

	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/metrics"
	"github.com/osse101/CropCycle_Go/internal/recommendation"
)

// InitializeEventSystem creates the in-process bus and subscribes the metrics collector
// and the recommendation cache invalidator to it
func InitializeEventSystem(cache recommendation.Cache, epochs *recommendation.Epochs) event.Bus {
	bus := event.NewMemoryBus()

	metrics.NewEventMetricsCollector().Register(bus)
	recommendation.NewInvalidator(cache, epochs).Register(bus)

	slog.Info(LogMsgEventSystemReady)
	return bus
}
