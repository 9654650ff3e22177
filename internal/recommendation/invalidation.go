package recommendation

import (
	"context"

	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// invalidatingEvents are user-driven changes after which cached advice may be wrong.
// risk.raised is absent: it is emitted by generation itself.
var invalidatingEvents = []event.Type{
	event.CycleCreated,
	event.CycleUpdated,
	event.CycleDeleted,
	event.TaskStatusChanged,
	event.TasksAdded,
	event.ObservationAdded,
	event.StageUpdated,
	event.RiskAcknowledged,
	event.RiskResolved,
}

// Invalidator drops a client's cached recommendations when their crop cycles change
type Invalidator struct {
	cache  Cache
	epochs *Epochs
}

// NewInvalidator creates an invalidator for cache. epochs must be the tracker given to the
// engine so that generations running during a change do not repopulate the cache.
func NewInvalidator(cache Cache, epochs *Epochs) *Invalidator {
	return &Invalidator{cache: cache, epochs: epochs}
}

// Register subscribes the invalidator to the bus
func (i *Invalidator) Register(bus event.Bus) {
	event.SubscribeAll(bus, i.HandleEvent, invalidatingEvents...)
}

// HandleEvent invalidates the entry of the client the event belongs to
func (i *Invalidator) HandleEvent(ctx context.Context, evt event.Event) error {
	clientID := event.ClientIDOf(evt)
	if clientID == "" {
		return nil
	}
	i.epochs.Bump(clientID)
	if err := i.cache.Invalidate(ctx, clientID); err != nil {
		logger.FromContext(ctx).Warn(LogMsgInvalidateFailed, "clientID", clientID, "event", evt.Type, "error", err)
		return err
	}
	logger.FromContext(ctx).Debug(LogMsgCacheInvalidated, "clientID", clientID, "event", evt.Type)
	return nil
}
