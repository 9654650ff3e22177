package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/event"
)

func TestEventMetricsCollector_RiskRaised(t *testing.T) {
	bus := event.NewMemoryBus()
	NewEventMetricsCollector().Register(bus)

	before := testutil.ToFloat64(RiskAlertsRaised.WithLabelValues("soil", "high"))
	require.NoError(t, bus.Publish(context.Background(), event.NewRiskEvent(event.RiskRaised, "f", "c", "r", "soil", "high")))
	// Acknowledgements do not count as raised alerts
	require.NoError(t, bus.Publish(context.Background(), event.NewRiskEvent(event.RiskAcknowledged, "f", "c", "r", "soil", "high")))

	assert.Equal(t, before+1, testutil.ToFloat64(RiskAlertsRaised.WithLabelValues("soil", "high")))
}

func TestEventMetricsCollector_TaskTransition(t *testing.T) {
	bus := event.NewMemoryBus()
	NewEventMetricsCollector().Register(bus)

	before := testutil.ToFloat64(TaskTransitions.WithLabelValues("completed"))
	require.NoError(t, bus.Publish(context.Background(),
		event.NewTaskEvent(event.TaskStatusChanged, "f", "c", []string{"t"}, "in_progress", "completed")))

	assert.Equal(t, before+1, testutil.ToFloat64(TaskTransitions.WithLabelValues("completed")))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/crop-cycles/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/crop-cycles/{id}", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/crop-cycles/abc-123", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/crop-cycles/{id}", "418")))
}
