package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordRisks(ctx context.Context, cycle *domain.CropCycle, alerts []domain.RiskAlert) ([]domain.RiskAlert, error) {
	args := m.Called(ctx, cycle, alerts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RiskAlert), args.Error(1)
}

func newTestAssessor(t *testing.T, model Model, recorder Recorder) *Assessor {
	t.Helper()
	catalog, err := crops.Default()
	require.NoError(t, err)
	a := NewAssessor(model, catalog, recorder)
	a.now = func() time.Time { return testNow }
	return a
}

func TestAggregate_MaxSeverityPerType(t *testing.T) {
	findings := []Finding{
		{Rule: "a", RiskType: domain.RiskTypeWeather, Severity: domain.SeverityMedium},
		{Rule: "b", RiskType: domain.RiskTypeWeather, Severity: domain.SeverityCritical},
		{Rule: "c", RiskType: domain.RiskTypeWeather, Severity: domain.SeverityHigh},
		{Rule: "d", RiskType: domain.RiskTypeSoil, Severity: domain.SeverityLow},
	}

	got := Aggregate(findings)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Rule)
	assert.Equal(t, "d", got[1].Rule)
}

func TestAggregate_TieGoesToMoreSpecificRule(t *testing.T) {
	findings := []Finding{
		{Rule: "rain", RiskType: domain.RiskTypeWeather, Severity: domain.SeverityHigh},
		{Rule: "frost", RiskType: domain.RiskTypeWeather, Severity: domain.SeverityHigh, Specificity: 5},
	}
	got := Aggregate(findings)
	require.Len(t, got, 1)
	assert.Equal(t, "frost", got[0].Rule)

	// Order of input does not matter
	got = Aggregate([]Finding{findings[1], findings[0]})
	assert.Equal(t, "frost", got[0].Rule)
}

func TestAggregate_OrdersAcrossTypesBySpecificity(t *testing.T) {
	findings := []Finding{
		{Rule: "rain", RiskType: domain.RiskTypeWeather, Severity: domain.SeverityHigh},
		{Rule: "blast", RiskType: domain.RiskTypeDisease, Severity: domain.SeverityHigh},
		{Rule: "ph", RiskType: domain.RiskTypeSoil, Severity: domain.SeverityHigh},
		{Rule: "junk", RiskType: "locusts", Severity: domain.SeverityCritical},
	}
	got := Aggregate(findings)
	require.Len(t, got, 3, "unknown risk types are dropped")
	assert.Equal(t, []string{"blast", "ph", "rain"}, []string{got[0].Rule, got[1].Rule, got[2].Rule})

	top, ok := Highest(got)
	require.True(t, ok)
	assert.Equal(t, "blast", top.Rule)
	assert.Equal(t, domain.SeverityHigh, Level(got))
	assert.Equal(t, domain.SeverityLow, Level(nil))
}

func TestAssessor_RiceAcidicSoilRaisesHighSoilAlert(t *testing.T) {
	recorder := new(MockRecorder)
	a := newTestAssessor(t, nil, recorder)

	cycle := riceCycle(domain.IrrigationCanal)
	snaps := domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 5.2, OrganicCarbonPct: 0.6}}

	recorder.On("RecordRisks", mock.Anything, &cycle, mock.MatchedBy(func(alerts []domain.RiskAlert) bool {
		return len(alerts) == 1 && alerts[0].RiskType == domain.RiskTypeSoil && alerts[0].Severity == domain.SeverityHigh
	})).Return([]domain.RiskAlert{{
		ID: "r1", CycleID: "c1", RiskType: domain.RiskTypeSoil, Severity: domain.SeverityHigh, MitigationStrategy: "Apply lime",
	}}, nil)

	alerts, err := a.Assess(context.Background(), &cycle, snaps)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "r1", alerts[0].ID)
	assert.Equal(t, "c1", alerts[0].CycleID)
	assert.NotEmpty(t, alerts[0].MitigationStrategy)
	recorder.AssertExpectations(t)
}

func TestAssessor_NothingFoundSkipsRecorder(t *testing.T) {
	recorder := new(MockRecorder)
	a := newTestAssessor(t, nil, recorder)

	cycle := riceCycle(domain.IrrigationCanal)
	alerts, err := a.Assess(context.Background(), &cycle, domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 6.5}})
	require.NoError(t, err)
	assert.Empty(t, alerts)
	recorder.AssertNotCalled(t, "RecordRisks", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssessor_RecorderError(t *testing.T) {
	recorder := new(MockRecorder)
	a := newTestAssessor(t, nil, recorder)
	recorder.On("RecordRisks", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrConflictingUpdate)

	cycle := riceCycle(domain.IrrigationCanal)
	_, err := a.Assess(context.Background(), &cycle, domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 4.0}})
	assert.ErrorIs(t, err, domain.ErrConflictingUpdate)
}

func TestAssessor_PluggableModel(t *testing.T) {
	var seenProfile string
	model := ModelFunc(func(cycle domain.CropCycle, profile *crops.Profile, _ domain.Snapshots, now time.Time) []Finding {
		seenProfile = profile.ID
		assert.Equal(t, testNow, now)
		return []Finding{
			{RiskType: domain.RiskTypePest, Severity: domain.SeverityMedium, Description: "aphids"},
			{RiskType: domain.RiskTypePest, Severity: domain.SeverityCritical, Description: "locust swarm"},
		}
	})
	a := newTestAssessor(t, model, nil)

	cycle := riceCycle(domain.IrrigationCanal)
	cycle.CropID = "dragonfruit"
	alerts, err := a.Assess(context.Background(), &cycle, domain.Snapshots{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "locust swarm", alerts[0].Description)
	assert.Equal(t, crops.DefaultProfileID, seenProfile, "unknown crops use the default profile")
}

func TestAssessor_UpsertsThroughStore(t *testing.T) {
	store := &fakeStore{}
	a := newTestAssessor(t, nil, store)
	cycle := riceCycle(domain.IrrigationCanal)

	_, err := a.Assess(context.Background(), &cycle, domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 5.4}})
	require.NoError(t, err)
	_, err = a.Assess(context.Background(), &cycle, domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 4.0}})
	require.NoError(t, err)

	require.Len(t, store.open, 1, "same risk type updates the open alert")
	assert.Equal(t, domain.SeverityCritical, store.open[domain.RiskTypeSoil].Severity)
}

// fakeStore keeps one open alert per type, the way the crop-cycle store does
type fakeStore struct {
	open map[domain.RiskType]domain.RiskAlert
}

func (f *fakeStore) RecordRisks(_ context.Context, _ *domain.CropCycle, alerts []domain.RiskAlert) ([]domain.RiskAlert, error) {
	if f.open == nil {
		f.open = make(map[domain.RiskType]domain.RiskAlert)
	}
	for _, a := range alerts {
		f.open[a.RiskType] = a
	}
	return alerts, nil
}
