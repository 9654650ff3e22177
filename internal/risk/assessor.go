package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// Recorder persists assessed alerts; cropcycle.Service satisfies it
type Recorder interface {
	RecordRisks(ctx context.Context, cycle *domain.CropCycle, alerts []domain.RiskAlert) ([]domain.RiskAlert, error)
}

// Assessor evaluates a Model against a cycle's crop profile and upserts the resulting alerts
type Assessor struct {
	model    Model
	catalog  *crops.Catalog
	recorder Recorder
	now      func() time.Time
}

// NewAssessor creates an assessor. A nil model uses the ThresholdModel; a nil recorder makes
// Assess return alerts without persisting them.
func NewAssessor(model Model, catalog *crops.Catalog, recorder Recorder) *Assessor {
	if model == nil {
		model = NewThresholdModel()
	}
	return &Assessor{
		model:    model,
		catalog:  catalog,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate returns one finding per risk type without touching storage
func (a *Assessor) Evaluate(cycle domain.CropCycle, snaps domain.Snapshots) []Finding {
	profile := a.catalog.ProfileOrDefault(cycle.CropID)
	return Aggregate(a.model.Evaluate(cycle, profile, snaps, a.now()))
}

// Assess evaluates the cycle and upserts one open alert per risk type found
func (a *Assessor) Assess(ctx context.Context, cycle *domain.CropCycle, snaps domain.Snapshots) ([]domain.RiskAlert, error) {
	log := logger.FromContext(ctx)

	findings := a.Evaluate(*cycle, snaps)
	alerts := ToAlerts(cycle.ID, findings)
	log.Debug(LogMsgAssessed, "cycleID", cycle.ID, "findings", len(findings))

	if a.recorder == nil || len(alerts) == 0 {
		return alerts, nil
	}
	stored, err := a.recorder.RecordRisks(ctx, cycle, alerts)
	if err != nil {
		log.Error(LogMsgRecordFailed, "cycleID", cycle.ID, "error", err)
		return nil, fmt.Errorf("failed to record risks for cycle %s: %w", cycle.ID, err)
	}
	return stored, nil
}

// ToAlerts converts aggregated findings into unsaved alerts
func ToAlerts(cycleID string, findings []Finding) []domain.RiskAlert {
	out := make([]domain.RiskAlert, 0, len(findings))
	for _, f := range findings {
		out = append(out, domain.RiskAlert{
			CycleID:            cycleID,
			RiskType:           f.RiskType,
			Severity:           f.Severity,
			Description:        f.Description,
			MitigationStrategy: f.Mitigation,
		})
	}
	return out
}

// Level is the overall risk level of a set of findings; no findings means low
func Level(findings []Finding) domain.Severity {
	top, ok := Highest(findings)
	if !ok {
		return domain.SeverityLow
	}
	return top.Severity
}
