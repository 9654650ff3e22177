package cropcycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/CropCycle_Go/internal/concurrency"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// ListRisks returns a cycle's alerts, most recently detected first
func (s *service) ListRisks(ctx context.Context, clientID, cycleID string, includeResolved bool) ([]domain.RiskAlert, error) {
	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}
	return s.repo.ListRisks(ctx, cycleID, includeResolved)
}

// AcknowledgeRisk marks an alert as seen; acknowledging twice keeps the first timestamp
func (s *service) AcknowledgeRisk(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error) {
	return s.mutateRisk(ctx, clientID, cycleID, riskID, event.RiskAcknowledged, func(a *domain.RiskAlert) bool {
		if a.AcknowledgedAt != nil {
			return false
		}
		now := s.now()
		a.AcknowledgedAt = &now
		return true
	})
}

// ResolveRisk closes an alert; a later assessment of the same type opens a new one
func (s *service) ResolveRisk(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error) {
	return s.mutateRisk(ctx, clientID, cycleID, riskID, event.RiskResolved, func(a *domain.RiskAlert) bool {
		if a.ResolvedAt != nil {
			return false
		}
		now := s.now()
		a.ResolvedAt = &now
		return true
	})
}

func (s *service) mutateRisk(ctx context.Context, clientID, cycleID, riskID string, evtType event.Type, apply func(a *domain.RiskAlert) bool) (*domain.RiskAlert, error) {
	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}
	alert, err := s.repo.GetRisk(ctx, cycleID, riskID)
	if err != nil {
		return nil, err
	}
	if !apply(alert) {
		return alert, nil
	}
	alert.UpdatedAt = s.now()
	if err := s.repo.UpdateRisk(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update risk alert: %w", err)
	}

	s.publish(ctx, event.NewRiskEvent(evtType, clientID, cycleID, alert.ID, string(alert.RiskType), string(alert.Severity)))
	return alert, nil
}

// RecordRisks upserts assessed alerts for a cycle.
// An open alert of the same type keeps its id, detection time and acknowledgement; only its
// severity, description and mitigation change. Nothing is ever acknowledged or resolved here.
func (s *service) RecordRisks(ctx context.Context, cycle *domain.CropCycle, alerts []domain.RiskAlert) ([]domain.RiskAlert, error) {
	if len(alerts) == 0 {
		return []domain.RiskAlert{}, nil
	}

	unlock := s.locks.Lock(concurrency.CycleKey(cycle.ID))
	defer unlock()

	out := make([]domain.RiskAlert, 0, len(alerts))
	for _, assessed := range alerts {
		var stored *domain.RiskAlert
		var raised bool
		err := s.retryOnConflict(ctx, func() error {
			var err error
			stored, raised, err = s.upsertRisk(ctx, cycle.ID, assessed)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to record %s risk: %w", assessed.RiskType, err)
		}
		out = append(out, *stored)

		if raised {
			logger.FromContext(ctx).Info(LogMsgRiskRecorded, "cycleID", cycle.ID, "type", stored.RiskType, "severity", stored.Severity)
			s.publish(ctx, event.NewRiskEvent(event.RiskRaised, cycle.ClientID, cycle.ID, stored.ID, string(stored.RiskType), string(stored.Severity)))
		}
	}
	return out, nil
}

// upsertRisk reports raised=true when the alert is new or its severity went up
func (s *service) upsertRisk(ctx context.Context, cycleID string, assessed domain.RiskAlert) (*domain.RiskAlert, bool, error) {
	now := s.now()

	open, err := s.repo.FindOpenRisk(ctx, cycleID, assessed.RiskType)
	switch {
	case errors.Is(err, domain.ErrRiskNotFound):
		created := assessed
		created.ID = uuid.NewString()
		created.CycleID = cycleID
		created.DetectedAt = now
		created.UpdatedAt = now
		created.AcknowledgedAt = nil
		created.ResolvedAt = nil
		if err := s.repo.CreateRisk(ctx, &created); err != nil {
			return nil, false, err
		}
		return &created, true, nil
	case err != nil:
		return nil, false, err
	}

	escalated := assessed.Severity.Rank() > open.Severity.Rank()
	open.Severity = assessed.Severity
	open.Description = assessed.Description
	open.MitigationStrategy = assessed.MitigationStrategy
	open.UpdatedAt = now
	if err := s.repo.UpdateRisk(ctx, open); err != nil {
		return nil, false, err
	}
	return open, escalated, nil
}
