// Package cropcycle owns crop cycles and everything scoped to them: growth stages, tasks,
// observations and risk alerts. Every call is checked against the owning client.
package cropcycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/CropCycle_Go/internal/concurrency"
	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/metrics"
	"github.com/osse101/CropCycle_Go/internal/repository"
)

// Service defines the crop cycle store
type Service interface {
	CreateCycle(ctx context.Context, req CreateCycleRequest) (*domain.CropCycle, error)
	GetCycle(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error)
	// ListCycles returns every live cycle of a client, newest first; an unknown client has none
	ListCycles(ctx context.Context, clientID string) ([]domain.CropCycle, error)
	UpdateCycle(ctx context.Context, clientID, cycleID string, patch CyclePatch) (*domain.CropCycle, error)
	DeleteCycle(ctx context.Context, clientID, cycleID string) error
	Activate(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error)
	Complete(ctx context.Context, clientID, cycleID string, harvestedAt time.Time) (*domain.CropCycle, error)
	Fail(ctx context.Context, clientID, cycleID, reason string) (*domain.CropCycle, error)

	AddTask(ctx context.Context, clientID, cycleID string, req NewTaskRequest) (*domain.CropTask, error)
	ListTasks(ctx context.Context, clientID, cycleID string) ([]domain.CropTask, error)
	UpdateTaskStatus(ctx context.Context, clientID, cycleID, taskID string, change domain.TaskStatusChange) (*domain.CropTask, error)
	// MergeTasks inserts the candidates that have no non-terminal match by (normalized title, task type)
	// and returns only the inserted tasks
	MergeTasks(ctx context.Context, clientID, cycleID string, candidates []domain.CropTask) ([]domain.CropTask, error)

	AddObservation(ctx context.Context, clientID, cycleID string, req NewObservationRequest) (*domain.CropObservation, error)
	ListObservations(ctx context.Context, clientID, cycleID string) ([]domain.CropObservation, error)

	ListStages(ctx context.Context, clientID, cycleID string) ([]domain.GrowthStage, error)
	UpdateStageProgress(ctx context.Context, clientID, cycleID, stageID string, update StageUpdate) (*domain.GrowthStage, error)

	ListRisks(ctx context.Context, clientID, cycleID string, includeResolved bool) ([]domain.RiskAlert, error)
	AcknowledgeRisk(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error)
	ResolveRisk(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error)
	// RecordRisks upserts assessed alerts: an open alert of the same type is updated in place
	RecordRisks(ctx context.Context, cycle *domain.CropCycle, alerts []domain.RiskAlert) ([]domain.RiskAlert, error)
}

type service struct {
	repo    repository.CropCycle
	catalog *crops.Catalog
	bus     event.Bus
	locks   *concurrency.LockManager
	now     func() time.Time
}

// NewService creates a new crop cycle service
func NewService(repo repository.CropCycle, catalog *crops.Catalog, bus event.Bus) Service {
	if bus == nil {
		bus = event.NopBus{}
	}
	return &service{
		repo:    repo,
		catalog: catalog,
		bus:     bus,
		locks:   concurrency.NewLockManager(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateCycle validates a new cycle, seeds its growth stages from the crop catalog and stores it
func (s *service) CreateCycle(ctx context.Context, req CreateCycleRequest) (*domain.CropCycle, error) {
	log := logger.FromContext(ctx)

	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	profile := s.catalog.ProfileOrDefault(req.CropID)
	start := req.StartDate.UTC()

	planned := profile.PlannedHarvest(start)
	if req.PlannedHarvestDate != nil {
		planned = req.PlannedHarvestDate.UTC()
	}
	language := req.Language
	if language == "" {
		language = defaultLanguage
	}

	cycle := &domain.CropCycle{
		ID:                 uuid.NewString(),
		ClientID:           strings.TrimSpace(req.ClientID),
		CropID:             strings.ToLower(strings.TrimSpace(req.CropID)),
		Variety:            req.Variety,
		StartDate:          start,
		Season:             req.Season,
		Location:           req.Location,
		IrrigationType:     req.IrrigationType,
		AreaAcres:          req.AreaAcres,
		Language:           language,
		Status:             domain.CycleStatusPlanned,
		PlannedHarvestDate: planned,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := cycle.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCycle(ctx, cycle, seedStages(cycle, profile)); err != nil {
		return nil, fmt.Errorf("failed to create cycle: %w", err)
	}

	log.Info(LogMsgCycleCreated, "cycleID", cycle.ID, "clientID", cycle.ClientID, "crop", cycle.CropID)
	s.publish(ctx, event.NewCycleEvent(event.CycleCreated, cycle.ClientID, cycle.ID, string(cycle.Status)))
	return cycle, nil
}

func seedStages(cycle *domain.CropCycle, profile *crops.Profile) []domain.GrowthStage {
	stages := make([]domain.GrowthStage, 0, len(profile.Stages))
	offset := 0
	for i, tmpl := range profile.Stages {
		stages = append(stages, domain.GrowthStage{
			ID:                   uuid.NewString(),
			CycleID:              cycle.ID,
			Sequence:             i + 1,
			StageName:            tmpl.Name,
			ExpectedStartDate:    cycle.StartDate.AddDate(0, 0, offset),
			ExpectedDurationDays: tmpl.DurationDays,
			Photos:               []string{},
		})
		offset += tmpl.DurationDays
	}
	return stages
}

// GetCycle returns a cycle owned by clientID
func (s *service) GetCycle(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error) {
	return s.ownedCycle(ctx, clientID, cycleID)
}

// ListCycles returns the client's live cycles
func (s *service) ListCycles(ctx context.Context, clientID string) ([]domain.CropCycle, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	}
	cycles, err := s.repo.ListCyclesByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	return cycles, nil
}

// UpdateCycle applies a patch; a status in the patch must be a legal transition
func (s *service) UpdateCycle(ctx context.Context, clientID, cycleID string, patch CyclePatch) (*domain.CropCycle, error) {
	return s.mutateCycle(ctx, clientID, cycleID, func(c *domain.CropCycle) error {
		if patch.Variety != nil {
			c.Variety = *patch.Variety
		}
		if patch.Location != nil {
			c.Location = *patch.Location
		}
		if patch.IrrigationType != nil {
			c.IrrigationType = *patch.IrrigationType
		}
		if patch.AreaAcres != nil {
			c.AreaAcres = *patch.AreaAcres
		}
		if patch.Language != nil {
			c.Language = *patch.Language
		}
		if patch.PlannedHarvestDate != nil {
			c.PlannedHarvestDate = patch.PlannedHarvestDate.UTC()
		}
		if patch.Status == nil || *patch.Status == c.Status {
			if patch.ActualHarvestDate != nil || patch.FailureReason != nil {
				return fmt.Errorf("%w: harvest date and failure reason are set by completing or failing the cycle", domain.ErrValidation)
			}
			return nil
		}

		var harvested *time.Time
		if patch.ActualHarvestDate != nil {
			t := patch.ActualHarvestDate.UTC()
			harvested = &t
		}
		reason := ""
		if patch.FailureReason != nil {
			reason = *patch.FailureReason
		}
		return transitionCycle(c, *patch.Status, harvested, reason)
	})
}

// Activate moves a planned cycle to active
func (s *service) Activate(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error) {
	return s.mutateCycle(ctx, clientID, cycleID, func(c *domain.CropCycle) error {
		return transitionCycle(c, domain.CycleStatusActive, nil, "")
	})
}

// Complete closes an active cycle with its actual harvest date
func (s *service) Complete(ctx context.Context, clientID, cycleID string, harvestedAt time.Time) (*domain.CropCycle, error) {
	if harvestedAt.IsZero() {
		harvestedAt = s.now()
	}
	h := harvestedAt.UTC()
	return s.mutateCycle(ctx, clientID, cycleID, func(c *domain.CropCycle) error {
		return transitionCycle(c, domain.CycleStatusCompleted, &h, "")
	})
}

// Fail closes a cycle with a failure reason
func (s *service) Fail(ctx context.Context, clientID, cycleID, reason string) (*domain.CropCycle, error) {
	return s.mutateCycle(ctx, clientID, cycleID, func(c *domain.CropCycle) error {
		return transitionCycle(c, domain.CycleStatusFailed, nil, reason)
	})
}

// transitionCycle applies a status change and its required fields
func transitionCycle(c *domain.CropCycle, to domain.CycleStatus, harvested *time.Time, reason string) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}
	if !domain.CanTransitionCycle(c.Status, to) {
		return fmt.Errorf("%w: cycle %s -> %s", domain.ErrInvalidTransition, c.Status, to)
	}
	switch to {
	case domain.CycleStatusCompleted:
		if harvested == nil {
			return fmt.Errorf("%w: actual_harvest_date is required to complete a cycle", domain.ErrValidation)
		}
		if harvested.Before(c.StartDate) {
			return fmt.Errorf("%w: actual_harvest_date must not be before start_date", domain.ErrValidation)
		}
		c.ActualHarvestDate = harvested
	case domain.CycleStatusFailed:
		if strings.TrimSpace(reason) == "" {
			return fmt.Errorf("%w: failure_reason is required to fail a cycle", domain.ErrValidation)
		}
		c.FailureReason = strings.TrimSpace(reason)
		c.ActualHarvestDate = harvested
	}
	c.Status = to
	return nil
}

// DeleteCycle soft-deletes a cycle; its children stay for audit
func (s *service) DeleteCycle(ctx context.Context, clientID, cycleID string) error {
	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return err
	}
	if err := s.repo.SoftDeleteCycle(ctx, cycleID, s.now()); err != nil {
		return fmt.Errorf("failed to delete cycle: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgCycleDeleted, "cycleID", cycleID, "clientID", clientID)
	s.publish(ctx, event.NewCycleEvent(event.CycleDeleted, clientID, cycleID, ""))
	return nil
}

// mutateCycle runs a read-modify-write of one cycle under its lock, retrying once on a version conflict
func (s *service) mutateCycle(ctx context.Context, clientID, cycleID string, apply func(c *domain.CropCycle) error) (*domain.CropCycle, error) {
	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	var updated *domain.CropCycle
	err := s.retryOnConflict(ctx, func() error {
		c, err := s.ownedCycle(ctx, clientID, cycleID)
		if err != nil {
			return err
		}
		if err := apply(c); err != nil {
			return err
		}
		c.UpdatedAt = s.now()
		if err := c.Validate(); err != nil {
			return err
		}
		if err := s.repo.UpdateCycle(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgCycleUpdated, "cycleID", cycleID, "status", updated.Status, "version", updated.Version)
	s.publish(ctx, event.NewCycleEvent(event.CycleUpdated, updated.ClientID, updated.ID, string(updated.Status)))
	return updated, nil
}

// ownedCycle loads a cycle and checks that clientID owns it
func (s *service) ownedCycle(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	}
	c, err := s.repo.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if c.ClientID != clientID {
		return nil, fmt.Errorf("%w: cycle %s belongs to another client", domain.ErrForbidden, cycleID)
	}
	return c, nil
}

// retryOnConflict runs fn and, if it lost a version race, runs it exactly once more
func (s *service) retryOnConflict(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, domain.ErrConflictingUpdate) {
		return err
	}
	metrics.ConflictRetries.Inc()
	logger.FromContext(ctx).Warn(LogMsgRetryingConflict, "error", err)
	return fn()
}

func (s *service) publish(ctx context.Context, evt event.Event) {
	if err := s.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}
