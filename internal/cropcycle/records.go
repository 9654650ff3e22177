package cropcycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/CropCycle_Go/internal/concurrency"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/utils"
)

// AddObservation appends a field observation to a cycle
func (s *service) AddObservation(ctx context.Context, clientID, cycleID string, req NewObservationRequest) (*domain.CropObservation, error) {
	if req.ObservationType == "" || req.Description == "" {
		return nil, fmt.Errorf("%w: observation_type and description are required", domain.ErrValidation)
	}
	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}

	observed := s.now()
	if req.ObservedAt != nil {
		observed = req.ObservedAt.UTC()
	}
	obs := &domain.CropObservation{
		ID:              uuid.NewString(),
		CycleID:         cycleID,
		ObservationType: req.ObservationType,
		Description:     req.Description,
		ObservedAt:      observed,
		Photos:          nonNil(req.Photos),
		VoiceNote:       req.VoiceNote,
		Notes:           req.Notes,
	}
	if err := s.repo.CreateObservation(ctx, obs); err != nil {
		return nil, fmt.Errorf("failed to add observation: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgObservationAdded, "cycleID", cycleID, "type", obs.ObservationType)
	s.publish(ctx, event.NewCycleEvent(event.ObservationAdded, clientID, cycleID, ""))
	return obs, nil
}

// ListObservations returns a cycle's observations, most recent first
func (s *service) ListObservations(ctx context.Context, clientID, cycleID string) ([]domain.CropObservation, error) {
	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}
	return s.repo.ListObservations(ctx, cycleID)
}

// ListStages returns a cycle's growth stages in sequence order
func (s *service) ListStages(ctx context.Context, clientID, cycleID string) ([]domain.GrowthStage, error) {
	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}
	return s.repo.ListStages(ctx, cycleID)
}

// UpdateStageProgress records progress on a growth stage.
// Progress is clamped to [0,100]; the first positive progress stamps the actual start date.
func (s *service) UpdateStageProgress(ctx context.Context, clientID, cycleID, stageID string, update StageUpdate) (*domain.GrowthStage, error) {
	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}
	stage, err := s.repo.GetStage(ctx, cycleID, stageID)
	if err != nil {
		return nil, err
	}

	if update.ProgressPercentage != nil {
		stage.ProgressPercentage = utils.ClampFloat(*update.ProgressPercentage, 0, maxProgress)
		if stage.ProgressPercentage > 0 && stage.ActualStartDate == nil {
			started := s.now()
			stage.ActualStartDate = &started
		}
	}
	if update.Notes != nil {
		stage.Notes = *update.Notes
	}
	if len(update.Photos) > 0 {
		stage.Photos = utils.UnionStrings(stage.Photos, update.Photos)
	}

	if err := s.repo.UpdateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}

	logger.FromContext(ctx).Info(LogMsgStageProgressSaved, "cycleID", cycleID, "stage", stage.StageName, "progress", stage.ProgressPercentage)
	s.publish(ctx, event.NewCycleEvent(event.StageUpdated, clientID, cycleID, ""))
	return stage, nil
}
