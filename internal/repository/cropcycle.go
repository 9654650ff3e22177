package repository

import (
	"context"
	"time"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

// CropCycle handles persistence of crop cycles and everything they own.
// Update methods perform an optimistic version check and return domain.ErrConflictingUpdate
// when the stored version no longer matches; on success the passed entity's Version is bumped.
type CropCycle interface {
	// CreateCycle inserts a cycle together with its seeded growth stages
	CreateCycle(ctx context.Context, cycle *domain.CropCycle, stages []domain.GrowthStage) error
	// GetCycle returns a cycle that has not been soft-deleted
	GetCycle(ctx context.Context, id string) (*domain.CropCycle, error)
	ListCyclesByClient(ctx context.Context, clientID string) ([]domain.CropCycle, error)
	UpdateCycle(ctx context.Context, cycle *domain.CropCycle) error
	SoftDeleteCycle(ctx context.Context, id string, deletedAt time.Time) error

	// Tasks
	CreateTasks(ctx context.Context, tasks []domain.CropTask) error
	GetTask(ctx context.Context, cycleID, taskID string) (*domain.CropTask, error)
	ListTasks(ctx context.Context, cycleID string) ([]domain.CropTask, error)
	UpdateTask(ctx context.Context, task *domain.CropTask) error

	// Growth stages
	ListStages(ctx context.Context, cycleID string) ([]domain.GrowthStage, error)
	GetStage(ctx context.Context, cycleID, stageID string) (*domain.GrowthStage, error)
	UpdateStage(ctx context.Context, stage *domain.GrowthStage) error

	// Observations are append-only
	CreateObservation(ctx context.Context, obs *domain.CropObservation) error
	ListObservations(ctx context.Context, cycleID string) ([]domain.CropObservation, error)

	// Risk alerts are never deleted
	CreateRisk(ctx context.Context, risk *domain.RiskAlert) error
	GetRisk(ctx context.Context, cycleID, riskID string) (*domain.RiskAlert, error)
	// FindOpenRisk returns the unresolved alert of riskType for a cycle, or domain.ErrRiskNotFound
	FindOpenRisk(ctx context.Context, cycleID string, riskType domain.RiskType) (*domain.RiskAlert, error)
	ListRisks(ctx context.Context, cycleID string, includeResolved bool) ([]domain.RiskAlert, error)
	UpdateRisk(ctx context.Context, risk *domain.RiskAlert) error
}
