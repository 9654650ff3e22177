package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/CropCycle_Go/internal/cropcycle"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

// MockDBPool mocks the database.Pool interface
type MockDBPool struct {
	mock.Mock
}

func (m *MockDBPool) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDBPool) Close() {
	m.Called()
}

// MockCropCycleService mocks cropcycle.Service
type MockCropCycleService struct {
	mock.Mock
}

var _ cropcycle.Service = (*MockCropCycleService)(nil)

func cycleOrNil(v interface{}) *domain.CropCycle {
	if v == nil {
		return nil
	}
	return v.(*domain.CropCycle)
}

func (m *MockCropCycleService) CreateCycle(ctx context.Context, req cropcycle.CreateCycleRequest) (*domain.CropCycle, error) {
	args := m.Called(ctx, req)
	return cycleOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCropCycleService) GetCycle(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error) {
	args := m.Called(ctx, clientID, cycleID)
	return cycleOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCropCycleService) ListCycles(ctx context.Context, clientID string) ([]domain.CropCycle, error) {
	args := m.Called(ctx, clientID)
	cycles, _ := args.Get(0).([]domain.CropCycle)
	return cycles, args.Error(1)
}

func (m *MockCropCycleService) UpdateCycle(ctx context.Context, clientID, cycleID string, patch cropcycle.CyclePatch) (*domain.CropCycle, error) {
	args := m.Called(ctx, clientID, cycleID, patch)
	return cycleOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCropCycleService) DeleteCycle(ctx context.Context, clientID, cycleID string) error {
	return m.Called(ctx, clientID, cycleID).Error(0)
}

func (m *MockCropCycleService) Activate(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error) {
	args := m.Called(ctx, clientID, cycleID)
	return cycleOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCropCycleService) Complete(ctx context.Context, clientID, cycleID string, harvestedAt time.Time) (*domain.CropCycle, error) {
	args := m.Called(ctx, clientID, cycleID, harvestedAt)
	return cycleOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCropCycleService) Fail(ctx context.Context, clientID, cycleID, reason string) (*domain.CropCycle, error) {
	args := m.Called(ctx, clientID, cycleID, reason)
	return cycleOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCropCycleService) AddTask(ctx context.Context, clientID, cycleID string, req cropcycle.NewTaskRequest) (*domain.CropTask, error) {
	args := m.Called(ctx, clientID, cycleID, req)
	task, _ := args.Get(0).(*domain.CropTask)
	return task, args.Error(1)
}

func (m *MockCropCycleService) ListTasks(ctx context.Context, clientID, cycleID string) ([]domain.CropTask, error) {
	args := m.Called(ctx, clientID, cycleID)
	tasks, _ := args.Get(0).([]domain.CropTask)
	return tasks, args.Error(1)
}

func (m *MockCropCycleService) UpdateTaskStatus(ctx context.Context, clientID, cycleID, taskID string, change domain.TaskStatusChange) (*domain.CropTask, error) {
	args := m.Called(ctx, clientID, cycleID, taskID, change)
	task, _ := args.Get(0).(*domain.CropTask)
	return task, args.Error(1)
}

func (m *MockCropCycleService) MergeTasks(ctx context.Context, clientID, cycleID string, candidates []domain.CropTask) ([]domain.CropTask, error) {
	args := m.Called(ctx, clientID, cycleID, candidates)
	tasks, _ := args.Get(0).([]domain.CropTask)
	return tasks, args.Error(1)
}

func (m *MockCropCycleService) AddObservation(ctx context.Context, clientID, cycleID string, req cropcycle.NewObservationRequest) (*domain.CropObservation, error) {
	args := m.Called(ctx, clientID, cycleID, req)
	obs, _ := args.Get(0).(*domain.CropObservation)
	return obs, args.Error(1)
}

func (m *MockCropCycleService) ListObservations(ctx context.Context, clientID, cycleID string) ([]domain.CropObservation, error) {
	args := m.Called(ctx, clientID, cycleID)
	obs, _ := args.Get(0).([]domain.CropObservation)
	return obs, args.Error(1)
}

func (m *MockCropCycleService) ListStages(ctx context.Context, clientID, cycleID string) ([]domain.GrowthStage, error) {
	args := m.Called(ctx, clientID, cycleID)
	stages, _ := args.Get(0).([]domain.GrowthStage)
	return stages, args.Error(1)
}

func (m *MockCropCycleService) UpdateStageProgress(ctx context.Context, clientID, cycleID, stageID string, update cropcycle.StageUpdate) (*domain.GrowthStage, error) {
	args := m.Called(ctx, clientID, cycleID, stageID, update)
	stage, _ := args.Get(0).(*domain.GrowthStage)
	return stage, args.Error(1)
}

func (m *MockCropCycleService) ListRisks(ctx context.Context, clientID, cycleID string, includeResolved bool) ([]domain.RiskAlert, error) {
	args := m.Called(ctx, clientID, cycleID, includeResolved)
	risks, _ := args.Get(0).([]domain.RiskAlert)
	return risks, args.Error(1)
}

func (m *MockCropCycleService) AcknowledgeRisk(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error) {
	args := m.Called(ctx, clientID, cycleID, riskID)
	alert, _ := args.Get(0).(*domain.RiskAlert)
	return alert, args.Error(1)
}

func (m *MockCropCycleService) ResolveRisk(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error) {
	args := m.Called(ctx, clientID, cycleID, riskID)
	alert, _ := args.Get(0).(*domain.RiskAlert)
	return alert, args.Error(1)
}

func (m *MockCropCycleService) RecordRisks(ctx context.Context, cycle *domain.CropCycle, alerts []domain.RiskAlert) ([]domain.RiskAlert, error) {
	args := m.Called(ctx, cycle, alerts)
	out, _ := args.Get(0).([]domain.RiskAlert)
	return out, args.Error(1)
}

// MockRecommendationService mocks recommendation.Service
type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Generate(ctx context.Context, clientID string, opts domain.GenerateOptions) (*domain.GenerationResult, error) {
	args := m.Called(ctx, clientID, opts)
	res, _ := args.Get(0).(*domain.GenerationResult)
	return res, args.Error(1)
}

func (m *MockRecommendationService) GetCached(ctx context.Context, clientID string, limit int) (*domain.GenerationResult, error) {
	args := m.Called(ctx, clientID, limit)
	res, _ := args.Get(0).(*domain.GenerationResult)
	return res, args.Error(1)
}

// MockPlanner mocks checklist.Planner
type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Plan(ctx context.Context, req domain.ChecklistRequest) (*domain.ChecklistResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*domain.ChecklistResult)
	return res, args.Error(1)
}
