// Package memory provides an in-process CropCycle repository for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/repository"
)

var _ repository.CropCycle = (*CropCycleRepository)(nil)

// CropCycleRepository stores crop cycles in maps guarded by a single RWMutex.
// Entities are copied on the way in and out so callers never share memory with the store.
type CropCycleRepository struct {
	mu           sync.RWMutex
	cycles       map[string]*domain.CropCycle
	stages       map[string][]*domain.GrowthStage
	tasks        map[string][]*domain.CropTask
	observations map[string][]*domain.CropObservation
	risks        map[string][]*domain.RiskAlert
}

// NewCropCycleRepository creates an empty repository
func NewCropCycleRepository() *CropCycleRepository {
	return &CropCycleRepository{
		cycles:       make(map[string]*domain.CropCycle),
		stages:       make(map[string][]*domain.GrowthStage),
		tasks:        make(map[string][]*domain.CropTask),
		observations: make(map[string][]*domain.CropObservation),
		risks:        make(map[string][]*domain.RiskAlert),
	}
}

// CreateCycle inserts a cycle together with its seeded growth stages
func (r *CropCycleRepository) CreateCycle(ctx context.Context, cycle *domain.CropCycle, stages []domain.GrowthStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cycles[cycle.ID]; exists {
		return fmt.Errorf("%w: cycle %s already exists", domain.ErrConflictingUpdate, cycle.ID)
	}
	if cycle.Version == 0 {
		cycle.Version = 1
	}
	r.cycles[cycle.ID] = copyCycle(cycle)

	stored := make([]*domain.GrowthStage, 0, len(stages))
	for i := range stages {
		stored = append(stored, copyStage(&stages[i]))
	}
	r.stages[cycle.ID] = stored
	return nil
}

// GetCycle returns a cycle that has not been soft-deleted
func (r *CropCycleRepository) GetCycle(ctx context.Context, id string) (*domain.CropCycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cycles[id]
	if !ok || c.DeletedAt != nil {
		return nil, domain.ErrCycleNotFound
	}
	return copyCycle(c), nil
}

// ListCyclesByClient returns the client's live cycles, newest first
func (r *CropCycleRepository) ListCyclesByClient(ctx context.Context, clientID string) ([]domain.CropCycle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CropCycle, 0)
	for _, c := range r.cycles {
		if c.ClientID == clientID && c.DeletedAt == nil {
			out = append(out, *copyCycle(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateCycle replaces a cycle if its version still matches
func (r *CropCycleRepository) UpdateCycle(ctx context.Context, cycle *domain.CropCycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.cycles[cycle.ID]
	if !ok || current.DeletedAt != nil {
		return domain.ErrCycleNotFound
	}
	if current.Version != cycle.Version {
		return domain.ErrConflictingUpdate
	}
	cycle.Version++
	r.cycles[cycle.ID] = copyCycle(cycle)
	return nil
}

// SoftDeleteCycle marks a cycle deleted; its children stay for audit
func (r *CropCycleRepository) SoftDeleteCycle(ctx context.Context, id string, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cycles[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrCycleNotFound
	}
	at := deletedAt
	c.DeletedAt = &at
	c.UpdatedAt = deletedAt
	c.Version++
	return nil
}

// CreateTasks appends tasks to their cycles
func (r *CropCycleRepository) CreateTasks(ctx context.Context, tasks []domain.CropTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range tasks {
		t := &tasks[i]
		if t.Version == 0 {
			t.Version = 1
		}
		r.tasks[t.CycleID] = append(r.tasks[t.CycleID], copyTask(t))
	}
	return nil
}

// GetTask returns one task of a cycle
func (r *CropCycleRepository) GetTask(ctx context.Context, cycleID, taskID string) (*domain.CropTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tasks[cycleID] {
		if t.ID == taskID {
			return copyTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

// ListTasks returns a cycle's tasks ordered by due date
func (r *CropCycleRepository) ListTasks(ctx context.Context, cycleID string) ([]domain.CropTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CropTask, 0, len(r.tasks[cycleID]))
	for _, t := range r.tasks[cycleID] {
		out = append(out, *copyTask(t))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

// UpdateTask replaces a task if its version still matches
func (r *CropCycleRepository) UpdateTask(ctx context.Context, task *domain.CropTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks[task.CycleID] {
		if t.ID != task.ID {
			continue
		}
		if t.Version != task.Version {
			return domain.ErrConflictingUpdate
		}
		task.Version++
		r.tasks[task.CycleID][i] = copyTask(task)
		return nil
	}
	return domain.ErrTaskNotFound
}

// ListStages returns a cycle's growth stages in sequence order
func (r *CropCycleRepository) ListStages(ctx context.Context, cycleID string) ([]domain.GrowthStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.GrowthStage, 0, len(r.stages[cycleID]))
	for _, s := range r.stages[cycleID] {
		out = append(out, *copyStage(s))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// GetStage returns one growth stage of a cycle
func (r *CropCycleRepository) GetStage(ctx context.Context, cycleID, stageID string) (*domain.GrowthStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.stages[cycleID] {
		if s.ID == stageID {
			return copyStage(s), nil
		}
	}
	return nil, domain.ErrStageNotFound
}

// UpdateStage replaces a growth stage
func (r *CropCycleRepository) UpdateStage(ctx context.Context, stage *domain.GrowthStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.stages[stage.CycleID] {
		if s.ID == stage.ID {
			r.stages[stage.CycleID][i] = copyStage(stage)
			return nil
		}
	}
	return domain.ErrStageNotFound
}

// CreateObservation appends an observation
func (r *CropCycleRepository) CreateObservation(ctx context.Context, obs *domain.CropObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *obs
	c.Photos = cloneStrings(obs.Photos)
	r.observations[obs.CycleID] = append(r.observations[obs.CycleID], &c)
	return nil
}

// ListObservations returns a cycle's observations, most recent first
func (r *CropCycleRepository) ListObservations(ctx context.Context, cycleID string) ([]domain.CropObservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CropObservation, 0, len(r.observations[cycleID]))
	for _, o := range r.observations[cycleID] {
		c := *o
		c.Photos = cloneStrings(o.Photos)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ObservedAt.After(out[j].ObservedAt) })
	return out, nil
}

// CreateRisk appends a risk alert; a cycle holds at most one open alert per type
func (r *CropCycleRepository) CreateRisk(ctx context.Context, risk *domain.RiskAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if risk.IsOpen() {
		for _, a := range r.risks[risk.CycleID] {
			if a.RiskType == risk.RiskType && a.IsOpen() {
				return fmt.Errorf("%w: open %s alert already exists", domain.ErrConflictingUpdate, risk.RiskType)
			}
		}
	}
	c := *risk
	r.risks[risk.CycleID] = append(r.risks[risk.CycleID], &c)
	return nil
}

// GetRisk returns one risk alert of a cycle
func (r *CropCycleRepository) GetRisk(ctx context.Context, cycleID, riskID string) (*domain.RiskAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.risks[cycleID] {
		if a.ID == riskID {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrRiskNotFound
}

// FindOpenRisk returns the unresolved alert of riskType for a cycle
func (r *CropCycleRepository) FindOpenRisk(ctx context.Context, cycleID string, riskType domain.RiskType) (*domain.RiskAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.risks[cycleID] {
		if a.RiskType == riskType && a.IsOpen() {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrRiskNotFound
}

// ListRisks returns a cycle's alerts, most recently detected first
func (r *CropCycleRepository) ListRisks(ctx context.Context, cycleID string, includeResolved bool) ([]domain.RiskAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RiskAlert, 0, len(r.risks[cycleID]))
	for _, a := range r.risks[cycleID] {
		if !includeResolved && !a.IsOpen() {
			continue
		}
		out = append(out, *a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DetectedAt.After(out[j].DetectedAt) })
	return out, nil
}

// UpdateRisk replaces a risk alert
func (r *CropCycleRepository) UpdateRisk(ctx context.Context, risk *domain.RiskAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.risks[risk.CycleID] {
		if a.ID == risk.ID {
			c := *risk
			r.risks[risk.CycleID][i] = &c
			return nil
		}
	}
	return domain.ErrRiskNotFound
}

func copyCycle(c *domain.CropCycle) *domain.CropCycle {
	out := *c
	if c.ActualHarvestDate != nil {
		t := *c.ActualHarvestDate
		out.ActualHarvestDate = &t
	}
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

func copyTask(t *domain.CropTask) *domain.CropTask {
	out := *t
	out.Photos = cloneStrings(t.Photos)
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		out.CompletedAt = &c
	}
	return &out
}

func copyStage(s *domain.GrowthStage) *domain.GrowthStage {
	out := *s
	out.Photos = cloneStrings(s.Photos)
	if s.ActualStartDate != nil {
		t := *s.ActualStartDate
		out.ActualStartDate = &t
	}
	return &out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
