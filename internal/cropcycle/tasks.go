package cropcycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/osse101/CropCycle_Go/internal/concurrency"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/utils"
)

// AddTask appends a hand-written task to an open cycle
func (s *service) AddTask(ctx context.Context, clientID, cycleID string, req NewTaskRequest) (*domain.CropTask, error) {
	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	cycle, err := s.ownedCycle(ctx, clientID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cycle is %s", domain.ErrValidation, cycle.Status)
	}

	task, err := req.toTask(cycleID, uuid.NewString(), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateTasks(ctx, []domain.CropTask{task}); err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}

	s.publish(ctx, event.NewTaskEvent(event.TasksAdded, clientID, cycleID, []string{task.ID}, "", string(task.Status)))
	return &task, nil
}

// ListTasks returns a cycle's tasks ordered by due date
func (s *service) ListTasks(ctx context.Context, clientID, cycleID string) ([]domain.CropTask, error) {
	if _, err := s.ownedCycle(ctx, clientID, cycleID); err != nil {
		return nil, err
	}
	return s.repo.ListTasks(ctx, cycleID)
}

// UpdateTaskStatus moves a task through its state machine.
// Starting a task of a planned cycle also activates the cycle.
func (s *service) UpdateTaskStatus(ctx context.Context, clientID, cycleID, taskID string, change domain.TaskStatusChange) (*domain.CropTask, error) {
	log := logger.FromContext(ctx)

	if !change.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status %q", domain.ErrValidation, change.Status)
	}
	if change.CompletedAt != nil && change.Status != domain.TaskStatusCompleted {
		return nil, fmt.Errorf("%w: completed_at is only allowed when completing a task", domain.ErrValidation)
	}

	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	var (
		updated   *domain.CropTask
		from      domain.TaskStatus
		activated *domain.CropCycle
	)
	err := s.retryOnConflict(ctx, func() error {
		cycle, err := s.ownedCycle(ctx, clientID, cycleID)
		if err != nil {
			return err
		}
		task, err := s.repo.GetTask(ctx, cycleID, taskID)
		if err != nil {
			return err
		}
		from = task.Status
		if !domain.CanTransitionTask(task.Status, change.Status) {
			return fmt.Errorf("%w: task %s -> %s", domain.ErrInvalidTransition, task.Status, change.Status)
		}

		now := s.now()
		task.Status = change.Status
		task.UpdatedAt = now
		if notes := strings.TrimSpace(change.Notes); notes != "" {
			task.Notes = notes
		}
		task.CompletedAt = nil
		if change.Status == domain.TaskStatusCompleted {
			completed := now
			if change.CompletedAt != nil {
				completed = change.CompletedAt.UTC()
			}
			task.CompletedAt = &completed
		}

		// Activate first so a retry after a task conflict finds the cycle already active
		if change.Status == domain.TaskStatusInProgress && cycle.Status == domain.CycleStatusPlanned {
			cycle.Status = domain.CycleStatusActive
			cycle.UpdatedAt = now
			if err := s.repo.UpdateCycle(ctx, cycle); err != nil {
				return fmt.Errorf("failed to activate cycle: %w", err)
			}
			activated = cycle
		}

		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info(LogMsgTaskStatusChanged, "cycleID", cycleID, "taskID", taskID, "from", from, "to", updated.Status)
	s.publish(ctx, event.NewTaskEvent(event.TaskStatusChanged, clientID, cycleID, []string{taskID}, string(from), string(updated.Status)))
	if activated != nil {
		log.Info(LogMsgCycleActivated, "cycleID", cycleID)
		s.publish(ctx, event.NewCycleEvent(event.CycleUpdated, clientID, cycleID, string(activated.Status)))
	}
	return updated, nil
}

// MergeTasks inserts candidates absent from the cycle's non-terminal tasks.
// Existing tasks are never modified, so recorded statuses survive repeated merges.
func (s *service) MergeTasks(ctx context.Context, clientID, cycleID string, candidates []domain.CropTask) ([]domain.CropTask, error) {
	unlock := s.locks.Lock(concurrency.CycleKey(cycleID))
	defer unlock()

	cycle, err := s.ownedCycle(ctx, clientID, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cycle is %s", domain.ErrValidation, cycle.Status)
	}

	existing, err := s.repo.ListTasks(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, t := range existing {
		if !t.Status.IsTerminal() {
			seen[mergeKey(t)] = true
		}
	}

	now := s.now()
	added := make([]domain.CropTask, 0, len(candidates))
	for _, c := range candidates {
		key := mergeKey(c)
		if seen[key] {
			continue
		}
		seen[key] = true

		c.ID = uuid.NewString()
		c.CycleID = cycleID
		c.Status = domain.TaskStatusPending
		c.CompletedAt = nil
		c.Photos = nonNil(c.Photos)
		c.CreatedAt = now
		c.UpdatedAt = now
		c.Version = 0
		added = append(added, c)
	}
	if len(added) == 0 {
		return added, nil
	}

	if err := s.repo.CreateTasks(ctx, added); err != nil {
		return nil, fmt.Errorf("failed to insert merged tasks: %w", err)
	}

	ids := make([]string, len(added))
	for i, t := range added {
		ids[i] = t.ID
	}
	logger.FromContext(ctx).Info(LogMsgTasksMerged, "cycleID", cycleID, "added", len(added), "candidates", len(candidates))
	s.publish(ctx, event.NewTaskEvent(event.TasksAdded, clientID, cycleID, ids, "", string(domain.TaskStatusPending)))
	return added, nil
}

func mergeKey(t domain.CropTask) string {
	return string(t.TaskType) + "|" + utils.NormalizeTitle(t.Title)
}
