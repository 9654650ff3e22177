package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/CropCycle_Go/internal/database/generated"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/repository"
)

var _ repository.CropCycle = (*CropCycleRepository)(nil)

// CropCycleRepository implements repository.CropCycle for PostgreSQL
type CropCycleRepository struct {
	db *pgxpool.Pool
	q  *generated.Queries
}

// NewCropCycleRepository creates a new crop cycle repository
func NewCropCycleRepository(db *pgxpool.Pool) *CropCycleRepository {
	return &CropCycleRepository{
		db: db,
		q:  generated.New(db),
	}
}

// CreateCycle inserts a cycle and its growth stages in one transaction
func (r *CropCycleRepository) CreateCycle(ctx context.Context, c *domain.CropCycle, stages []domain.GrowthStage) error {
	cycleID, err := parseID(c.ID)
	if err != nil {
		return fmt.Errorf("invalid cycle id: %w", err)
	}
	if c.Version == 0 {
		c.Version = 1
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)
	q := r.q.WithTx(tx)

	err = q.CreateCycle(ctx, generated.CreateCycleParams{
		CycleID:            cycleID,
		ClientID:           c.ClientID,
		CropID:             c.CropID,
		Variety:            c.Variety,
		StartDate:          c.StartDate,
		Season:             string(c.Season),
		Pincode:            c.Location.Pincode,
		Latitude:           c.Location.Latitude,
		Longitude:          c.Location.Longitude,
		State:              c.Location.State,
		District:           c.Location.District,
		IrrigationType:     string(c.IrrigationType),
		AreaAcres:          c.AreaAcres,
		Language:           c.Language,
		Status:             string(c.Status),
		PlannedHarvestDate: c.PlannedHarvestDate,
		ActualHarvestDate:  timestamptz(c.ActualHarvestDate),
		FailureReason:      c.FailureReason,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		DeletedAt:          timestamptz(c.DeletedAt),
		Version:            int32(c.Version),
	})
	if err != nil {
		return wrapWriteError("failed to insert crop cycle", err)
	}

	for _, s := range stages {
		stageID, err := parseID(s.ID)
		if err != nil {
			return fmt.Errorf("invalid stage id: %w", err)
		}
		err = q.CreateGrowthStage(ctx, generated.CreateGrowthStageParams{
			StageID:              stageID,
			CycleID:              cycleID,
			Sequence:             int32(s.Sequence),
			StageName:            s.StageName,
			ExpectedStartDate:    s.ExpectedStartDate,
			ActualStartDate:      timestamptz(s.ActualStartDate),
			ExpectedDurationDays: int32(s.ExpectedDurationDays),
			ProgressPercentage:   s.ProgressPercentage,
			Notes:                s.Notes,
			Photos:               nonNil(s.Photos),
		})
		if err != nil {
			return fmt.Errorf("failed to insert growth stage %d: %w", s.Sequence, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit crop cycle: %w", err)
	}
	return nil
}

// GetCycle returns a cycle that has not been soft-deleted
func (r *CropCycleRepository) GetCycle(ctx context.Context, id string) (*domain.CropCycle, error) {
	cycleID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrCycleNotFound
	}
	row, err := r.q.GetCycle(ctx, cycleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to get crop cycle: %w", err)
	}
	c := mapCycleRow(row)
	return &c, nil
}

// ListCyclesByClient returns the client's live cycles, newest first
func (r *CropCycleRepository) ListCyclesByClient(ctx context.Context, clientID string) ([]domain.CropCycle, error) {
	rows, err := r.q.ListCyclesByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crop cycles: %w", err)
	}
	out := make([]domain.CropCycle, len(rows))
	for i, row := range rows {
		out[i] = mapCycleRow(row)
	}
	return out, nil
}

// UpdateCycle writes a cycle if its version still matches
func (r *CropCycleRepository) UpdateCycle(ctx context.Context, c *domain.CropCycle) error {
	cycleID, err := parseID(c.ID)
	if err != nil {
		return domain.ErrCycleNotFound
	}
	n, err := r.q.UpdateCycle(ctx, generated.UpdateCycleParams{
		CycleID:            cycleID,
		Version:            int32(c.Version),
		Variety:            c.Variety,
		StartDate:          c.StartDate,
		Season:             string(c.Season),
		Pincode:            c.Location.Pincode,
		Latitude:           c.Location.Latitude,
		Longitude:          c.Location.Longitude,
		State:              c.Location.State,
		District:           c.Location.District,
		IrrigationType:     string(c.IrrigationType),
		AreaAcres:          c.AreaAcres,
		Language:           c.Language,
		Status:             string(c.Status),
		PlannedHarvestDate: c.PlannedHarvestDate,
		ActualHarvestDate:  timestamptz(c.ActualHarvestDate),
		FailureReason:      c.FailureReason,
		UpdatedAt:          c.UpdatedAt,
	})
	if err != nil {
		return wrapWriteError("failed to update crop cycle", err)
	}
	if n == 0 {
		_, err := r.q.CycleExists(ctx, cycleID)
		return missOrConflict(err, domain.ErrCycleNotFound)
	}
	c.Version++
	return nil
}

// SoftDeleteCycle marks a cycle deleted; its children stay for audit
func (r *CropCycleRepository) SoftDeleteCycle(ctx context.Context, id string, deletedAt time.Time) error {
	cycleID, err := parseID(id)
	if err != nil {
		return domain.ErrCycleNotFound
	}
	n, err := r.q.SoftDeleteCycle(ctx, generated.SoftDeleteCycleParams{
		DeletedAt: timestamptz(&deletedAt),
		CycleID:   cycleID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete crop cycle: %w", err)
	}
	if n == 0 {
		return domain.ErrCycleNotFound
	}
	return nil
}

// CreateTasks inserts tasks in one transaction
func (r *CropCycleRepository) CreateTasks(ctx context.Context, tasks []domain.CropTask) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer SafeRollback(ctx, tx)
	q := r.q.WithTx(tx)

	for i := range tasks {
		t := &tasks[i]
		if t.Version == 0 {
			t.Version = 1
		}
		taskID, err := parseID(t.ID)
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}
		cycleID, err := parseID(t.CycleID)
		if err != nil {
			return domain.ErrCycleNotFound
		}
		err = q.CreateTask(ctx, generated.CreateTaskParams{
			TaskID:         taskID,
			CycleID:        cycleID,
			Title:          t.Title,
			Description:    t.Description,
			TaskType:       string(t.TaskType),
			Priority:       string(t.Priority),
			DueDate:        t.DueDate,
			Status:         string(t.Status),
			EstimatedHours: t.EstimatedHours,
			Notes:          t.Notes,
			Photos:         nonNil(t.Photos),
			VoiceNote:      t.VoiceNote,
			CompletedAt:    timestamptz(t.CompletedAt),
			CreatedAt:      t.CreatedAt,
			UpdatedAt:      t.UpdatedAt,
			Version:        int32(t.Version),
		})
		if err != nil {
			return wrapWriteError("failed to insert tasks", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}
	return nil
}

// GetTask returns one task of a cycle
func (r *CropCycleRepository) GetTask(ctx context.Context, cycleID, taskID string) (*domain.CropTask, error) {
	cid, err1 := parseID(cycleID)
	tid, err2 := parseID(taskID)
	if err1 != nil || err2 != nil {
		return nil, domain.ErrTaskNotFound
	}
	row, err := r.q.GetTask(ctx, generated.GetTaskParams{CycleID: cid, TaskID: tid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	t := mapTaskRow(row)
	return &t, nil
}

// ListTasks returns a cycle's tasks ordered by due date
func (r *CropCycleRepository) ListTasks(ctx context.Context, cycleID string) ([]domain.CropTask, error) {
	cid, err := parseID(cycleID)
	if err != nil {
		return []domain.CropTask{}, nil
	}
	rows, err := r.q.ListTasks(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	out := make([]domain.CropTask, len(rows))
	for i, row := range rows {
		out[i] = mapTaskRow(row)
	}
	return out, nil
}

// UpdateTask writes a task if its version still matches
func (r *CropCycleRepository) UpdateTask(ctx context.Context, t *domain.CropTask) error {
	cid, err1 := parseID(t.CycleID)
	tid, err2 := parseID(t.ID)
	if err1 != nil || err2 != nil {
		return domain.ErrTaskNotFound
	}
	n, err := r.q.UpdateTask(ctx, generated.UpdateTaskParams{
		CycleID:        cid,
		TaskID:         tid,
		Version:        int32(t.Version),
		Title:          t.Title,
		Description:    t.Description,
		TaskType:       string(t.TaskType),
		Priority:       string(t.Priority),
		DueDate:        t.DueDate,
		Status:         string(t.Status),
		EstimatedHours: t.EstimatedHours,
		Notes:          t.Notes,
		Photos:         nonNil(t.Photos),
		VoiceNote:      t.VoiceNote,
		CompletedAt:    timestamptz(t.CompletedAt),
		UpdatedAt:      t.UpdatedAt,
	})
	if err != nil {
		return wrapWriteError("failed to update task", err)
	}
	if n == 0 {
		_, err := r.q.TaskExists(ctx, tid)
		return missOrConflict(err, domain.ErrTaskNotFound)
	}
	t.Version++
	return nil
}

// ListStages returns a cycle's growth stages in sequence order
func (r *CropCycleRepository) ListStages(ctx context.Context, cycleID string) ([]domain.GrowthStage, error) {
	cid, err := parseID(cycleID)
	if err != nil {
		return []domain.GrowthStage{}, nil
	}
	rows, err := r.q.ListStages(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to list growth stages: %w", err)
	}
	out := make([]domain.GrowthStage, len(rows))
	for i, row := range rows {
		out[i] = mapStageRow(row)
	}
	return out, nil
}

// GetStage returns one growth stage of a cycle
func (r *CropCycleRepository) GetStage(ctx context.Context, cycleID, stageID string) (*domain.GrowthStage, error) {
	cid, err1 := parseID(cycleID)
	sid, err2 := parseID(stageID)
	if err1 != nil || err2 != nil {
		return nil, domain.ErrStageNotFound
	}
	row, err := r.q.GetStage(ctx, generated.GetStageParams{CycleID: cid, StageID: sid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to get growth stage: %w", err)
	}
	s := mapStageRow(row)
	return &s, nil
}

// UpdateStage writes a growth stage
func (r *CropCycleRepository) UpdateStage(ctx context.Context, s *domain.GrowthStage) error {
	cid, err1 := parseID(s.CycleID)
	sid, err2 := parseID(s.ID)
	if err1 != nil || err2 != nil {
		return domain.ErrStageNotFound
	}
	n, err := r.q.UpdateStage(ctx, generated.UpdateStageParams{
		CycleID:            cid,
		StageID:            sid,
		ActualStartDate:    timestamptz(s.ActualStartDate),
		ProgressPercentage: s.ProgressPercentage,
		Notes:              s.Notes,
		Photos:             nonNil(s.Photos),
	})
	if err != nil {
		return fmt.Errorf("failed to update growth stage: %w", err)
	}
	if n == 0 {
		return domain.ErrStageNotFound
	}
	return nil
}

// CreateObservation appends an observation
func (r *CropCycleRepository) CreateObservation(ctx context.Context, o *domain.CropObservation) error {
	oid, err := parseID(o.ID)
	if err != nil {
		return fmt.Errorf("invalid observation id: %w", err)
	}
	cid, err := parseID(o.CycleID)
	if err != nil {
		return domain.ErrCycleNotFound
	}
	err = r.q.CreateObservation(ctx, generated.CreateObservationParams{
		ObservationID:   oid,
		CycleID:         cid,
		ObservationType: o.ObservationType,
		Description:     o.Description,
		ObservedAt:      o.ObservedAt,
		Photos:          nonNil(o.Photos),
		VoiceNote:       o.VoiceNote,
		Notes:           o.Notes,
	})
	if err != nil {
		return wrapWriteError("failed to insert observation", err)
	}
	return nil
}

// ListObservations returns a cycle's observations, most recent first
func (r *CropCycleRepository) ListObservations(ctx context.Context, cycleID string) ([]domain.CropObservation, error) {
	cid, err := parseID(cycleID)
	if err != nil {
		return []domain.CropObservation{}, nil
	}
	rows, err := r.q.ListObservations(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	out := make([]domain.CropObservation, len(rows))
	for i, row := range rows {
		out[i] = domain.CropObservation{
			ID:              row.ObservationID.String(),
			CycleID:         row.CycleID.String(),
			ObservationType: row.ObservationType,
			Description:     row.Description,
			ObservedAt:      row.ObservedAt.UTC(),
			Photos:          nonNil(row.Photos),
			VoiceNote:       row.VoiceNote,
			Notes:           row.Notes,
		}
	}
	return out, nil
}

// CreateRisk inserts a risk alert
func (r *CropCycleRepository) CreateRisk(ctx context.Context, a *domain.RiskAlert) error {
	rid, err := parseID(a.ID)
	if err != nil {
		return fmt.Errorf("invalid risk id: %w", err)
	}
	cid, err := parseID(a.CycleID)
	if err != nil {
		return domain.ErrCycleNotFound
	}
	err = r.q.CreateRisk(ctx, generated.CreateRiskParams{
		RiskID:             rid,
		CycleID:            cid,
		RiskType:           string(a.RiskType),
		Severity:           string(a.Severity),
		Description:        a.Description,
		MitigationStrategy: a.MitigationStrategy,
		DetectedAt:         a.DetectedAt,
		UpdatedAt:          a.UpdatedAt,
		AcknowledgedAt:     timestamptz(a.AcknowledgedAt),
		ResolvedAt:         timestamptz(a.ResolvedAt),
	})
	if err != nil {
		return wrapWriteError("failed to insert risk alert", err)
	}
	return nil
}

// GetRisk returns one risk alert of a cycle
func (r *CropCycleRepository) GetRisk(ctx context.Context, cycleID, riskID string) (*domain.RiskAlert, error) {
	cid, err1 := parseID(cycleID)
	rid, err2 := parseID(riskID)
	if err1 != nil || err2 != nil {
		return nil, domain.ErrRiskNotFound
	}
	row, err := r.q.GetRisk(ctx, generated.GetRiskParams{CycleID: cid, RiskID: rid})
	return riskOrNotFound(row, err)
}

// FindOpenRisk returns the unresolved alert of riskType for a cycle
func (r *CropCycleRepository) FindOpenRisk(ctx context.Context, cycleID string, riskType domain.RiskType) (*domain.RiskAlert, error) {
	cid, err := parseID(cycleID)
	if err != nil {
		return nil, domain.ErrRiskNotFound
	}
	row, err := r.q.FindOpenRisk(ctx, generated.FindOpenRiskParams{CycleID: cid, RiskType: string(riskType)})
	return riskOrNotFound(row, err)
}

// ListRisks returns a cycle's alerts, most recently detected first
func (r *CropCycleRepository) ListRisks(ctx context.Context, cycleID string, includeResolved bool) ([]domain.RiskAlert, error) {
	cid, err := parseID(cycleID)
	if err != nil {
		return []domain.RiskAlert{}, nil
	}
	rows, err := r.q.ListRisks(ctx, generated.ListRisksParams{CycleID: cid, IncludeResolved: includeResolved})
	if err != nil {
		return nil, fmt.Errorf("failed to list risk alerts: %w", err)
	}
	out := make([]domain.RiskAlert, len(rows))
	for i, row := range rows {
		out[i] = mapRiskRow(row)
	}
	return out, nil
}

// UpdateRisk writes a risk alert
func (r *CropCycleRepository) UpdateRisk(ctx context.Context, a *domain.RiskAlert) error {
	cid, err1 := parseID(a.CycleID)
	rid, err2 := parseID(a.ID)
	if err1 != nil || err2 != nil {
		return domain.ErrRiskNotFound
	}
	n, err := r.q.UpdateRisk(ctx, generated.UpdateRiskParams{
		CycleID:            cid,
		RiskID:             rid,
		Severity:           string(a.Severity),
		Description:        a.Description,
		MitigationStrategy: a.MitigationStrategy,
		UpdatedAt:          a.UpdatedAt,
		AcknowledgedAt:     timestamptz(a.AcknowledgedAt),
		ResolvedAt:         timestamptz(a.ResolvedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to update risk alert: %w", err)
	}
	if n == 0 {
		return domain.ErrRiskNotFound
	}
	return nil
}

// missOrConflict turns the existence check after a zero-row versioned update into
// notFound for a vanished row or ErrConflictingUpdate for a stale version
func missOrConflict(existsErr error, notFound error) error {
	if errors.Is(existsErr, pgx.ErrNoRows) {
		return notFound
	}
	if existsErr != nil {
		return fmt.Errorf("failed to check row existence: %w", existsErr)
	}
	return domain.ErrConflictingUpdate
}

// wrapWriteError maps unique violations to ErrConflictingUpdate
func wrapWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflictingUpdate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func mapCycleRow(row generated.CropCycle) domain.CropCycle {
	return domain.CropCycle{
		ID:        row.CycleID.String(),
		ClientID:  row.ClientID,
		CropID:    row.CropID,
		Variety:   row.Variety,
		StartDate: row.StartDate.UTC(),
		Season:    domain.Season(row.Season),
		Location: domain.Location{
			Pincode:   row.Pincode,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			State:     row.State,
			District:  row.District,
		},
		IrrigationType:     domain.IrrigationType(row.IrrigationType),
		AreaAcres:          row.AreaAcres,
		Language:           row.Language,
		Status:             domain.CycleStatus(row.Status),
		PlannedHarvestDate: row.PlannedHarvestDate.UTC(),
		ActualHarvestDate:  timePtr(row.ActualHarvestDate),
		FailureReason:      row.FailureReason,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
		DeletedAt:          timePtr(row.DeletedAt),
		Version:            int(row.Version),
	}
}

func mapTaskRow(row generated.CropTask) domain.CropTask {
	return domain.CropTask{
		ID:             row.TaskID.String(),
		CycleID:        row.CycleID.String(),
		Title:          row.Title,
		Description:    row.Description,
		TaskType:       domain.TaskType(row.TaskType),
		Priority:       domain.Priority(row.Priority),
		DueDate:        row.DueDate.UTC(),
		Status:         domain.TaskStatus(row.Status),
		EstimatedHours: row.EstimatedHours,
		Notes:          row.Notes,
		Photos:         nonNil(row.Photos),
		VoiceNote:      row.VoiceNote,
		CompletedAt:    timePtr(row.CompletedAt),
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
		Version:        int(row.Version),
	}
}

func mapStageRow(row generated.GrowthStage) domain.GrowthStage {
	return domain.GrowthStage{
		ID:                   row.StageID.String(),
		CycleID:              row.CycleID.String(),
		Sequence:             int(row.Sequence),
		StageName:            row.StageName,
		ExpectedStartDate:    row.ExpectedStartDate.UTC(),
		ActualStartDate:      timePtr(row.ActualStartDate),
		ExpectedDurationDays: int(row.ExpectedDurationDays),
		ProgressPercentage:   row.ProgressPercentage,
		Notes:                row.Notes,
		Photos:               nonNil(row.Photos),
	}
}

func mapRiskRow(row generated.RiskAlert) domain.RiskAlert {
	return domain.RiskAlert{
		ID:                 row.RiskID.String(),
		CycleID:            row.CycleID.String(),
		RiskType:           domain.RiskType(row.RiskType),
		Severity:           domain.Severity(row.Severity),
		Description:        row.Description,
		MitigationStrategy: row.MitigationStrategy,
		DetectedAt:         row.DetectedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
		AcknowledgedAt:     timePtr(row.AcknowledgedAt),
		ResolvedAt:         timePtr(row.ResolvedAt),
	}
}

func riskOrNotFound(row generated.RiskAlert, err error) (*domain.RiskAlert, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRiskNotFound
		}
		return nil, fmt.Errorf("failed to get risk alert: %w", err)
	}
	a := mapRiskRow(row)
	return &a, nil
}
