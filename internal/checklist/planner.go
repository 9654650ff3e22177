// Package checklist builds smart task checklists from crop templates and field conditions and merges
// them into crop cycles.
package checklist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/datasource"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/recommendation"
	"github.com/osse101/CropCycle_Go/internal/risk"
)

// Planner generates smart checklists
type Planner interface {
	// Plan builds the checklist for a profile. With a cycle id the tasks are merged into that cycle
	// and only the newly added tasks are returned.
	Plan(ctx context.Context, req domain.ChecklistRequest) (*domain.ChecklistResult, error)
}

// CycleTasks is the slice of the crop-cycle store the planner needs; cropcycle.Service satisfies it
type CycleTasks interface {
	GetCycle(ctx context.Context, clientID, cycleID string) (*domain.CropCycle, error)
	MergeTasks(ctx context.Context, clientID, cycleID string, candidates []domain.CropTask) ([]domain.CropTask, error)
}

// RiskEvaluator scores conditions without storing alerts; *risk.Assessor satisfies it
type RiskEvaluator interface {
	Evaluate(cycle domain.CropCycle, snaps domain.Snapshots) []risk.Finding
}

// Deps are the planner's collaborators. Cycles and Gateway are optional: without Cycles a cycle id
// is rejected, without Gateway only the snapshots carried by the request are used.
type Deps struct {
	Catalog *crops.Catalog
	Risks   RiskEvaluator
	Advisor recommendation.AdvisoryModel
	Cycles  CycleTasks
	Gateway recommendation.SnapshotCollector
	Adjust  *Adjustments
}

type planner struct {
	deps   Deps
	adjust Adjustments
	now    func() time.Time
}

// NewPlanner creates a checklist planner
func NewPlanner(deps Deps) Planner {
	adjust := DefaultAdjustments()
	if deps.Adjust != nil {
		adjust = *deps.Adjust
	}
	if deps.Advisor == nil {
		deps.Advisor = recommendation.NewRuleAdvisor()
	}
	if deps.Risks == nil {
		deps.Risks = risk.NewAssessor(nil, deps.Catalog, nil)
	}
	return &planner{
		deps:   deps,
		adjust: adjust,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Plan implements Planner
func (p *planner) Plan(ctx context.Context, req domain.ChecklistRequest) (*domain.ChecklistResult, error) {
	log := logger.FromContext(ctx)

	if err := p.resolveCycle(ctx, &req); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	now := p.now()
	profile := p.deps.Catalog.ProfileOrDefault(req.CropID)
	snaps := p.fillSnapshots(ctx, &req)

	adj := &adjuster{cfg: p.adjust, profile: profile, req: &req, snaps: snaps, today: dayOf(now)}
	tasks := adj.apply(p.templated(ctx, profile, &req))
	sortTasks(tasks)

	cycle := planningCycle(&req, profile)
	findings := p.deps.Risks.Evaluate(cycle, snaps)

	var drafts []domain.Recommendation
	for _, alert := range risk.ToAlerts(req.CycleID, findings) {
		if rec, ok := recommendation.FromAlert(alert, snaps); ok {
			drafts = append(drafts, rec)
		}
	}
	drafts = append(drafts, p.deps.Advisor.Advise(recommendation.Input{
		Cycle:     cycle,
		Profile:   profile,
		Snapshots: snaps,
		Now:       now,
	})...)
	drafts = recommendation.Stamp(drafts, req.ClientID, req.CycleID, now)

	result := &domain.ChecklistResult{
		Recommendations:      recommendation.Rank(recommendation.Dedup(recommendation.DropExpired(drafts, now))),
		RiskLevel:            risk.Level(findings),
		RiskFactors:          make([]string, 0, len(findings)),
		MitigationStrategies: make([]string, 0, len(findings)),
		CreatedAt:            now,
	}
	seen := make(map[string]bool, len(findings))
	for _, f := range findings {
		result.RiskFactors = append(result.RiskFactors, f.Description)
		if f.Mitigation != "" && !seen[f.Mitigation] {
			seen[f.Mitigation] = true
			result.MitigationStrategies = append(result.MitigationStrategies, f.Mitigation)
		}
	}

	if req.CycleID != "" {
		added, err := p.deps.Cycles.MergeTasks(ctx, req.ClientID, req.CycleID, tasks)
		if err != nil {
			return nil, err
		}
		result.Tasks = added
	} else {
		result.Tasks = preview(tasks, now)
	}

	log.Info(LogMsgChecklistBuilt, "crop", req.CropID, "cycleID", req.CycleID,
		"tasks", len(result.Tasks), "recommendations", len(result.Recommendations), "riskLevel", result.RiskLevel)
	return result, nil
}

// resolveCycle checks ownership of the target cycle and fills blank profile fields from it
func (p *planner) resolveCycle(ctx context.Context, req *domain.ChecklistRequest) error {
	req.CycleID = strings.TrimSpace(req.CycleID)
	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.CycleID == "" {
		return nil
	}
	if req.ClientID == "" {
		return fmt.Errorf("%w: client_id is required with cycle_id", domain.ErrValidation)
	}
	if p.deps.Cycles == nil {
		return fmt.Errorf("%w: cycle merging is not configured", domain.ErrValidation)
	}

	cycle, err := p.deps.Cycles.GetCycle(ctx, req.ClientID, req.CycleID)
	if err != nil {
		return err
	}
	if req.CropID == "" {
		req.CropID = cycle.CropID
	}
	if req.Variety == "" {
		req.Variety = cycle.Variety
	}
	if req.StartDate.IsZero() {
		req.StartDate = cycle.StartDate
	}
	if req.Season == "" {
		req.Season = cycle.Season
	}
	if req.IrrigationType == "" {
		req.IrrigationType = cycle.IrrigationType
	}
	if req.Location == (domain.Location{}) {
		req.Location = cycle.Location
	}
	if req.AreaAcres == 0 {
		req.AreaAcres = cycle.AreaAcres
	}
	return nil
}

func validate(req *domain.ChecklistRequest) error {
	req.CropID = strings.ToLower(strings.TrimSpace(req.CropID))
	switch {
	case req.CropID == "":
		return fmt.Errorf("%w: crop_id is required", domain.ErrValidation)
	case req.StartDate.IsZero():
		return fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	case !req.Season.Valid():
		return fmt.Errorf("%w: unknown season %q", domain.ErrValidation, req.Season)
	case !req.IrrigationType.Valid():
		return fmt.Errorf("%w: unknown irrigation type %q", domain.ErrValidation, req.IrrigationType)
	case req.AreaAcres < 0:
		return fmt.Errorf("%w: area_acres must not be negative", domain.ErrValidation)
	case req.ExperienceYears < 0:
		return fmt.Errorf("%w: experience_years must not be negative", domain.ErrValidation)
	}
	if req.FarmSize == "" {
		req.FarmSize = ClassifyFarm(req.AreaAcres)
	} else if !validFarmSize(req.FarmSize) {
		return fmt.Errorf("%w: unknown farm size %q", domain.ErrValidation, req.FarmSize)
	}
	return nil
}

// fillSnapshots fetches the readings the request does not carry; failures leave them empty
func (p *planner) fillSnapshots(ctx context.Context, req *domain.ChecklistRequest) domain.Snapshots {
	snaps := req.Snapshots()
	if p.deps.Gateway == nil {
		return snaps
	}
	opts := domain.GenerateOptions{
		IncludeWeather: snaps.Weather == nil && (req.Location.Latitude != 0 || req.Location.Longitude != 0),
		IncludeMarket:  snaps.Market == nil,
		IncludeSoil:    snaps.Soil == nil && req.Location.Pincode != "",
	}
	if !opts.IncludeWeather && !opts.IncludeMarket && !opts.IncludeSoil {
		return snaps
	}

	const targetID = "checklist"
	collected := p.deps.Gateway.Collect(ctx, []datasource.Target{{ID: targetID, CropID: req.CropID, Location: req.Location}}, opts)
	fetched := collected.For(targetID)
	if snaps.Weather == nil {
		snaps.Weather = fetched.Weather
	}
	if snaps.Market == nil {
		snaps.Market = fetched.Market
	}
	if snaps.Soil == nil {
		snaps.Soil = fetched.Soil
	}
	log := logger.FromContext(ctx)
	if len(collected.Unavailable) > 0 {
		log.Warn(LogMsgSourcesUnavailable, "crop", req.CropID, "unavailable", collected.Unavailable)
	} else {
		log.Debug(LogMsgSnapshotsFetched, "crop", req.CropID)
	}
	return snaps
}

// templated dates the crop's task templates for the request. Lookup falls back from the request's
// season to year_round, then to any irrigation type.
func (p *planner) templated(ctx context.Context, profile *crops.Profile, req *domain.ChecklistRequest) []domain.CropTask {
	templates := profile.TasksFor(req.Season, req.IrrigationType)
	if len(templates) == 0 {
		templates = profile.TasksFor(domain.SeasonYearRound, req.IrrigationType)
	}
	if len(templates) == 0 {
		logger.FromContext(ctx).Debug(LogMsgTemplateFallback, "crop", profile.ID, "season", req.Season, "irrigation", req.IrrigationType)
		templates = profile.Tasks
	}

	start := dayOf(req.StartDate)
	labour := labourFactor(req.FarmSize)
	tasks := make([]domain.CropTask, 0, len(templates))
	for _, t := range templates {
		tasks = append(tasks, domain.CropTask{
			Title:          t.Title,
			Description:    t.Description,
			TaskType:       t.TaskType,
			Priority:       t.Priority,
			DueDate:        start.AddDate(0, 0, t.OffsetDays),
			EstimatedHours: t.EstimatedHours * labour,
		})
	}
	return tasks
}

// planningCycle is the transient cycle risk rules and advisories evaluate the request as
func planningCycle(req *domain.ChecklistRequest, profile *crops.Profile) domain.CropCycle {
	start := dayOf(req.StartDate)
	return domain.CropCycle{
		ID:                 req.CycleID,
		ClientID:           req.ClientID,
		CropID:             req.CropID,
		Variety:            req.Variety,
		StartDate:          start,
		Season:             req.Season,
		Location:           req.Location,
		IrrigationType:     req.IrrigationType,
		AreaAcres:          req.AreaAcres,
		Status:             domain.CycleStatusActive,
		PlannedHarvestDate: profile.PlannedHarvest(start),
	}
}

// preview stamps tasks that are not stored anywhere
func preview(tasks []domain.CropTask, now time.Time) []domain.CropTask {
	for i := range tasks {
		t := &tasks[i]
		t.ID = uuid.NewString()
		t.Status = domain.TaskStatusPending
		t.Photos = []string{}
		t.CreatedAt = now
		t.UpdatedAt = now
	}
	return tasks
}

// sortTasks orders by due date, most important first within a day
func sortTasks(tasks []domain.CropTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
	})
}

// ClassifyFarm buckets a cultivated area
func ClassifyFarm(acres float64) domain.FarmSize {
	switch {
	case acres < marginalMaxAcres:
		return domain.FarmSizeMarginal
	case acres < smallMaxAcres:
		return domain.FarmSizeSmall
	case acres < mediumMaxAcres:
		return domain.FarmSizeMedium
	}
	return domain.FarmSizeLarge
}

func validFarmSize(s domain.FarmSize) bool {
	switch s {
	case domain.FarmSizeMarginal, domain.FarmSizeSmall, domain.FarmSizeMedium, domain.FarmSizeLarge:
		return true
	}
	return false
}

// labourFactor scales template hours, which assume a small farm
func labourFactor(s domain.FarmSize) float64 {
	switch s {
	case domain.FarmSizeMedium:
		return 1.5
	case domain.FarmSizeLarge:
		return 2
	}
	return 1
}
