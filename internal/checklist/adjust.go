package checklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

// adjuster applies condition-driven changes to templated tasks for one request
type adjuster struct {
	cfg     Adjustments
	profile *crops.Profile
	req     *domain.ChecklistRequest
	snaps   domain.Snapshots
	today   time.Time
}

func (a *adjuster) apply(tasks []domain.CropTask) []domain.CropTask {
	tasks = a.drySpell(tasks)
	tasks = a.heavyRain(tasks)
	tasks = a.liming(tasks)
	tasks = a.priceDip(tasks)
	return a.novice(tasks)
}

// drySpell pulls near irrigation forward and raises its priority, or adds a water task when none is near
func (a *adjuster) drySpell(tasks []domain.CropTask) []domain.CropTask {
	days := a.forecast()
	if len(days) < a.cfg.DrySpellMinDays || totalRain(days) >= a.cfg.DrySpellMaxMM {
		return tasks
	}

	tomorrow := a.today.AddDate(0, 0, 1)
	horizon := a.today.AddDate(0, 0, a.cfg.PullForwardDays)
	pulled := false
	for i := range tasks {
		t := &tasks[i]
		if t.TaskType != domain.TaskTypeIrrigation || t.DueDate.Before(a.today) || t.DueDate.After(horizon) {
			continue
		}
		if t.DueDate.After(tomorrow) {
			t.DueDate = tomorrow
		}
		t.Priority = raise(t.Priority)
		t.Notes = addNote(t.Notes, "Brought forward: dry spell forecast")
		pulled = true
	}
	if pulled {
		return tasks
	}

	if a.req.IrrigationType == domain.IrrigationRainfed {
		return append(tasks, domain.CropTask{
			Title:          TitleDrySpellMulch,
			Description:    fmt.Sprintf("Less than %.0f mm of rain is forecast over the next %d days", a.cfg.DrySpellMaxMM, len(days)),
			TaskType:       domain.TaskTypeGeneral,
			Priority:       domain.PriorityHigh,
			DueDate:        tomorrow,
			EstimatedHours: 4,
		})
	}
	return append(tasks, domain.CropTask{
		Title:          TitleDrySpellIrrigation,
		Description:    fmt.Sprintf("Less than %.0f mm of rain is forecast over the next %d days", a.cfg.DrySpellMaxMM, len(days)),
		TaskType:       domain.TaskTypeIrrigation,
		Priority:       domain.PriorityHigh,
		DueDate:        tomorrow,
		EstimatedHours: 3,
	})
}

// heavyRain moves fertilization due before the last heavy-rain day to just after it
func (a *adjuster) heavyRain(tasks []domain.CropTask) []domain.CropTask {
	var last time.Time
	for _, d := range a.forecast() {
		if d.PrecipitationMM >= a.cfg.HeavyRainMM {
			last = dayOf(d.Date)
		}
	}
	if last.IsZero() {
		return tasks
	}

	resume := last.AddDate(0, 0, a.cfg.RainDelayDays)
	for i := range tasks {
		t := &tasks[i]
		if t.TaskType != domain.TaskTypeFertilization || t.DueDate.Before(a.today) || t.DueDate.After(last) {
			continue
		}
		t.DueDate = resume
		t.Notes = addNote(t.Notes, "Delayed: heavy rain forecast on "+last.Format("2 Jan"))
	}
	return tasks
}

// liming adds a lime application ahead of sowing when soil is more acidic than the crop tolerates
func (a *adjuster) liming(tasks []domain.CropTask) []domain.CropTask {
	soil := a.snaps.Soil
	if soil == nil || soil.PH <= 0 || soil.PH >= a.profile.PHMin {
		return tasks
	}

	priority := domain.PriorityHigh
	if a.profile.PHMin-soil.PH >= a.cfg.LimeCriticalPHGap {
		priority = domain.PriorityCritical
	}
	return append(tasks, domain.CropTask{
		Title:          TitleApplyLime,
		Description:    fmt.Sprintf("Soil pH %.1f is below the %.1f minimum for %s", soil.PH, a.profile.PHMin, a.profile.Name),
		TaskType:       domain.TaskTypeSoilPreparation,
		Priority:       priority,
		DueDate:        a.notBeforeToday(dayOf(a.req.StartDate).AddDate(0, 0, -a.cfg.LimeLeadDays)),
		EstimatedHours: 4,
	})
}

// priceDip adds a marketing task ahead of harvest when prices have fallen
func (a *adjuster) priceDip(tasks []domain.CropTask) []domain.CropTask {
	market := a.snaps.Market
	if market == nil {
		return tasks
	}
	change := market.ChangePercent()
	if change.GreaterThan(a.cfg.PriceDipPct) {
		return tasks
	}

	priority := domain.PriorityMedium
	if change.LessThanOrEqual(a.cfg.PriceDipHighPct) {
		priority = domain.PriorityHigh
	}
	harvest := a.profile.PlannedHarvest(dayOf(a.req.StartDate))
	return append(tasks, domain.CropTask{
		Title:          TitleReviewMarket,
		Description:    fmt.Sprintf("%s prices moved %s%% since the last reading", market.Commodity, change.StringFixed(1)),
		TaskType:       domain.TaskTypeMarketing,
		Priority:       priority,
		DueDate:        a.notBeforeToday(harvest.AddDate(0, 0, -a.cfg.MarketLeadDays)),
		EstimatedHours: 2,
	})
}

// novice adds supervision time to the important tasks of inexperienced farmers
func (a *adjuster) novice(tasks []domain.CropTask) []domain.CropTask {
	if a.req.ExperienceYears >= a.cfg.NoviceMaxYears {
		return tasks
	}
	for i := range tasks {
		t := &tasks[i]
		if t.Priority.Rank() < domain.PriorityHigh.Rank() {
			continue
		}
		t.EstimatedHours += a.cfg.NoviceExtraHours
		t.Notes = addNote(t.Notes, "Ask an extension worker to supervise")
	}
	return tasks
}

// forecast returns the weather days from today on
func (a *adjuster) forecast() []domain.DailyForecast {
	if a.snaps.Weather == nil {
		return nil
	}
	out := make([]domain.DailyForecast, 0, len(a.snaps.Weather.Days))
	for _, d := range a.snaps.Weather.Days {
		if !dayOf(d.Date).Before(a.today) {
			out = append(out, d)
		}
	}
	return out
}

func (a *adjuster) notBeforeToday(d time.Time) time.Time {
	if d.Before(a.today) {
		return a.today
	}
	return d
}

func totalRain(days []domain.DailyForecast) float64 {
	var total float64
	for _, d := range days {
		total += d.PrecipitationMM
	}
	return total
}

func raise(p domain.Priority) domain.Priority {
	switch p {
	case domain.PriorityLow:
		return domain.PriorityMedium
	case domain.PriorityMedium:
		return domain.PriorityHigh
	}
	return domain.PriorityCritical
}

func addNote(notes, note string) string {
	if strings.Contains(notes, note) {
		return notes
	}
	if notes == "" {
		return note
	}
	return notes + "; " + note
}

func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
