package recommendation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

// riskAdvice maps each risk type onto the recommendation it produces
var riskAdvice = map[domain.RiskType]struct {
	recType domain.RecommendationType
	title   string
	source  string
}{
	domain.RiskTypeSoil:       {domain.RecommendationSoilImprovement, "Correct soil chemistry", domain.SourceSoil},
	domain.RiskTypeWeather:    {domain.RecommendationWeatherAdaptation, "Prepare for adverse weather", domain.SourceWeather},
	domain.RiskTypePest:       {domain.RecommendationPestControl, "Control pest build-up", domain.SourceWeather},
	domain.RiskTypeDisease:    {domain.RecommendationCropProtection, "Protect the crop from disease", domain.SourceWeather},
	domain.RiskTypeMarket:     {domain.RecommendationMarketAction, "Respond to falling prices", domain.SourceMarket},
	domain.RiskTypeIrrigation: {domain.RecommendationIrrigation, "Secure water for the crop", domain.SourceWeather},
}

// FromAlert converts a risk alert into a draft recommendation; priority mirrors severity
func FromAlert(alert domain.RiskAlert, snaps domain.Snapshots) (domain.Recommendation, bool) {
	advice, ok := riskAdvice[alert.RiskType]
	if !ok {
		return domain.Recommendation{}, false
	}
	priority := alert.Severity.Priority()
	if !priority.Valid() {
		return domain.Recommendation{}, false
	}

	var actions []string
	if alert.MitigationStrategy != "" {
		actions = []string{alert.MitigationStrategy}
	}
	rec := domain.Recommendation{
		Title:          advice.title,
		Description:    alert.Description,
		Type:           advice.recType,
		Priority:       priority,
		ActionItems:    actions,
		Reasoning:      fmt.Sprintf("Risk assessment rated the %s risk %s", alert.RiskType, alert.Severity),
		ExpectedImpact: "Limits crop loss from the detected risk",
		UrgencyHours:   UrgencyForSeverity(alert.Severity),
		DataSources:    map[string]string{},
	}
	if meta, ok := snapshotMeta(snaps, advice.source); ok {
		rec.DataSources[advice.source] = meta.Reference
		rec.ExpiresAt = validUntil(meta)
	}
	return rec, true
}

// UrgencyForSeverity is the action window for a severity: critical now, low within a week
func UrgencyForSeverity(s domain.Severity) int {
	switch s {
	case domain.SeverityCritical:
		return urgencyCritical
	case domain.SeverityHigh:
		return urgencyHigh
	case domain.SeverityMedium:
		return urgencyMedium
	}
	return urgencyLow
}

func snapshotMeta(snaps domain.Snapshots, kind string) (domain.SnapshotMeta, bool) {
	switch kind {
	case domain.SourceWeather:
		if snaps.Weather != nil {
			return snaps.Weather.SnapshotMeta, true
		}
	case domain.SourceMarket:
		if snaps.Market != nil {
			return snaps.Market.SnapshotMeta, true
		}
	case domain.SourceSoil:
		if snaps.Soil != nil {
			return snaps.Soil.SnapshotMeta, true
		}
	}
	return domain.SnapshotMeta{}, false
}

// Stamp fills in identity fields on drafts for one client and cycle
func Stamp(drafts []domain.Recommendation, clientID, cycleID string, now time.Time) []domain.Recommendation {
	for i := range drafts {
		d := &drafts[i]
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		d.ClientID = clientID
		if d.CycleID == "" {
			d.CycleID = cycleID
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}
		if d.ActionItems == nil {
			d.ActionItems = []string{}
		}
		if d.DataSources == nil {
			d.DataSources = map[string]string{}
		}
	}
	return drafts
}
