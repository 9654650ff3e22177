package recommendation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

var testNow = time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

func rec(title string, recType domain.RecommendationType, priority domain.Priority, urgency int) domain.Recommendation {
	return domain.Recommendation{
		ClientID:     "farmer",
		CycleID:      "c1",
		Title:        title,
		Type:         recType,
		Priority:     priority,
		UrgencyHours: urgency,
		CreatedAt:    testNow,
		ActionItems:  []string{},
		DataSources:  map[string]string{},
	}
}

func TestDedup_MergesSameTypeAndNormalizedTitle(t *testing.T) {
	a := rec("Apply lime", domain.RecommendationSoilImprovement, domain.PriorityMedium, 72)
	a.ActionItems = []string{"Buy lime", "Spread lime"}
	a.DataSources = map[string]string{domain.SourceSoil: "soil-1"}

	b := rec("  apply LIME! ", domain.RecommendationSoilImprovement, domain.PriorityHigh, 24)
	b.ActionItems = []string{"Spread lime", "Retest pH"}
	b.DataSources = map[string]string{domain.SourceWeather: "wx-1"}
	b.CreatedAt = testNow.Add(time.Minute)

	other := rec("Apply lime", domain.RecommendationFertilization, domain.PriorityLow, 72)

	got := Dedup([]domain.Recommendation{a, b, other})
	require.Len(t, got, 2)

	merged := got[0]
	assert.Equal(t, domain.PriorityHigh, merged.Priority)
	assert.Equal(t, "  apply LIME! ", merged.Title, "content comes from the higher-priority draft")
	assert.ElementsMatch(t, []string{"Buy lime", "Spread lime", "Retest pH"}, merged.ActionItems)
	assert.Equal(t, map[string]string{domain.SourceSoil: "soil-1", domain.SourceWeather: "wx-1"}, merged.DataSources)
	assert.Equal(t, 24, merged.UrgencyHours)
	assert.Equal(t, testNow.Add(time.Minute), merged.CreatedAt)

	assert.Equal(t, domain.RecommendationFertilization, got[1].Type)
}

func TestDedup_DifferentCyclesStaySeparate(t *testing.T) {
	a := rec("Irrigate before the dry spell", domain.RecommendationIrrigation, domain.PriorityHigh, 24)
	b := a
	b.CycleID = "c2"
	assert.Len(t, Dedup([]domain.Recommendation{a, b}), 2)
}

func TestDedup_Expiry(t *testing.T) {
	soon := testNow.Add(time.Hour)
	later := testNow.Add(48 * time.Hour)

	a := rec("Pause irrigation", domain.RecommendationIrrigation, domain.PriorityMedium, 24)
	a.ExpiresAt = &soon
	b := a
	b.ExpiresAt = &later
	got := Dedup([]domain.Recommendation{a, b})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].ExpiresAt)
	assert.Equal(t, later, *got[0].ExpiresAt)

	b.ExpiresAt = nil
	got = Dedup([]domain.Recommendation{a, b})
	assert.Nil(t, got[0].ExpiresAt, "an open-ended draft keeps the merged entry open-ended")
}

func TestRank(t *testing.T) {
	older := rec("older", domain.RecommendationIrrigation, domain.PriorityHigh, 24)
	older.CreatedAt = testNow.Add(-time.Hour)
	recs := []domain.Recommendation{
		rec("low", domain.RecommendationMarketAction, domain.PriorityLow, 0),
		older,
		rec("critical", domain.RecommendationSoilImprovement, domain.PriorityCritical, 72),
		rec("high-later", domain.RecommendationIrrigation, domain.PriorityHigh, 48),
		rec("high-newer", domain.RecommendationIrrigation, domain.PriorityHigh, 24),
		rec("medium", domain.RecommendationCropProtection, domain.PriorityMedium, 0),
	}

	got := Rank(recs)
	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"critical", "high-newer", "older", "high-later", "medium", "low"}, titles)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.GreaterOrEqual(t, prev.Priority.Rank(), cur.Priority.Rank())
		if prev.Priority == cur.Priority {
			assert.LessOrEqual(t, prev.UrgencyHours, cur.UrgencyHours)
		}
	}
}

func TestDropExpired(t *testing.T) {
	past := testNow.Add(-time.Minute)
	exact := testNow
	future := testNow.Add(time.Minute)

	expired := rec("expired", domain.RecommendationIrrigation, domain.PriorityHigh, 0)
	expired.ExpiresAt = &past
	atNow := rec("at now", domain.RecommendationIrrigation, domain.PriorityHigh, 0)
	atNow.ExpiresAt = &exact
	live := rec("live", domain.RecommendationIrrigation, domain.PriorityHigh, 0)
	live.ExpiresAt = &future
	open := rec("open", domain.RecommendationIrrigation, domain.PriorityHigh, 0)

	got := DropExpired([]domain.Recommendation{expired, atNow, live, open}, testNow)
	require.Len(t, got, 2)
	assert.Equal(t, "live", got[0].Title)
	assert.Equal(t, "open", got[1].Title)
}

func TestMostRecent(t *testing.T) {
	a := rec("a", domain.RecommendationIrrigation, domain.PriorityHigh, 0)
	b := rec("b", domain.RecommendationIrrigation, domain.PriorityHigh, 0)
	b.CreatedAt = testNow.Add(time.Hour)
	c := rec("c", domain.RecommendationIrrigation, domain.PriorityLow, 0)

	recs := []domain.Recommendation{a, b, c}
	got := MostRecent(recs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "a", got[1].Title, "ties keep ranked order")
	assert.Equal(t, "a", recs[0].Title, "input is not reordered")

	assert.Len(t, MostRecent(recs, 0), 3)
	assert.NotNil(t, MostRecent(nil, 5))
}

func TestFromAlert(t *testing.T) {
	validUntil := testNow.Add(24 * time.Hour)
	snaps := domain.Snapshots{Soil: &domain.SoilSnapshot{SnapshotMeta: domain.SnapshotMeta{Reference: "soil-560001", ValidUntil: validUntil}}}

	got, ok := FromAlert(domain.RiskAlert{
		RiskType:           domain.RiskTypeSoil,
		Severity:           domain.SeverityHigh,
		Description:        "pH 5.2 is below range",
		MitigationStrategy: "Apply lime",
	}, snaps)
	require.True(t, ok)
	assert.Equal(t, domain.RecommendationSoilImprovement, got.Type)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, 24, got.UrgencyHours)
	assert.Equal(t, []string{"Apply lime"}, got.ActionItems)
	assert.Equal(t, "soil-560001", got.DataSources[domain.SourceSoil])
	require.NotNil(t, got.ExpiresAt)
	assert.Equal(t, validUntil, *got.ExpiresAt)

	for _, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical} {
		r, ok := FromAlert(domain.RiskAlert{RiskType: domain.RiskTypePest, Severity: sev}, domain.Snapshots{})
		require.True(t, ok)
		assert.Equal(t, sev.Priority(), r.Priority)
		assert.Nil(t, r.ExpiresAt)
	}

	_, ok = FromAlert(domain.RiskAlert{RiskType: "locusts", Severity: domain.SeverityHigh}, snaps)
	assert.False(t, ok)
}
