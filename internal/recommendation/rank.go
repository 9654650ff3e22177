package recommendation

import (
	"sort"
	"time"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/utils"
)

// DropExpired removes recommendations whose action window closed at or before now
func DropExpired(recs []domain.Recommendation, now time.Time) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(recs))
	for _, r := range recs {
		if !r.IsExpired(now) {
			out = append(out, r)
		}
	}
	return out
}

func dedupKey(r domain.Recommendation) string {
	return r.ClientID + "|" + string(r.Type) + "|" + utils.NormalizeTitle(r.Title) + "|" + r.CycleID
}

// Dedup merges recommendations sharing client, type, normalized title and cycle.
// The merged entry takes the content of the higher-priority draft, the union of action items and
// data sources, the shortest urgency, the latest expiry and the latest creation time.
// Output keeps first-seen order.
func Dedup(recs []domain.Recommendation) []domain.Recommendation {
	index := make(map[string]int, len(recs))
	out := make([]domain.Recommendation, 0, len(recs))
	for _, r := range recs {
		key := dedupKey(r)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		out[i] = merge(out[i], r)
	}
	return out
}

func merge(a, b domain.Recommendation) domain.Recommendation {
	base, other := a, b
	if b.Priority.Rank() > a.Priority.Rank() {
		base, other = b, a
	}
	merged := base
	merged.ActionItems = utils.UnionStrings(base.ActionItems, other.ActionItems)

	merged.DataSources = make(map[string]string, len(base.DataSources)+len(other.DataSources))
	for k, v := range other.DataSources {
		merged.DataSources[k] = v
	}
	for k, v := range base.DataSources {
		merged.DataSources[k] = v
	}

	merged.UrgencyHours = min(base.UrgencyHours, other.UrgencyHours)
	if other.CreatedAt.After(merged.CreatedAt) {
		merged.CreatedAt = other.CreatedAt
	}
	switch {
	case base.ExpiresAt == nil || other.ExpiresAt == nil:
		merged.ExpiresAt = nil
	case other.ExpiresAt.After(*base.ExpiresAt):
		t := *other.ExpiresAt
		merged.ExpiresAt = &t
	}
	return merged
}

// Rank orders by priority descending, then urgency ascending, then newest first
func Rank(recs []domain.Recommendation) []domain.Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if a.UrgencyHours != b.UrgencyHours {
			return a.UrgencyHours < b.UrgencyHours
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return recs
}

// MostRecent returns up to limit recommendations, newest first; ties keep ranked order.
// limit <= 0 returns all of them.
func MostRecent(recs []domain.Recommendation, limit int) []domain.Recommendation {
	out := make([]domain.Recommendation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
