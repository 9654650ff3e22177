// Package risk turns condition snapshots into risk alerts for crop cycles.
package risk

import (
	"sort"
	"time"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

// Finding is one rule's verdict about a cycle
type Finding struct {
	Rule        string
	RiskType    domain.RiskType
	Severity    domain.Severity
	Description string
	Mitigation  string
	// Specificity breaks severity ties; zero means the risk type's own specificity
	Specificity int
	// Source is the snapshot kind the finding was derived from
	Source string
}

func (f Finding) specificity() int {
	if f.Specificity > 0 {
		return f.Specificity
	}
	return f.RiskType.Specificity()
}

// Model evaluates risk rules; implementations must be pure and safe for concurrent use
type Model interface {
	Evaluate(cycle domain.CropCycle, profile *crops.Profile, snaps domain.Snapshots, now time.Time) []Finding
}

// ModelFunc adapts a function to Model
type ModelFunc func(cycle domain.CropCycle, profile *crops.Profile, snaps domain.Snapshots, now time.Time) []Finding

// Evaluate calls f
func (f ModelFunc) Evaluate(cycle domain.CropCycle, profile *crops.Profile, snaps domain.Snapshots, now time.Time) []Finding {
	return f(cycle, profile, snaps, now)
}

// Aggregate keeps one finding per risk type: the most severe, ties going to the more specific rule.
// Output is ordered by severity, then specificity, then risk type.
func Aggregate(findings []Finding) []Finding {
	best := make(map[domain.RiskType]Finding, len(findings))
	for _, f := range findings {
		if !f.RiskType.Valid() || f.Severity.Rank() == 0 {
			continue
		}
		cur, ok := best[f.RiskType]
		if !ok || outranks(f, cur) {
			best[f.RiskType] = f
		}
	}

	out := make([]Finding, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if outranks(out[i], out[j]) {
			return true
		}
		if outranks(out[j], out[i]) {
			return false
		}
		return out[i].RiskType < out[j].RiskType
	})
	return out
}

// Highest returns the single most severe finding across all risk types
func Highest(findings []Finding) (Finding, bool) {
	var top Finding
	found := false
	for _, f := range findings {
		if !found || outranks(f, top) {
			top, found = f, true
		}
	}
	return top, found
}

func outranks(a, b Finding) bool {
	if a.Severity.Rank() != b.Severity.Rank() {
		return a.Severity.Rank() > b.Severity.Rank()
	}
	return a.specificity() > b.specificity()
}
