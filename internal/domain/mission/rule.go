package mission

import (
	"strings"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
)

// Rule evaluates one mission definition against a day of activity.
type Rule struct {
	Definition Definition
}

func NewRules(defs []Definition) []Rule {
	out := make([]Rule, 0, len(defs))
	for _, def := range defs {
		if !def.Active {
			continue
		}
		out = append(out, Rule{Definition: def})
	}
	return out
}

func (r Rule) Marker() string {
	return Marker(r.Definition.ID)
}

// Value returns the raw metric measured against the threshold. Synthetic
// marker records never count.
func (r Rule) Value(records []activity.Record, aggregateMinutes int) int {
	switch r.Definition.Requirement {
	case RequirementTotalMinutes:
		if aggregateMinutes < 0 {
			return activity.TotalMinutes(records)
		}
		return aggregateMinutes
	case RequirementSessionCount:
		count := 0
		for _, item := range records {
			if !item.IsSynthetic() {
				count++
			}
		}
		return count
	case RequirementLongSession:
		longest := 0
		for _, item := range records {
			if !item.IsSynthetic() && item.DurationMinutes > longest {
				longest = item.DurationMinutes
			}
		}
		return longest
	case RequirementDistinctSubjects:
		seen := make(map[string]struct{})
		for _, item := range records {
			if item.IsSynthetic() {
				continue
			}
			subject := strings.ToLower(strings.TrimSpace(item.Subject))
			if subject == "" {
				continue
			}
			seen[subject] = struct{}{}
		}
		return len(seen)
	default:
		return 0
	}
}

// Progress is floor(value*100/threshold) clamped to [0, 100].
func (r Rule) Progress(records []activity.Record, aggregateMinutes int) int {
	return Percent(r.Value(records, aggregateMinutes), r.Definition.Threshold)
}

// IsMet is defined through Progress so met and 100% always agree.
func (r Rule) IsMet(records []activity.Record, aggregateMinutes int) bool {
	return r.Progress(records, aggregateMinutes) == 100
}

// Percent returns floor(value*100/threshold) clamped to [0, 100]. A
// non-positive threshold is treated as already met.
func Percent(value, threshold int) int {
	if threshold <= 0 {
		return 100
	}
	if value <= 0 {
		return 0
	}
	pct := int(int64(value) * 100 / int64(threshold))
	if pct > 100 {
		return 100
	}
	return pct
}
