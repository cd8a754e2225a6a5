package mission

import (
	"testing"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
)

func TestRuleProgress_TotalMinutes(t *testing.T) {
	t.Parallel()

	rule := Rule{Definition: Definition{ID: "focus-120", Requirement: RequirementTotalMinutes, Threshold: 120, RewardXP: 50, Active: true}}

	tests := []struct {
		minutes  int
		progress int
		met      bool
	}{
		{minutes: 0, progress: 0, met: false},
		{minutes: 60, progress: 50, met: false},
		{minutes: 119, progress: 99, met: false},
		{minutes: 120, progress: 100, met: true},
		{minutes: 300, progress: 100, met: true},
	}

	for _, tc := range tests {
		if got := rule.Progress(nil, tc.minutes); got != tc.progress {
			t.Fatalf("unexpected progress at %d minutes: got=%d want=%d", tc.minutes, got, tc.progress)
		}
		if got := rule.IsMet(nil, tc.minutes); got != tc.met {
			t.Fatalf("unexpected met at %d minutes: got=%v want=%v", tc.minutes, got, tc.met)
		}
	}
}

func TestRuleValue_ExcludesSyntheticRecords(t *testing.T) {
	t.Parallel()

	records := []activity.Record{
		{Subject: "Math", DurationMinutes: 30},
		{Subject: "math", DurationMinutes: 50},
		{Subject: "Biology", DurationMinutes: 20},
		{Subject: "focus-60", RewardMarker: Marker("focus-60")},
	}

	tests := []struct {
		requirement RequirementType
		want        int
	}{
		{requirement: RequirementTotalMinutes, want: 100},
		{requirement: RequirementSessionCount, want: 3},
		{requirement: RequirementLongSession, want: 50},
		{requirement: RequirementDistinctSubjects, want: 2},
	}

	for _, tc := range tests {
		rule := Rule{Definition: Definition{ID: "m", Requirement: tc.requirement, Threshold: 10}}
		if got := rule.Value(records, -1); got != tc.want {
			t.Fatalf("unexpected %s value: got=%d want=%d", tc.requirement, got, tc.want)
		}
	}
}

func TestRuleProgress_Monotonic(t *testing.T) {
	t.Parallel()

	rule := Rule{Definition: Definition{ID: "m", Requirement: RequirementTotalMinutes, Threshold: 37}}
	prev := 0
	for minutes := 0; minutes <= 200; minutes++ {
		got := rule.Progress(nil, minutes)
		if got < prev {
			t.Fatalf("progress decreased at %d: prev=%d got=%d", minutes, prev, got)
		}
		if (got == 100) != rule.IsMet(nil, minutes) {
			t.Fatalf("met and progress disagree at %d", minutes)
		}
		prev = got
	}
}

func TestNewRules_SkipsInactive(t *testing.T) {
	t.Parallel()

	rules := NewRules([]Definition{
		{ID: "a", Active: true},
		{ID: "b", Active: false},
	})
	if len(rules) != 1 || rules[0].Definition.ID != "a" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

func TestNewGrant_SharesKey(t *testing.T) {
	t.Parallel()

	seq := 0
	newID := func() string {
		seq++
		return string(rune('a' + seq))
	}
	grant := NewGrant(Definition{ID: "focus-60", RewardXP: 40}, "u1", "2026-10-17", fixedNow, newID)

	if grant.Entry.IdempotencyKey != "mission:u1:focus-60:2026-10-17" {
		t.Fatalf("unexpected key: %s", grant.Entry.IdempotencyKey)
	}
	if grant.Claim.IdempotencyKey != grant.Entry.IdempotencyKey {
		t.Fatalf("claim and entry keys differ")
	}
	if !grant.Marker.IsSynthetic() || grant.Marker.DurationMinutes != 0 {
		t.Fatalf("marker record must be synthetic with zero duration")
	}
	if grant.Entry.Amount != 40 {
		t.Fatalf("unexpected amount: %d", grant.Entry.Amount)
	}
}

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
