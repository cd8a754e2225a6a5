package activity

import (
	"testing"
	"time"
)

func TestTotalMinutes_IgnoresSyntheticMarkers(t *testing.T) {
	records := []Record{
		{ActorID: "a", DurationMinutes: 40},
		{ActorID: "a", DurationMinutes: 20},
		{ActorID: "a", RewardMarker: "mission_reward:focus-hour"},
	}
	if got := TotalMinutes(records); got != 60 {
		t.Fatalf("unexpected total: got=%d want=60", got)
	}
	if !HasMarker(records, "mission_reward:focus-hour") {
		t.Fatalf("expected marker to be found")
	}
	if HasMarker(records, "") {
		t.Fatalf("empty marker must never match")
	}
}

func TestRecordValidate(t *testing.T) {
	if err := (Record{ActorID: "a", Day: "2026-10-12", DurationMinutes: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero-minute session")
	}
	if err := (Record{ActorID: "a", Day: "2026-10-12", RewardMarker: "m"}).Validate(); err != nil {
		t.Fatalf("synthetic marker must accept zero duration: %v", err)
	}
}

func TestCurrentStreak(t *testing.T) {
	now := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		days []string
		want int
	}{
		{name: "empty", days: nil, want: 0},
		{name: "today only", days: []string{"2026-10-14"}, want: 1},
		{name: "ends yesterday", days: []string{"2026-10-12", "2026-10-13"}, want: 2},
		{name: "gap breaks streak", days: []string{"2026-10-10", "2026-10-13", "2026-10-14"}, want: 2},
		{name: "stale activity", days: []string{"2026-10-01"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStreak(tt.days, now); got != tt.want {
				t.Fatalf("unexpected streak: got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestActiveDaysSince(t *testing.T) {
	since := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)
	days := []string{"2026-09-30", "2026-10-01", "2026-10-01", "2026-10-05"}
	if got := ActiveDaysSince(days, since); got != 2 {
		t.Fatalf("unexpected active days: got=%d want=2", got)
	}
}
