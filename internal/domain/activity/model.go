package activity

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout formats the UTC calendar day used to bucket activity and claims.
const DayLayout = "2006-01-02"

// Record is one study session, or a zero-duration synthetic marker written
// when a mission reward is granted.
type Record struct {
	ID              string
	ActorID         string
	Subject         string
	StartedAt       time.Time
	DurationMinutes int
	Day             string
	// RewardMarker is set only on synthetic records.
	RewardMarker string
	// IdempotencyKey is set only on real sessions.
	IdempotencyKey string
	CreatedAt      time.Time
}

func (r Record) IsSynthetic() bool {
	return strings.TrimSpace(r.RewardMarker) != ""
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ActorID) == "" {
		return fmt.Errorf("actor id is required")
	}
	if strings.TrimSpace(r.Day) == "" {
		return fmt.Errorf("activity day is required")
	}
	if r.DurationMinutes < 0 {
		return fmt.Errorf("duration must be >= 0")
	}
	if !r.IsSynthetic() && r.DurationMinutes == 0 {
		return fmt.Errorf("session duration must be > 0")
	}
	return nil
}

// DayKey returns the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// TotalMinutes sums real session minutes, ignoring synthetic markers.
func TotalMinutes(records []Record) int {
	total := 0
	for _, r := range records {
		if r.IsSynthetic() {
			continue
		}
		total += r.DurationMinutes
	}
	return total
}

// HasMarker reports whether records already contain the given reward marker.
func HasMarker(records []Record, marker string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}
	for _, r := range records {
		if r.RewardMarker == marker {
			return true
		}
	}
	return false
}

// Summary aggregates an actor's session history for badge and streak metrics.
type Summary struct {
	TotalMinutes  int
	SessionCount  int
	CurrentStreak int
	ActiveDays30  int
}
