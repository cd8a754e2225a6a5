package actor

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/league"
)

// Profile is a participant tracked by ranking and rewards.
type Profile struct {
	ID            string
	DisplayName   string
	LifetimeXP    int64
	CurrentStreak int
	// DeclaredTier is the last tier written back after classification. It is a
	// cache of the derived value and never used as the source for ranking.
	DeclaredTier league.Tier
	Premium      bool
	// ActiveDays30 counts distinct days with study activity in the last 30 days.
	ActiveDays30 int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("actor id is required")
	}
	if p.LifetimeXP < 0 {
		return fmt.Errorf("lifetime xp must be >= 0")
	}
	return nil
}

func (p Profile) Consistency() float64 {
	return league.Consistency(p.ActiveDays30)
}

// Tier derives the league tier from authoritative XP and activity.
func (p Profile) Tier() league.Tier {
	return league.Classify(p.LifetimeXP, p.Consistency())
}
