package league

// Classify maps lifetime XP and a consistency ratio (0..1) to a tier.
// Thresholds are evaluated from the top tier downward and the first tier whose
// XP and consistency minimums are both met wins.
func Classify(lifetimeXP int64, consistency float64) Tier {
	for i := len(Ladder) - 1; i > 0; i-- {
		item := Ladder[i]
		if lifetimeXP >= item.MinXP && consistency >= item.MinConsistency {
			return item.Tier
		}
	}
	return Floor()
}

// Consistency converts active days inside the window into a ratio clamped to [0, 1].
func Consistency(activeDays int) float64 {
	if activeDays <= 0 {
		return 0
	}
	if activeDays >= ConsistencyWindowDays {
		return 1
	}
	return float64(activeDays) / float64(ConsistencyWindowDays)
}

type Movement string

const (
	MovementPromoted  Movement = "promoted"
	MovementDemoted   Movement = "demoted"
	MovementUnchanged Movement = "unchanged"
)

// Compare reports how next relates to a previously stored tier. An unknown
// previous tier is treated as the floor.
func Compare(previous, next Tier) Movement {
	prev := previous.Level()
	if prev < 0 {
		prev = 0
	}
	curr := next.Level()
	switch {
	case curr > prev:
		return MovementPromoted
	case curr < prev:
		return MovementDemoted
	default:
		return MovementUnchanged
	}
}
