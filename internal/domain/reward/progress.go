package reward

// Stats is computed once per dashboard request and shared by every badge.
type Stats struct {
	TotalMinutes  int64
	SessionCount  int64
	CurrentStreak int64
	LeagueLevel   int64
	MissionClaims int64
	LifetimeXP    int64
}

func (s Stats) Value(metric Metric) int64 {
	switch metric {
	case MetricTotalMinutes:
		return s.TotalMinutes
	case MetricSessionCount:
		return s.SessionCount
	case MetricStreakDays:
		return s.CurrentStreak
	case MetricLeagueLevel:
		return s.LeagueLevel
	case MetricMissionClaims:
		return s.MissionClaims
	case MetricLifetimeXP:
		return s.LifetimeXP
	default:
		return 0
	}
}

// BadgeProgress is 100 once unlocked, else floor(value*100/threshold) capped
// at 100.
func BadgeProgress(badge Badge, stats Stats, unlocked bool) int {
	if unlocked {
		return 100
	}
	if badge.Threshold <= 0 {
		return 100
	}
	value := stats.Value(badge.Metric)
	if value <= 0 {
		return 0
	}
	pct := value * 100 / badge.Threshold
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// Purchasable reports whether the item can be bought given the actor's
// purchases and balance at the cycle key.
func Purchasable(item CatalogItem, purchases []Purchase, cycleKey string, balance int64) (purchasable bool, purchasedThisCycle bool) {
	for _, p := range purchases {
		if p.ItemID == item.ID && p.WeekKey == cycleKey {
			purchasedThisCycle = true
			break
		}
	}
	return item.Active && !purchasedThisCycle && balance >= item.CostXP, purchasedThisCycle
}
