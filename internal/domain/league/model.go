package league

import "strings"

// Tier is a discrete skill/consistency band derived from lifetime XP and activity.
type Tier string

const (
	TierBronze      Tier = "bronze"
	TierSilver      Tier = "silver"
	TierGold        Tier = "gold"
	TierPlatinum    Tier = "platinum"
	TierDiamond     Tier = "diamond"
	TierMaster      Tier = "master"
	TierGrandmaster Tier = "grandmaster"
	TierLegend      Tier = "legend"
)

// Threshold gates a tier: both minimums must hold.
type Threshold struct {
	Tier           Tier
	Label          string
	MinXP          int64
	MinConsistency float64
}

// ConsistencyWindowDays is the lookback used for the consistency ratio.
const ConsistencyWindowDays = 30

// Ladder is ordered from the floor tier to the top tier.
var Ladder = []Threshold{
	{Tier: TierBronze, Label: "Bronze", MinXP: 0, MinConsistency: 0},
	{Tier: TierSilver, Label: "Silver", MinXP: 1_000, MinConsistency: 0.10},
	{Tier: TierGold, Label: "Gold", MinXP: 5_000, MinConsistency: 0.20},
	{Tier: TierPlatinum, Label: "Platinum", MinXP: 15_000, MinConsistency: 0.35},
	{Tier: TierDiamond, Label: "Diamond", MinXP: 30_000, MinConsistency: 0.50},
	{Tier: TierMaster, Label: "Master", MinXP: 45_000, MinConsistency: 0.65},
	{Tier: TierGrandmaster, Label: "Grandmaster", MinXP: 80_000, MinConsistency: 0.80},
	{Tier: TierLegend, Label: "Legend", MinXP: 150_000, MinConsistency: 0.90},
}

func Floor() Tier {
	return Ladder[0].Tier
}

func Top() Tier {
	return Ladder[len(Ladder)-1].Tier
}

// Level returns the zero-based position of the tier in the ladder, -1 when unknown.
func (t Tier) Level() int {
	for i, item := range Ladder {
		if item.Tier == t {
			return i
		}
	}
	return -1
}

func (t Tier) Valid() bool {
	return t.Level() >= 0
}

func (t Tier) Label() string {
	if idx := t.Level(); idx >= 0 {
		return Ladder[idx].Label
	}
	return string(t)
}

// ParseTier accepts either the code or the display label, case-insensitively.
func ParseTier(raw string) (Tier, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, item := range Ladder {
		if string(item.Tier) == value || strings.ToLower(item.Label) == value {
			return item.Tier, true
		}
	}
	return "", false
}
