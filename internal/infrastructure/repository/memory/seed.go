package memory

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/domain/season"
)

// SeedFixtures returns the local development data set.
func SeedFixtures(now time.Time) Fixtures {
	return Fixtures{
		Actors:   SeedActors(now),
		Seasons:  SeedSeasons(now),
		Missions: SeedMissions(),
		Badges:   SeedBadges(),
		Catalog:  SeedCatalog(),
	}
}

func SeedSeasons(now time.Time) []season.Season {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevStart := start.AddDate(0, -1, 0)
	return []season.Season{
		{ID: slug.Make("Season " + prevStart.Format("2006 01")), Name: "Season " + prevStart.Format("January 2006"), StartsAt: prevStart, EndsAt: &start, Status: season.StatusClosed},
		{ID: slug.Make("Season " + start.Format("2006 01")), Name: "Season " + start.Format("January 2006"), StartsAt: start, Status: season.StatusActive},
	}
}

func SeedActors(now time.Time) []actor.Profile {
	names := []struct {
		name       string
		premium    bool
		activeDays int
	}{
		{name: "Ayu Lestari", premium: true, activeDays: 22},
		{name: "Budi Santoso", activeDays: 9},
		{name: "Citra Dewi", premium: true, activeDays: 4},
		{name: "Dimas Pratama", activeDays: 0},
	}

	out := make([]actor.Profile, 0, len(names))
	for _, item := range names {
		out = append(out, actor.Profile{
			ID:           slug.Make(item.name),
			DisplayName:  item.name,
			DeclaredTier: league.Floor(),
			Premium:      item.premium,
			ActiveDays30: item.activeDays,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out
}

func SeedMissions() []mission.Definition {
	items := []mission.Definition{
		{Title: "Focus for 60 minutes", Requirement: mission.RequirementTotalMinutes, Threshold: 60, RewardXP: 40},
		{Title: "Deep work 120 minutes", Requirement: mission.RequirementTotalMinutes, Threshold: 120, RewardXP: 80},
		{Title: "Three sessions", Requirement: mission.RequirementSessionCount, Threshold: 3, RewardXP: 30},
		{Title: "One long session", Requirement: mission.RequirementLongSession, Threshold: 45, RewardXP: 35},
		{Title: "Two subjects", Requirement: mission.RequirementDistinctSubjects, Threshold: 2, RewardXP: 25},
	}
	for i := range items {
		items[i].ID = slug.Make(items[i].Title)
		items[i].Active = true
	}
	return items
}

func SeedBadges() []reward.Badge {
	items := []reward.Badge{
		{Name: "First Hour", Metric: reward.MetricTotalMinutes, Threshold: 60, Category: "time"},
		{Name: "Marathoner", Metric: reward.MetricTotalMinutes, Threshold: 6000, Category: "time"},
		{Name: "Ten Sessions", Metric: reward.MetricSessionCount, Threshold: 10, Category: "sessions"},
		{Name: "Week Streak", Metric: reward.MetricStreakDays, Threshold: 7, Category: "streak"},
		{Name: "Gold League", Metric: reward.MetricLeagueLevel, Threshold: int64(league.TierGold.Level() + 1), Category: "league"},
		{Name: "Mission Hunter", Metric: reward.MetricMissionClaims, Threshold: 20, Category: "missions"},
		{Name: "Ten Thousand", Metric: reward.MetricLifetimeXP, Threshold: 10000, Category: "xp"},
	}
	for i := range items {
		items[i].ID = slug.Make(items[i].Name)
	}
	return items
}

func SeedCatalog() []reward.CatalogItem {
	items := []reward.CatalogItem{
		{Name: "Streak Freeze", CostXP: 150, Category: "utility", Refresh: reward.RefreshWeekly, DurationMinutes: 7 * 24 * 60},
		{Name: "Double XP Hour", CostXP: 300, Category: "boost", Refresh: reward.RefreshWeekly, DurationMinutes: 60},
		{Name: "Night Owl Theme", CostXP: 500, Category: "cosmetic", Refresh: reward.RefreshPermanent},
		{Name: "Profile Frame", CostXP: 1200, Category: "cosmetic", Refresh: reward.RefreshPermanent},
	}
	for i := range items {
		items[i].ID = slug.Make(items[i].Name)
		items[i].Active = true
	}
	return items
}
