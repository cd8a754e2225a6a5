package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/season"
)

// loadRankingEntries builds ranking input for the full actor population.
// With a season the basis is seasonal XP, otherwise lifetime XP. The league
// is always derived from lifetime XP and consistency.
func loadRankingEntries(
	ctx context.Context,
	actorRepo actor.Repository,
	ledgerRepo ledger.Repository,
	activeSeason *season.Season,
) ([]ranking.Entry, error) {
	profiles, err := actorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}

	var seasonal map[string]int64
	if activeSeason != nil {
		seasonal, err = ledgerRepo.SumByWindow(ctx, activeSeason.StartsAt, activeSeason.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("sum seasonal xp season=%s: %w", activeSeason.ID, err)
		}
	}

	entries := make([]ranking.Entry, 0, len(profiles))
	for _, profile := range profiles {
		basis := profile.LifetimeXP
		if activeSeason != nil {
			basis = seasonal[profile.ID]
		}
		entries = append(entries, ranking.Entry{
			ActorID:     profile.ID,
			DisplayName: profile.DisplayName,
			League:      profile.Tier(),
			Premium:     profile.Premium,
			BasisXP:     basis,
		})
	}

	return entries, nil
}
