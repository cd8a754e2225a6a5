package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/studyquest/internal/platform/cache"
)

type countingSeasonRepository struct {
	season.Repository
	activeCalls int
}

func (r *countingSeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	r.activeCalls++
	return r.Repository.GetActive(ctx)
}

func TestSeasonRepository_GetActiveIsCached(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore(memory.Fixtures{Seasons: memory.SeedSeasons(now)})
	next := &countingSeasonRepository{Repository: memory.NewSeasonRepository(store)}
	repo := NewSeasonRepository(next, basecache.NewStore(time.Minute))

	for i := 0; i < 3; i++ {
		item, exists, err := repo.GetActive(context.Background())
		if err != nil {
			t.Fatalf("get active season: %v", err)
		}
		if !exists || item.Status != season.StatusActive {
			t.Fatalf("unexpected season: %+v exists=%t", item, exists)
		}
	}
	if next.activeCalls != 1 {
		t.Fatalf("expected one load, got=%d", next.activeCalls)
	}
}

func TestRewardRepository_CatalogLookupUsesCachedList(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.Fixtures{Catalog: memory.SeedCatalog()})
	repo := NewRewardRepository(memory.NewRewardRepository(store), basecache.NewStore(time.Minute))

	items, err := repo.ListCatalog(context.Background())
	if err != nil {
		t.Fatalf("list catalog: %v", err)
	}
	if len(items) == 0 {
		t.Fatalf("expected seeded catalog")
	}

	got, exists, err := repo.GetCatalogItem(context.Background(), items[0].ID)
	if err != nil {
		t.Fatalf("get catalog item: %v", err)
	}
	if !exists || got.ID != items[0].ID {
		t.Fatalf("unexpected catalog item: %+v", got)
	}

	if _, exists, _ := repo.GetCatalogItem(context.Background(), "missing"); exists {
		t.Fatalf("expected missing item")
	}

	// Pass-through methods still reach the store.
	if _, err := repo.ListPurchases(context.Background(), "nobody"); err != nil {
		t.Fatalf("list purchases: %v", err)
	}
	var _ reward.Repository = repo
}
