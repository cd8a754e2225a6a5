package cache

import (
	"context"

	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	basecache "github.com/riskibarqy/studyquest/internal/platform/cache"
)

type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "season:active", func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	key := "season:id:" + seasonID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	v, err := r.cache.GetOrLoad(ctx, "season:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]season.Season(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]season.Season)
	return append([]season.Season(nil), items...), nil
}

type cachedSeason struct {
	value  season.Season
	exists bool
}

// MissionRepository caches definitions only. Claims and grants always hit
// the underlying store.
type MissionRepository struct {
	mission.Repository
	cache *basecache.Store
}

func NewMissionRepository(next mission.Repository, cache *basecache.Store) *MissionRepository {
	return &MissionRepository{Repository: next, cache: cache}
}

func (r *MissionRepository) ListDefinitions(ctx context.Context) ([]mission.Definition, error) {
	v, err := r.cache.GetOrLoad(ctx, "mission:definitions", func(ctx context.Context) (any, error) {
		items, err := r.Repository.ListDefinitions(ctx)
		if err != nil {
			return nil, err
		}
		return append([]mission.Definition(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]mission.Definition)
	return append([]mission.Definition(nil), items...), nil
}

func (r *MissionRepository) GetDefinition(ctx context.Context, missionID string) (mission.Definition, bool, error) {
	items, err := r.ListDefinitions(ctx)
	if err != nil {
		return mission.Definition{}, false, err
	}
	for _, item := range items {
		if item.ID == missionID {
			return item, true, nil
		}
	}
	return mission.Definition{}, false, nil
}

// RewardRepository caches the badge list and catalog. Unlocks, purchases
// and balances are per actor and pass through.
type RewardRepository struct {
	reward.Repository
	cache *basecache.Store
}

func NewRewardRepository(next reward.Repository, cache *basecache.Store) *RewardRepository {
	return &RewardRepository{Repository: next, cache: cache}
}

func (r *RewardRepository) ListBadges(ctx context.Context) ([]reward.Badge, error) {
	v, err := r.cache.GetOrLoad(ctx, "reward:badges", func(ctx context.Context) (any, error) {
		items, err := r.Repository.ListBadges(ctx)
		if err != nil {
			return nil, err
		}
		return append([]reward.Badge(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]reward.Badge)
	return append([]reward.Badge(nil), items...), nil
}

func (r *RewardRepository) ListCatalog(ctx context.Context) ([]reward.CatalogItem, error) {
	v, err := r.cache.GetOrLoad(ctx, "reward:catalog", func(ctx context.Context) (any, error) {
		items, err := r.Repository.ListCatalog(ctx)
		if err != nil {
			return nil, err
		}
		return append([]reward.CatalogItem(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]reward.CatalogItem)
	return append([]reward.CatalogItem(nil), items...), nil
}

func (r *RewardRepository) GetCatalogItem(ctx context.Context, itemID string) (reward.CatalogItem, bool, error) {
	items, err := r.ListCatalog(ctx)
	if err != nil {
		return reward.CatalogItem{}, false, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, true, nil
		}
	}
	return reward.CatalogItem{}, false, nil
}
