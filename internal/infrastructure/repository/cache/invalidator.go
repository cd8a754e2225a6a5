package cache

import (
	"context"

	basecache "github.com/riskibarqy/studyquest/internal/platform/cache"
)

const (
	ScopeSeasons = "seasons"
	ScopeCatalog = "catalog"
	ScopeAll     = "all"
)

// Invalidator drops read-through entries after seasons, missions or the
// reward catalog were changed outside the running process.
type Invalidator struct {
	cache *basecache.Store
}

func NewInvalidator(cache *basecache.Store) *Invalidator {
	return &Invalidator{cache: cache}
}

// Invalidate reports false for an unknown scope.
func (i *Invalidator) Invalidate(ctx context.Context, scope string) bool {
	switch scope {
	case ScopeSeasons:
		i.invalidateSeasons(ctx)
	case ScopeCatalog:
		i.invalidateCatalog(ctx)
	case ScopeAll:
		i.invalidateSeasons(ctx)
		i.invalidateCatalog(ctx)
	default:
		return false
	}
	return true
}

func (i *Invalidator) invalidateSeasons(ctx context.Context) {
	i.cache.Delete(ctx, "season:active")
	i.cache.Delete(ctx, "season:list")
	i.cache.DeletePrefix(ctx, "season:id:")
}

func (i *Invalidator) invalidateCatalog(ctx context.Context) {
	i.cache.DeletePrefix(ctx, "mission:")
	i.cache.DeletePrefix(ctx, "reward:")
}
