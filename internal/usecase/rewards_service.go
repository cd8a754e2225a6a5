package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/platform/id"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

type BadgeView struct {
	Badge      reward.Badge
	Progress   int
	Unlocked   bool
	UnlockedAt *time.Time
}

type CatalogView struct {
	Item               reward.CatalogItem
	Purchasable        bool
	PurchasedThisCycle bool
}

type RewardsDashboard struct {
	AvailableXP int64
	WeekKey     string
	Stats       reward.Stats
	Badges      []BadgeView
	Catalog     []CatalogView
	Missions    []MissionProgress
}

type PurchaseInput struct {
	ActorID        string
	ItemID         string
	IdempotencyKey string
}

type PurchaseResult struct {
	Purchase reward.Purchase
	Replayed bool
	Balance  int64
	Message  string
}

type RewardsService struct {
	rewardRepo   reward.Repository
	ledgerRepo   ledger.Repository
	actorRepo    actor.Repository
	activityRepo activity.Repository
	missionRepo  mission.Repository
	missionSvc   *MissionService
	requester    MaterializationRequester
	idGen        id.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewRewardsService(
	rewardRepo reward.Repository,
	ledgerRepo ledger.Repository,
	actorRepo actor.Repository,
	activityRepo activity.Repository,
	missionRepo mission.Repository,
	missionSvc *MissionService,
	requester MaterializationRequester,
	idGen id.Generator,
	logger *logging.Logger,
) *RewardsService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RewardsService{
		rewardRepo:   rewardRepo,
		ledgerRepo:   ledgerRepo,
		actorRepo:    actorRepo,
		activityRepo: activityRepo,
		missionRepo:  missionRepo,
		missionSvc:   missionSvc,
		requester:    requester,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

type dashboardSources struct {
	balance   int64
	profile   actor.Profile
	summary   activity.Summary
	claims    int
	badges    []reward.Badge
	unlocks   []reward.BadgeUnlock
	catalog   []reward.CatalogItem
	purchases []reward.Purchase
	missions  []MissionProgress
}

// Dashboard loads every source concurrently, builds one Stats value and
// evaluates all badges and catalog items against it. Badges that reach 100
// are unlocked.
func (s *RewardsService) Dashboard(ctx context.Context, actorID string) (RewardsDashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.Dashboard")
	defer span.End()

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return RewardsDashboard{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	src, err := s.loadDashboardSources(ctx, actorID, now)
	if err != nil {
		return RewardsDashboard{}, err
	}

	stats := reward.Stats{
		TotalMinutes:  int64(src.summary.TotalMinutes),
		SessionCount:  int64(src.summary.SessionCount),
		CurrentStreak: int64(src.summary.CurrentStreak),
		LeagueLevel:   int64(src.profile.Tier().Level() + 1),
		MissionClaims: int64(src.claims),
		LifetimeXP:    src.profile.LifetimeXP,
	}

	unlocked := make(map[string]time.Time, len(src.unlocks))
	for _, item := range src.unlocks {
		unlocked[item.BadgeID] = item.UnlockedAt
	}

	badges := make([]BadgeView, 0, len(src.badges))
	for _, badge := range src.badges {
		at, isUnlocked := unlocked[badge.ID]
		view := BadgeView{
			Badge:    badge,
			Progress: reward.BadgeProgress(badge, stats, isUnlocked),
			Unlocked: isUnlocked,
		}
		if !isUnlocked && view.Progress == 100 {
			if _, err := s.rewardRepo.Unlock(ctx, reward.BadgeUnlock{ActorID: actorID, BadgeID: badge.ID, UnlockedAt: now}); err != nil {
				s.logger.WarnContext(ctx, "unlock badge failed", "actor_id", actorID, "badge_id", badge.ID, "error", err)
			} else {
				view.Unlocked = true
				at = now
				isUnlocked = true
			}
		}
		if isUnlocked {
			unlockedAt := at
			view.UnlockedAt = &unlockedAt
		}
		badges = append(badges, view)
	}

	catalog := make([]CatalogView, 0, len(src.catalog))
	for _, item := range src.catalog {
		if !item.Active {
			continue
		}
		purchasable, purchased := reward.Purchasable(item, src.purchases, item.CycleKey(now), src.balance)
		catalog = append(catalog, CatalogView{
			Item:               item,
			Purchasable:        purchasable,
			PurchasedThisCycle: purchased,
		})
	}

	return RewardsDashboard{
		AvailableXP: src.balance,
		WeekKey:     reward.WeekKey(now),
		Stats:       stats,
		Badges:      badges,
		Catalog:     catalog,
		Missions:    src.missions,
	}, nil
}

func (s *RewardsService) loadDashboardSources(ctx context.Context, actorID string, now time.Time) (dashboardSources, error) {
	var src dashboardSources
	var profileExists bool

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		value, err := s.ledgerRepo.Balance(ctx, actorID)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}
		src.balance = value
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, exists, err := s.actorRepo.GetByID(ctx, actorID)
		if err != nil {
			return fmt.Errorf("get actor: %w", err)
		}
		src.profile, profileExists = value, exists
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, err := s.activityRepo.Summarize(ctx, actorID, now)
		if err != nil {
			return fmt.Errorf("summarize activity: %w", err)
		}
		src.summary = value
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, err := s.missionRepo.CountClaims(ctx, actorID)
		if err != nil {
			return fmt.Errorf("count mission claims: %w", err)
		}
		src.claims = value
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, err := s.rewardRepo.ListBadges(ctx)
		if err != nil {
			return fmt.Errorf("list badges: %w", err)
		}
		src.badges = value
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, err := s.rewardRepo.ListUnlocks(ctx, actorID)
		if err != nil {
			return fmt.Errorf("list badge unlocks: %w", err)
		}
		src.unlocks = value
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, err := s.rewardRepo.ListCatalog(ctx)
		if err != nil {
			return fmt.Errorf("list catalog: %w", err)
		}
		src.catalog = value
		return nil
	})
	p.Go(func(ctx context.Context) error {
		value, err := s.rewardRepo.ListPurchases(ctx, actorID)
		if err != nil {
			return fmt.Errorf("list purchases: %w", err)
		}
		src.purchases = value
		return nil
	})
	if s.missionSvc != nil {
		p.Go(func(ctx context.Context) error {
			value, err := s.missionSvc.ListToday(ctx, actorID)
			if err != nil {
				return err
			}
			src.missions = value
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return dashboardSources{}, err
	}
	if !profileExists {
		return dashboardSources{}, fmt.Errorf("%w: actor=%s", ErrNotFound, actorID)
	}
	return src, nil
}

// Purchase buys a catalog item once per cycle. A replay with the same
// idempotency key returns the original purchase without a second debit.
func (s *RewardsService) Purchase(ctx context.Context, input PurchaseInput) (PurchaseResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.Purchase")
	defer span.End()

	input.ActorID = strings.TrimSpace(input.ActorID)
	input.ItemID = strings.TrimSpace(input.ItemID)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	if input.ActorID == "" {
		return PurchaseResult{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	if input.ItemID == "" {
		return PurchaseResult{}, fmt.Errorf("%w: reward id is required", ErrInvalidInput)
	}
	if input.IdempotencyKey == "" {
		return PurchaseResult{}, fmt.Errorf("%w: idempotency key is required", ErrInvalidInput)
	}

	item, exists, err := s.rewardRepo.GetCatalogItem(ctx, input.ItemID)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("get catalog item: %w", err)
	}
	if !exists || !item.Active {
		return PurchaseResult{}, fmt.Errorf("%w: reward=%s", ErrNotFound, input.ItemID)
	}

	nextID, err := id.Batch(s.idGen, 2)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("generate purchase ids: %w", err)
	}
	order := reward.NewPurchaseOrder(item, input.ActorID, input.IdempotencyKey, s.now().UTC(), nextID)

	stored, err := s.rewardRepo.Purchase(ctx, order)
	switch {
	case errors.Is(err, reward.ErrAlreadyPurchased):
		return PurchaseResult{}, fmt.Errorf("%w: reward=%s cycle=%q", ErrAlreadyPurchased, item.ID, order.Purchase.WeekKey)
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return PurchaseResult{}, fmt.Errorf("%w: reward=%s costs %d xp", ErrInsufficientXP, item.ID, item.CostXP)
	case err != nil:
		return PurchaseResult{}, fmt.Errorf("purchase reward=%s: %w", item.ID, err)
	}

	result := PurchaseResult{
		Purchase: stored.Purchase,
		Replayed: stored.Replayed,
		Balance:  stored.Balance,
		Message:  fmt.Sprintf("%s purchased", item.Name),
	}
	if stored.Replayed {
		result.Message = fmt.Sprintf("%s was already purchased with this request", item.Name)
		return result, nil
	}

	if s.requester != nil {
		if err := s.requester.RequestMaterialization(ctx, "reward_purchase"); err != nil {
			s.logger.WarnContext(ctx, "request snapshot materialization failed", "actor_id", input.ActorID, "error", err)
		}
	}
	return result, nil
}
