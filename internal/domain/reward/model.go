package reward

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/ledger"
)

var ErrAlreadyPurchased = errors.New("already purchased this cycle")

type Metric string

const (
	MetricTotalMinutes  Metric = "total_minutes"
	MetricSessionCount  Metric = "session_count"
	MetricStreakDays    Metric = "streak_days"
	MetricLeagueLevel   Metric = "league_level"
	MetricMissionClaims Metric = "mission_claims"
	MetricLifetimeXP    Metric = "lifetime_xp"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricTotalMinutes, MetricSessionCount, MetricStreakDays, MetricLeagueLevel, MetricMissionClaims, MetricLifetimeXP:
		return true
	default:
		return false
	}
}

// Badge is a permanent achievement unlocked once.
type Badge struct {
	ID          string
	Name        string
	Description string
	Metric      Metric
	Threshold   int64
	Category    string
}

type BadgeUnlock struct {
	ActorID    string
	BadgeID    string
	UnlockedAt time.Time
}

type RefreshMode string

const (
	RefreshPermanent RefreshMode = "permanent"
	RefreshWeekly    RefreshMode = "weekly"
)

// CatalogItem is a purchasable perk. DurationMinutes of zero means the
// purchase never expires.
type CatalogItem struct {
	ID              string
	Name            string
	Description     string
	CostXP          int64
	Category        string
	Refresh         RefreshMode
	DurationMinutes int
	Active          bool
}

func (c CatalogItem) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("catalog item id is required")
	}
	if c.CostXP <= 0 {
		return fmt.Errorf("cost xp must be > 0")
	}
	if c.Refresh != RefreshPermanent && c.Refresh != RefreshWeekly {
		return fmt.Errorf("unknown refresh mode %q", c.Refresh)
	}
	if c.DurationMinutes < 0 {
		return fmt.Errorf("duration must be >= 0")
	}
	return nil
}

// CycleKey is the purchase partition of the item at now: empty for
// permanent items, the week key for weekly ones.
func (c CatalogItem) CycleKey(now time.Time) string {
	if c.Refresh == RefreshWeekly {
		return WeekKey(now)
	}
	return ""
}

// ExpiresAt returns created plus the item duration, or nil when unbounded.
func (c CatalogItem) ExpiresAt(created time.Time) *time.Time {
	if c.DurationMinutes <= 0 {
		return nil
	}
	value := created.Add(time.Duration(c.DurationMinutes) * time.Minute)
	return &value
}

// Purchase is unique per (ActorID, ItemID, WeekKey).
type Purchase struct {
	ID             string
	ActorID        string
	ItemID         string
	WeekKey        string
	CostXP         int64
	IdempotencyKey string
	CreatedAt      time.Time
	ExpiresAt      *time.Time
}

// PurchaseOrder is everything a store needs to execute one purchase
// atomically.
type PurchaseOrder struct {
	Purchase Purchase
	Debit    ledger.Entry
}

// PurchaseResult carries Replayed=true when the idempotency key had already
// been used; Purchase then holds the original record.
type PurchaseResult struct {
	Purchase Purchase
	Replayed bool
	Balance  int64
}

// PurchaseKey namespaces a caller-supplied idempotency key per actor and item.
func PurchaseKey(actorID, itemID, callerKey string) string {
	return ledger.Key("purchase", actorID, itemID, callerKey)
}

// NewPurchaseOrder builds the purchase record and matching debit.
func NewPurchaseOrder(item CatalogItem, actorID, callerKey string, now time.Time, newID func() string) PurchaseOrder {
	key := PurchaseKey(actorID, item.ID, callerKey)
	return PurchaseOrder{
		Purchase: Purchase{
			ID:             newID(),
			ActorID:        actorID,
			ItemID:         item.ID,
			WeekKey:        item.CycleKey(now),
			CostXP:         item.CostXP,
			IdempotencyKey: key,
			CreatedAt:      now,
			ExpiresAt:      item.ExpiresAt(now),
		},
		Debit: ledger.Entry{
			ID:             newID(),
			ActorID:        actorID,
			Amount:         -item.CostXP,
			Reason:         ledger.ReasonPurchase,
			IdempotencyKey: key,
			CreatedAt:      now,
		},
	}
}
