package postgres

import "time"

type badgeTableModel struct {
	ID          int64  `db:"id"`
	PublicID    string `db:"public_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Metric      string `db:"metric"`
	Threshold   int64  `db:"threshold"`
	Category    string `db:"category"`
}

type badgeUnlockTableModel struct {
	ActorID    string    `db:"actor_public_id"`
	BadgeID    string    `db:"badge_public_id"`
	UnlockedAt time.Time `db:"unlocked_at"`
}

type catalogItemTableModel struct {
	ID              int64  `db:"id"`
	PublicID        string `db:"public_id"`
	Name            string `db:"name"`
	Description     string `db:"description"`
	CostXP          int64  `db:"cost_xp"`
	Category        string `db:"category"`
	Refresh         string `db:"refresh"`
	DurationMinutes int    `db:"duration_minutes"`
	Active          bool   `db:"active"`
}

type purchaseTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	ActorID        string     `db:"actor_public_id"`
	ItemID         string     `db:"item_public_id"`
	WeekKey        string     `db:"week_key"`
	CostXP         int64      `db:"cost_xp"`
	IdempotencyKey string     `db:"idempotency_key"`
	CreatedAt      time.Time  `db:"created_at"`
	ExpiresAt      *time.Time `db:"expires_at"`
}

type purchaseInsertModel struct {
	PublicID       string     `db:"public_id"`
	ActorID        string     `db:"actor_public_id"`
	ItemID         string     `db:"item_public_id"`
	WeekKey        string     `db:"week_key"`
	CostXP         int64      `db:"cost_xp"`
	IdempotencyKey string     `db:"idempotency_key"`
	CreatedAt      time.Time  `db:"created_at"`
	ExpiresAt      *time.Time `db:"expires_at"`
}
