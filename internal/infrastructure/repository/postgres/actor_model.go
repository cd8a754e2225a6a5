package postgres

import "time"

type actorTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	DisplayName   string     `db:"display_name"`
	LifetimeXP    int64      `db:"lifetime_xp"`
	CurrentStreak int        `db:"current_streak"`
	ActiveDays30  int        `db:"active_days_30"`
	DeclaredTier  string     `db:"declared_tier"`
	Premium       bool       `db:"premium"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type actorInsertModel struct {
	PublicID      string    `db:"public_id"`
	DisplayName   string    `db:"display_name"`
	LifetimeXP    int64     `db:"lifetime_xp"`
	CurrentStreak int       `db:"current_streak"`
	ActiveDays30  int       `db:"active_days_30"`
	DeclaredTier  string    `db:"declared_tier"`
	Premium       bool      `db:"premium"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
