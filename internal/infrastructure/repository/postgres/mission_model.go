package postgres

import "time"

type missionTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Requirement string    `db:"requirement"`
	Threshold   int       `db:"threshold"`
	RewardXP    int64     `db:"reward_xp"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
}

type missionClaimTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	ActorID        string    `db:"actor_public_id"`
	MissionID      string    `db:"mission_public_id"`
	Day            string    `db:"day"`
	RewardXP       int64     `db:"reward_xp"`
	IdempotencyKey string    `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
}

type missionClaimInsertModel struct {
	PublicID       string    `db:"public_id"`
	ActorID        string    `db:"actor_public_id"`
	MissionID      string    `db:"mission_public_id"`
	Day            string    `db:"day"`
	RewardXP       int64     `db:"reward_xp"`
	IdempotencyKey string    `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
}
