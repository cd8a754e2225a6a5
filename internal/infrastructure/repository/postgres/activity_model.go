package postgres

import "time"

type activityRecordTableModel struct {
	ID              int64     `db:"id"`
	PublicID        string    `db:"public_id"`
	ActorID         string    `db:"actor_public_id"`
	Subject         string    `db:"subject"`
	StartedAt       time.Time `db:"started_at"`
	DurationMinutes int       `db:"duration_minutes"`
	Day             string    `db:"day"`
	RewardMarker    string    `db:"reward_marker"`
	IdempotencyKey  string    `db:"idempotency_key"`
	CreatedAt       time.Time `db:"created_at"`
}

type activityRecordInsertModel struct {
	PublicID        string    `db:"public_id"`
	ActorID         string    `db:"actor_public_id"`
	Subject         string    `db:"subject"`
	StartedAt       time.Time `db:"started_at"`
	DurationMinutes int       `db:"duration_minutes"`
	Day             string    `db:"day"`
	RewardMarker    string    `db:"reward_marker"`
	IdempotencyKey  string    `db:"idempotency_key"`
	CreatedAt       time.Time `db:"created_at"`
}

type activityDayAggregate struct {
	Day          string `db:"day"`
	Minutes      int    `db:"minutes"`
	SessionCount int    `db:"session_count"`
}
