package postgres

import "time"

type ledgerEntryTableModel struct {
	ID             int64     `db:"id"`
	PublicID       string    `db:"public_id"`
	ActorID        string    `db:"actor_public_id"`
	Amount         int64     `db:"amount"`
	Reason         string    `db:"reason"`
	IdempotencyKey string    `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
}

type ledgerEntryInsertModel struct {
	PublicID       string    `db:"public_id"`
	ActorID        string    `db:"actor_public_id"`
	Amount         int64     `db:"amount"`
	Reason         string    `db:"reason"`
	IdempotencyKey string    `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
}

type actorSumRow struct {
	ActorID string `db:"actor_public_id"`
	Total   int64  `db:"total"`
}
