package postgres

import (
	"database/sql"
	"time"
)

type snapshotTableModel struct {
	SeasonID       string    `db:"season_public_id"`
	RowCount       int       `db:"row_count"`
	MaterializedAt time.Time `db:"materialized_at"`
}

type snapshotRowTableModel struct {
	SeasonID            string        `db:"season_public_id"`
	ActorID             string        `db:"actor_public_id"`
	DisplayName         string        `db:"display_name"`
	League              string        `db:"league"`
	Premium             bool          `db:"premium"`
	BasisXP             int64         `db:"basis_xp"`
	RankOverall         int           `db:"rank_overall"`
	RankInLeague        int           `db:"rank_in_league"`
	RankPremiumInLeague sql.NullInt64 `db:"rank_premium_in_league"`
}
