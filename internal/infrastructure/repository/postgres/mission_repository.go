package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

type MissionRepository struct {
	db *sqlx.DB
}

func NewMissionRepository(db *sqlx.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

func (r *MissionRepository) ListDefinitions(ctx context.Context) ([]mission.Definition, error) {
	query, args, err := qb.Select("*").From("missions").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select missions query: %w", err)
	}

	var rows []missionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select missions: %w", err)
	}

	out := make([]mission.Definition, 0, len(rows))
	for _, row := range rows {
		out = append(out, missionFromRow(row))
	}
	return out, nil
}

func (r *MissionRepository) GetDefinition(ctx context.Context, missionID string) (mission.Definition, bool, error) {
	query, args, err := qb.Select("*").From("missions").
		Where(qb.Eq("public_id", missionID)).
		ToSQL()
	if err != nil {
		return mission.Definition{}, false, fmt.Errorf("build get mission query: %w", err)
	}

	var row missionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return mission.Definition{}, false, nil
		}
		return mission.Definition{}, false, fmt.Errorf("get mission %s: %w", missionID, err)
	}
	return missionFromRow(row), true, nil
}

func (r *MissionRepository) GetClaim(ctx context.Context, actorID, missionID, day string) (mission.Claim, bool, error) {
	query, args, err := qb.Select("*").From("mission_claims").
		Where(
			qb.Eq("actor_public_id", actorID),
			qb.Eq("mission_public_id", missionID),
			qb.Eq("day", day),
		).
		ToSQL()
	if err != nil {
		return mission.Claim{}, false, fmt.Errorf("build get mission claim query: %w", err)
	}

	var row missionClaimTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return mission.Claim{}, false, nil
		}
		return mission.Claim{}, false, fmt.Errorf("get mission claim: %w", err)
	}
	return missionClaimFromRow(row), true, nil
}

func (r *MissionRepository) ListClaimsByDay(ctx context.Context, actorID, day string) ([]mission.Claim, error) {
	query, args, err := qb.Select("*").From("mission_claims").
		Where(
			qb.Eq("actor_public_id", actorID),
			qb.Eq("day", day),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select mission claims query: %w", err)
	}

	var rows []missionClaimTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select mission claims: %w", err)
	}

	out := make([]mission.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, missionClaimFromRow(row))
	}
	return out, nil
}

func (r *MissionRepository) CountClaims(ctx context.Context, actorID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("mission_claims").
		Where(qb.Eq("actor_public_id", actorID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count mission claims query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count mission claims: %w", err)
	}
	return count, nil
}

// Grant writes ledger entry, claim and marker in one transaction. The claim
// insert uses ON CONFLICT DO NOTHING so a concurrent duplicate turns into a
// replay instead of an error.
func (r *MissionRepository) Grant(ctx context.Context, grant mission.Grant) (mission.GrantResult, error) {
	if err := grant.Entry.Validate(); err != nil {
		return mission.GrantResult{}, fmt.Errorf("validate ledger entry: %w", err)
	}
	if err := grant.Marker.Validate(); err != nil {
		return mission.GrantResult{}, fmt.Errorf("validate marker record: %w", err)
	}

	var result mission.GrantResult
	err := withTx(ctx, r.db, "mission grant", func(tx *sqlx.Tx) error {
		query, args, err := qb.InsertModel("mission_claims", missionClaimInsertModel{
			PublicID:       grant.Claim.ID,
			ActorID:        grant.Claim.ActorID,
			MissionID:      grant.Claim.MissionID,
			Day:            grant.Claim.Day,
			RewardXP:       grant.Claim.RewardXP,
			IdempotencyKey: grant.Claim.IdempotencyKey,
			CreatedAt:      grant.Claim.CreatedAt.UTC(),
		}, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert mission claim query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert mission claim: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert mission claim rows affected: %w", err)
		}
		if affected == 0 {
			var existing missionClaimTableModel
			if err := tx.GetContext(ctx, &existing, `
SELECT * FROM mission_claims
WHERE actor_public_id = $1 AND mission_public_id = $2 AND day = $3`,
				grant.Claim.ActorID, grant.Claim.MissionID, grant.Claim.Day); err != nil {
				return fmt.Errorf("load existing mission claim: %w", err)
			}
			result = mission.GrantResult{Claim: missionClaimFromRow(existing), Applied: false}
			return nil
		}

		applied, err := applyLedgerTx(ctx, tx, grant.Entry)
		if err != nil {
			return err
		}
		if !applied.Applied {
			return fmt.Errorf("mission ledger key %s already used without a claim", grant.Entry.IdempotencyKey)
		}
		if err := insertActivityRecord(ctx, tx, grant.Marker); err != nil {
			return err
		}

		result = mission.GrantResult{Claim: grant.Claim, Applied: true}
		return nil
	})
	if err != nil {
		return mission.GrantResult{}, err
	}
	return result, nil
}

func missionFromRow(row missionTableModel) mission.Definition {
	return mission.Definition{
		ID:          row.PublicID,
		Title:       row.Title,
		Description: row.Description,
		Requirement: mission.RequirementType(row.Requirement),
		Threshold:   row.Threshold,
		RewardXP:    row.RewardXP,
		Active:      row.Active,
	}
}

func missionClaimFromRow(row missionClaimTableModel) mission.Claim {
	return mission.Claim{
		ID:             row.PublicID,
		ActorID:        row.ActorID,
		MissionID:      row.MissionID,
		Day:            row.Day,
		RewardXP:       row.RewardXP,
		IdempotencyKey: row.IdempotencyKey,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}
