package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Apply(ctx context.Context, entry ledger.Entry) (ledger.ApplyResult, error) {
	if err := entry.Validate(); err != nil {
		return ledger.ApplyResult{}, fmt.Errorf("validate ledger entry: %w", err)
	}

	var result ledger.ApplyResult
	err := withTx(ctx, r.db, "ledger apply", func(tx *sqlx.Tx) error {
		applied, err := applyLedgerTx(ctx, tx, entry)
		if err != nil {
			return err
		}
		result = applied
		return nil
	})
	if err != nil {
		return ledger.ApplyResult{}, err
	}
	return result, nil
}

func (r *LedgerRepository) GetByKey(ctx context.Context, key string) (ledger.Entry, bool, error) {
	query, args, err := qb.Select("*").From("xp_ledger_entries").
		Where(qb.Eq("idempotency_key", key)).
		ToSQL()
	if err != nil {
		return ledger.Entry{}, false, fmt.Errorf("build get ledger entry query: %w", err)
	}

	var row ledgerEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ledger.Entry{}, false, nil
		}
		return ledger.Entry{}, false, fmt.Errorf("get ledger entry key=%s: %w", key, err)
	}
	return ledgerEntryFromRow(row), true, nil
}

func (r *LedgerRepository) Balance(ctx context.Context, actorID string) (int64, error) {
	return selectBalance(ctx, r.db, actorID, false)
}

// SumByWindow sums positive grants per actor in [start, end).
func (r *LedgerRepository) SumByWindow(ctx context.Context, start time.Time, end *time.Time) (map[string]int64, error) {
	conditions := []qb.Condition{
		qb.Expr("amount > 0"),
		qb.Expr("created_at >= ?", start.UTC()),
	}
	if end != nil {
		conditions = append(conditions, qb.Expr("created_at < ?", end.UTC()))
	}

	query, args, err := qb.Select("actor_public_id", "SUM(amount) AS total").
		From("xp_ledger_entries").
		Where(conditions...).
		GroupBy("actor_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum ledger window query: %w", err)
	}

	var rows []actorSumRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum ledger window: %w", err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ActorID] = row.Total
	}
	return out, nil
}

type getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func selectBalance(ctx context.Context, q getter, actorID string, forUpdate bool) (int64, error) {
	query := `SELECT balance FROM xp_balances WHERE actor_public_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var balance int64
	if err := q.GetContext(ctx, &balance, query, actorID); err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("select balance actor=%s: %w", actorID, err)
	}
	return balance, nil
}

// applyLedgerTx is the single ledger write path for the postgres driver. It
// locks the actor's balance row, so concurrent writes for one actor are
// serialized and the balance never goes negative.
func applyLedgerTx(ctx context.Context, tx *sqlx.Tx, entry ledger.Entry) (ledger.ApplyResult, error) {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO xp_balances (actor_public_id, balance)
VALUES ($1, 0)
ON CONFLICT (actor_public_id) DO NOTHING`, entry.ActorID); err != nil {
		return ledger.ApplyResult{}, fmt.Errorf("ensure balance row actor=%s: %w", entry.ActorID, err)
	}

	balance, err := selectBalance(ctx, tx, entry.ActorID, true)
	if err != nil {
		return ledger.ApplyResult{}, err
	}

	var existing ledgerEntryTableModel
	err = tx.GetContext(ctx, &existing, `SELECT * FROM xp_ledger_entries WHERE idempotency_key = $1`, entry.IdempotencyKey)
	switch {
	case err == nil:
		replayBalance := balance
		if existing.ActorID != entry.ActorID {
			if replayBalance, err = selectBalance(ctx, tx, existing.ActorID, false); err != nil {
				return ledger.ApplyResult{}, err
			}
		}
		return ledger.ApplyResult{Entry: ledgerEntryFromRow(existing), Applied: false, Balance: replayBalance}, nil
	case !isNotFound(err):
		return ledger.ApplyResult{}, fmt.Errorf("get ledger entry key=%s: %w", entry.IdempotencyKey, err)
	}

	if entry.Amount < 0 && balance+entry.Amount < 0 {
		return ledger.ApplyResult{}, ledger.ErrInsufficientBalance
	}

	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("xp_ledger_entries", ledgerEntryInsertModel{
		PublicID:       entry.ID,
		ActorID:        entry.ActorID,
		Amount:         entry.Amount,
		Reason:         string(entry.Reason),
		IdempotencyKey: entry.IdempotencyKey,
		CreatedAt:      createdAt,
	}, "ON CONFLICT (idempotency_key) DO NOTHING")
	if err != nil {
		return ledger.ApplyResult{}, fmt.Errorf("build insert ledger entry query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return ledger.ApplyResult{}, fmt.Errorf("insert ledger entry key=%s: %w", entry.IdempotencyKey, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ledger.ApplyResult{}, fmt.Errorf("ledger key %s was written concurrently", entry.IdempotencyKey)
	}

	balance += entry.Amount
	if _, err := tx.ExecContext(ctx, `
UPDATE xp_balances SET balance = $2, updated_at = NOW()
WHERE actor_public_id = $1`, entry.ActorID, balance); err != nil {
		return ledger.ApplyResult{}, fmt.Errorf("update balance actor=%s: %w", entry.ActorID, err)
	}

	if entry.Amount > 0 {
		if _, err := tx.ExecContext(ctx, `
UPDATE actors SET lifetime_xp = lifetime_xp + $2, updated_at = NOW()
WHERE public_id = $1 AND deleted_at IS NULL`, entry.ActorID, entry.Amount); err != nil {
			return ledger.ApplyResult{}, fmt.Errorf("update lifetime xp actor=%s: %w", entry.ActorID, err)
		}
	}

	entry.CreatedAt = createdAt
	return ledger.ApplyResult{Entry: entry, Applied: true, Balance: balance}, nil
}

func ledgerEntryFromRow(row ledgerEntryTableModel) ledger.Entry {
	return ledger.Entry{
		ID:             row.PublicID,
		ActorID:        row.ActorID,
		Amount:         row.Amount,
		Reason:         ledger.Reason(row.Reason),
		IdempotencyKey: row.IdempotencyKey,
		CreatedAt:      row.CreatedAt.UTC(),
	}
}
