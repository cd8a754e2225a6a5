package activity

import "github.com/riskibarqy/studyquest/internal/domain/ledger"

// SessionGrant is a session record and its XP credit, written together.
type SessionGrant struct {
	Record Record
	Entry  ledger.Entry
}

// SessionResult carries Replayed=true when the key had already been used;
// Record and Entry then hold what was stored the first time.
type SessionResult struct {
	Record   Record
	Entry    ledger.Entry
	Replayed bool
	Balance  int64
}

// SessionKey namespaces a caller-supplied idempotency key per actor. It is
// not bucketed by day so a retry that crosses midnight still replays.
func SessionKey(actorID, callerKey string) string {
	return ledger.Key("session", actorID, "client", callerKey)
}

// NewSessionGrant stamps record and credit with the same idempotency key.
func NewSessionGrant(record Record, callerKey string, amount int64, entryID string) SessionGrant {
	key := SessionKey(record.ActorID, callerKey)
	record.IdempotencyKey = key
	return SessionGrant{
		Record: record,
		Entry: ledger.Entry{
			ID:             entryID,
			ActorID:        record.ActorID,
			Amount:         amount,
			Reason:         ledger.ReasonSession,
			IdempotencyKey: key,
			CreatedAt:      record.CreatedAt,
		},
	}
}
