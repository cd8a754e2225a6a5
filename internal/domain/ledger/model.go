package ledger

import (
	"fmt"
	"strings"
	"time"
)

type Reason string

const (
	ReasonSession  Reason = "session_complete"
	ReasonMission  Reason = "mission_claim"
	ReasonPurchase Reason = "reward_purchase"
	ReasonAdjust   Reason = "admin_adjustment"
)

func (r Reason) Valid() bool {
	switch r {
	case ReasonSession, ReasonMission, ReasonPurchase, ReasonAdjust:
		return true
	default:
		return false
	}
}

// Entry is one append-only grant (positive) or spend (negative) of XP.
type Entry struct {
	ID             string
	ActorID        string
	Amount         int64
	Reason         Reason
	IdempotencyKey string
	CreatedAt      time.Time
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ActorID) == "" {
		return fmt.Errorf("actor id is required")
	}
	if e.Amount == 0 {
		return fmt.Errorf("amount must not be zero")
	}
	if !e.Reason.Valid() {
		return fmt.Errorf("unknown reason %q", e.Reason)
	}
	if strings.TrimSpace(e.IdempotencyKey) == "" {
		return fmt.Errorf("idempotency key is required")
	}
	return nil
}

func (e Entry) IsDebit() bool {
	return e.Amount < 0
}

// ApplyResult describes the outcome of Repository.Apply. When Applied is false
// the key already existed and Entry holds the stored original.
type ApplyResult struct {
	Entry   Entry
	Applied bool
	Balance int64
}

// Key builds an idempotency key shaped verb:actorId:subjectId:timeBucket.
// Colons inside segments are replaced so the shape stays parseable.
func Key(verb, actorID, subjectID, bucket string) string {
	parts := []string{verb, actorID, subjectID, bucket}
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(strings.TrimSpace(part), ":", "_")
	}
	return strings.Join(parts, ":")
}
