package mission

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
)

var ErrAlreadyClaimed = errors.New("mission already claimed")

type RequirementType string

const (
	RequirementTotalMinutes     RequirementType = "total_minutes"
	RequirementSessionCount     RequirementType = "session_count"
	RequirementLongSession      RequirementType = "long_session"
	RequirementDistinctSubjects RequirementType = "distinct_subjects"
)

func (r RequirementType) Valid() bool {
	switch r {
	case RequirementTotalMinutes, RequirementSessionCount, RequirementLongSession, RequirementDistinctSubjects:
		return true
	default:
		return false
	}
}

// Definition is a daily, resettable objective.
type Definition struct {
	ID          string
	Title       string
	Description string
	Requirement RequirementType
	Threshold   int
	RewardXP    int64
	Active      bool
}

func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("mission id is required")
	}
	if !d.Requirement.Valid() {
		return fmt.Errorf("unknown requirement type %q", d.Requirement)
	}
	if d.Threshold <= 0 {
		return fmt.Errorf("threshold must be > 0")
	}
	if d.RewardXP <= 0 {
		return fmt.Errorf("reward xp must be > 0")
	}
	return nil
}

// Claim is the proof a mission reward was paid for (actor, mission, day).
type Claim struct {
	ID             string
	ActorID        string
	MissionID      string
	Day            string
	RewardXP       int64
	IdempotencyKey string
	CreatedAt      time.Time
}

// Grant bundles every write of one mission reward. Stores apply it as a
// single transaction keyed by Entry.IdempotencyKey.
type Grant struct {
	Claim  Claim
	Entry  ledger.Entry
	Marker activity.Record
}

// GrantResult reports whether the grant was written now or had already been
// written under the same key.
type GrantResult struct {
	Claim   Claim
	Applied bool
}

// GrantKey is the ledger idempotency key of a mission reward.
func GrantKey(actorID, missionID, day string) string {
	return ledger.Key("mission", actorID, missionID, day)
}

// Marker is the reward marker carried by the synthetic activity record.
func Marker(missionID string) string {
	return "mission_reward:" + strings.TrimSpace(missionID)
}

// NewGrant assembles the claim, ledger entry and marker record for one reward.
func NewGrant(def Definition, actorID, day string, now time.Time, newID func() string) Grant {
	key := GrantKey(actorID, def.ID, day)
	return Grant{
		Claim: Claim{
			ID:             newID(),
			ActorID:        actorID,
			MissionID:      def.ID,
			Day:            day,
			RewardXP:       def.RewardXP,
			IdempotencyKey: key,
			CreatedAt:      now,
		},
		Entry: ledger.Entry{
			ID:             newID(),
			ActorID:        actorID,
			Amount:         def.RewardXP,
			Reason:         ledger.ReasonMission,
			IdempotencyKey: key,
			CreatedAt:      now,
		},
		Marker: activity.Record{
			ID:           newID(),
			ActorID:      actorID,
			Subject:      def.ID,
			StartedAt:    now,
			Day:          day,
			RewardMarker: Marker(def.ID),
			CreatedAt:    now,
		},
	}
}
