package memory

import (
	"sync"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/jobscheduler"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/domain/season"
)

// Store holds every table of the in-memory driver behind one lock so that
// multi-table writes (ledger plus claim, debit plus purchase) are atomic the
// same way a database transaction is.
type Store struct {
	mu sync.RWMutex

	actors     map[string]actor.Profile
	actorOrder []string

	seasons []season.Season

	records map[string][]activity.Record

	entries    map[string]ledger.Entry
	entryOrder []string
	balances   map[string]int64

	missions []mission.Definition
	claims   map[string]mission.Claim

	badges    []reward.Badge
	unlocks   map[string]map[string]reward.BadgeUnlock
	catalog   []reward.CatalogItem
	purchases map[string][]reward.Purchase

	snapshots map[string]snapshotState

	dispatches map[string]jobscheduler.DispatchEvent
}

type snapshotState struct {
	rows           []ranking.Row
	materializedAt time.Time
}

// Fixtures seeds a Store. Nil slices leave the table empty.
type Fixtures struct {
	Actors   []actor.Profile
	Seasons  []season.Season
	Missions []mission.Definition
	Badges   []reward.Badge
	Catalog  []reward.CatalogItem
}

func NewStore(fixtures Fixtures) *Store {
	s := &Store{
		actors:     make(map[string]actor.Profile, len(fixtures.Actors)),
		records:    make(map[string][]activity.Record),
		entries:    make(map[string]ledger.Entry),
		balances:   make(map[string]int64),
		claims:     make(map[string]mission.Claim),
		unlocks:    make(map[string]map[string]reward.BadgeUnlock),
		purchases:  make(map[string][]reward.Purchase),
		snapshots:  make(map[string]snapshotState),
		dispatches: make(map[string]jobscheduler.DispatchEvent),
		seasons:    append([]season.Season(nil), fixtures.Seasons...),
		missions:   append([]mission.Definition(nil), fixtures.Missions...),
		badges:     append([]reward.Badge(nil), fixtures.Badges...),
		catalog:    append([]reward.CatalogItem(nil), fixtures.Catalog...),
	}
	for _, item := range fixtures.Actors {
		if _, ok := s.actors[item.ID]; !ok {
			s.actorOrder = append(s.actorOrder, item.ID)
		}
		s.actors[item.ID] = item
	}
	return s
}

// applyLocked is the single ledger write path. The caller must hold s.mu.
func (s *Store) applyLocked(entry ledger.Entry) (ledger.ApplyResult, error) {
	if existing, ok := s.entries[entry.IdempotencyKey]; ok {
		return ledger.ApplyResult{
			Entry:   existing,
			Applied: false,
			Balance: s.balances[existing.ActorID],
		}, nil
	}

	balance := s.balances[entry.ActorID]
	if entry.Amount < 0 && balance+entry.Amount < 0 {
		return ledger.ApplyResult{}, ledger.ErrInsufficientBalance
	}

	s.entries[entry.IdempotencyKey] = entry
	s.entryOrder = append(s.entryOrder, entry.IdempotencyKey)
	balance += entry.Amount
	s.balances[entry.ActorID] = balance

	if entry.Amount > 0 {
		if profile, ok := s.actors[entry.ActorID]; ok {
			profile.LifetimeXP += entry.Amount
			profile.UpdatedAt = entry.CreatedAt
			s.actors[entry.ActorID] = profile
		}
	}

	return ledger.ApplyResult{Entry: entry, Applied: true, Balance: balance}, nil
}

func claimKey(actorID, missionID, day string) string {
	return actorID + "|" + missionID + "|" + day
}
