package ranking

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/league"
)

type Scope string

const (
	ScopeOverall Scope = "overall"
	ScopeLeague  Scope = "league"
	ScopePremium Scope = "premium"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
	// AllZeroWindow is how many leading rows of a page the all-zero guard inspects.
	AllZeroWindow = 20
)

func ParseScope(raw string) (Scope, error) {
	value := Scope(strings.ToLower(strings.TrimSpace(raw)))
	switch value {
	case "":
		return ScopeOverall, nil
	case ScopeOverall, ScopeLeague, ScopePremium:
		return value, nil
	default:
		return "", fmt.Errorf("unknown scope %q", raw)
	}
}

// RequiresLeague reports whether the scope is partitioned by league.
func (s Scope) RequiresLeague() bool {
	return s == ScopeLeague || s == ScopePremium
}

// Entry is the ranking input for one actor.
type Entry struct {
	ActorID     string
	DisplayName string
	League      league.Tier
	Premium     bool
	BasisXP     int64
}

// Row is one actor's computed position. RankPremiumInLeague is nil for
// non-premium actors.
type Row struct {
	SeasonID            string
	ActorID             string
	DisplayName         string
	League              league.Tier
	Premium             bool
	BasisXP             int64
	RankOverall         int
	RankInLeague        int
	RankPremiumInLeague *int
}

// ScopeRank returns the rank channel selected by scope.
func (r Row) ScopeRank(scope Scope) int {
	switch scope {
	case ScopeLeague:
		return r.RankInLeague
	case ScopePremium:
		if r.RankPremiumInLeague == nil {
			return 0
		}
		return *r.RankPremiumInLeague
	default:
		return r.RankOverall
	}
}

// PageQuery selects one page of a ranked view.
type PageQuery struct {
	SeasonID string
	Scope    Scope
	League   league.Tier
	Offset   int
	Limit    int
}

func (q PageQuery) Validate() error {
	if q.Scope.RequiresLeague() && q.League == "" {
		return fmt.Errorf("league filter is required for scope %s", q.Scope)
	}
	if q.League != "" && !q.League.Valid() {
		return fmt.Errorf("unknown league %q", q.League)
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset must be >= 0")
	}
	if q.Limit <= 0 || q.Limit > MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}
	return nil
}

// Snapshot describes the materialization state of one season.
type Snapshot struct {
	SeasonID       string
	RowCount       int
	MaterializedAt time.Time
}
