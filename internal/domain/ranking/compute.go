package ranking

import (
	"sort"

	"github.com/riskibarqy/studyquest/internal/domain/league"
)

// Compute assigns the three rank channels in one pass over entries sorted by
// (BasisXP desc, ActorID asc). Ranks are dense: equal XP shares a rank and the
// next distinct XP value gets the previous rank plus one. The input slice is
// not modified.
func Compute(seasonID string, entries []Entry) []Row {
	sorted := append([]Entry(nil), entries...)
	SortEntries(sorted)

	overall := denseCounter{}
	byLeague := make(map[league.Tier]*denseCounter)
	byLeaguePremium := make(map[league.Tier]*denseCounter)

	out := make([]Row, 0, len(sorted))
	for _, item := range sorted {
		row := Row{
			SeasonID:    seasonID,
			ActorID:     item.ActorID,
			DisplayName: item.DisplayName,
			League:      item.League,
			Premium:     item.Premium,
			BasisXP:     item.BasisXP,
			RankOverall: overall.next(item.BasisXP),
		}

		leagueCounter, ok := byLeague[item.League]
		if !ok {
			leagueCounter = &denseCounter{}
			byLeague[item.League] = leagueCounter
		}
		row.RankInLeague = leagueCounter.next(item.BasisXP)

		if item.Premium {
			premiumCounter, ok := byLeaguePremium[item.League]
			if !ok {
				premiumCounter = &denseCounter{}
				byLeaguePremium[item.League] = premiumCounter
			}
			rank := premiumCounter.next(item.BasisXP)
			row.RankPremiumInLeague = &rank
		}

		out = append(out, row)
	}

	return out
}

// SortEntries orders entries by BasisXP desc then ActorID asc, in place.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].BasisXP != entries[j].BasisXP {
			return entries[i].BasisXP > entries[j].BasisXP
		}
		return entries[i].ActorID < entries[j].ActorID
	})
}

// FilterEntries keeps entries of the given league; an empty tier keeps all.
func FilterEntries(entries []Entry, tier league.Tier) []Entry {
	if tier == "" {
		return append([]Entry(nil), entries...)
	}
	out := make([]Entry, 0, len(entries))
	for _, item := range entries {
		if item.League == tier {
			out = append(out, item)
		}
	}
	return out
}

// SelectScope returns the rows visible in scope ordered by that scope's rank
// channel, then actor id. Premium scope drops non-premium rows. The league
// filter, when set, keeps only rows of that league.
func SelectScope(rows []Row, scope Scope, tier league.Tier) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if tier != "" && row.League != tier {
			continue
		}
		if scope == ScopePremium && row.RankPremiumInLeague == nil {
			continue
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i].ScopeRank(scope), out[j].ScopeRank(scope)
		if left != right {
			return left < right
		}
		if out[i].BasisXP != out[j].BasisXP {
			return out[i].BasisXP > out[j].BasisXP
		}
		return out[i].ActorID < out[j].ActorID
	})
	return out
}

// Paginate slices rows by offset and limit without sharing the backing array.
func Paginate(rows []Row, offset, limit int) []Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) || limit <= 0 {
		return []Row{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return append([]Row(nil), rows[offset:end]...)
}

// SelectPage applies scope selection and pagination to a full ranked set and
// returns the page together with the scope's total row count.
func SelectPage(rows []Row, q PageQuery) ([]Row, int) {
	selected := SelectScope(rows, q.Scope, q.League)
	return Paginate(selected, q.Offset, q.Limit), len(selected)
}

// AllZeroTop reports whether the leading rows of a page all have zero basis XP.
// An empty page is not considered all-zero.
func AllZeroTop(page []Row) bool {
	if len(page) == 0 {
		return false
	}
	n := len(page)
	if n > AllZeroWindow {
		n = AllZeroWindow
	}
	for _, row := range page[:n] {
		if row.BasisXP != 0 {
			return false
		}
	}
	return true
}

type denseCounter struct {
	rank    int
	lastXP  int64
	started bool
}

func (c *denseCounter) next(xp int64) int {
	if !c.started {
		c.started = true
		c.rank = 1
		c.lastXP = xp
		return c.rank
	}
	if xp != c.lastXP {
		c.rank++
		c.lastXP = xp
	}
	return c.rank
}
