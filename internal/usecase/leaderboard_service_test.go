package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
	actormock "github.com/riskibarqy/studyquest/internal/mocks/domain/actor"
	ledgermock "github.com/riskibarqy/studyquest/internal/mocks/domain/ledger"
	rankingmock "github.com/riskibarqy/studyquest/internal/mocks/domain/ranking"
	seasonmock "github.com/riskibarqy/studyquest/internal/mocks/domain/season"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func silverActors() []actor.Profile {
	return []actor.Profile{
		{ID: "a", DisplayName: "A", LifetimeXP: 3000, ActiveDays30: 10},
		{ID: "b", DisplayName: "B", LifetimeXP: 3000, ActiveDays30: 10},
		{ID: "c", DisplayName: "C", LifetimeXP: 5000, ActiveDays30: 3},
	}
}

func TestLeaderboardService_RequiresLeagueForScopedQueries(t *testing.T) {
	t.Parallel()

	service := NewLeaderboardService(seasonmock.NewRepository(t), rankingmock.NewSnapshotRepository(t), actormock.NewRepository(t), ledgermock.NewRepository(t))

	for _, scope := range []string{"league", "premium"} {
		_, err := service.GetLeaderboard(context.Background(), LeaderboardQuery{Scope: scope, Limit: 50})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("scope %s: expected ErrInvalidInput, got %v", scope, err)
		}
	}

	_, err := service.GetLeaderboard(context.Background(), LeaderboardQuery{Scope: "overall", Limit: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero limit, got %v", err)
	}
	_, err = service.GetLeaderboard(context.Background(), LeaderboardQuery{Scope: "overall", Offset: -1, Limit: 10})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative offset, got %v", err)
	}
}

func TestLeaderboardService_FallbackWithoutSeasonUsesLifetimeXP(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seasonRepo := seasonmock.NewRepository(t)
	actorRepo := actormock.NewRepository(t)
	service := NewLeaderboardService(seasonRepo, rankingmock.NewSnapshotRepository(t), actorRepo, ledgermock.NewRepository(t))

	seasonRepo.On("GetActive", mock.Anything).Return(season.Season{}, false, nil).Once()
	actorRepo.On("List", mock.Anything).Return(silverActors(), nil).Once()

	got, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 50})
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if !got.Metadata.Fallback {
		t.Fatalf("expected fallback metadata")
	}
	if got.Metadata.TotalCount != 3 {
		t.Fatalf("unexpected total: got=%d want=3", got.Metadata.TotalCount)
	}

	want := []struct {
		id   string
		rank int
	}{{"c", 1}, {"a", 2}, {"b", 2}}
	for i, item := range want {
		row := got.Rows[i]
		if row.ActorID != item.id || row.RankOverall != item.rank || row.RankInLeague != item.rank {
			t.Fatalf("unexpected row %d: got=%s/%d/%d want=%s/%d", i, row.ActorID, row.RankOverall, row.RankInLeague, item.id, item.rank)
		}
		if row.League != league.TierSilver {
			t.Fatalf("unexpected league for %s: %s", row.ActorID, row.League)
		}
	}
}

func TestLeaderboardService_FallbackWithEmptySnapshotUsesSeasonalXP(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	active := activeSeasonFixture()
	seasonRepo := seasonmock.NewRepository(t)
	snapshotRepo := rankingmock.NewSnapshotRepository(t)
	actorRepo := actormock.NewRepository(t)
	ledgerRepo := ledgermock.NewRepository(t)
	service := NewLeaderboardService(seasonRepo, snapshotRepo, actorRepo, ledgerRepo)

	seasonRepo.On("GetActive", mock.Anything).Return(active, true, nil).Once()
	snapshotRepo.On("Describe", mock.Anything, active.ID).Return(ranking.Snapshot{SeasonID: active.ID}, nil).Once()
	actorRepo.On("List", mock.Anything).Return(silverActors(), nil).Once()
	ledgerRepo.
		On("SumByWindow", mock.Anything, active.StartsAt, (*time.Time)(nil)).
		Return(map[string]int64{"b": 900, "a": 10}, nil).
		Once()

	got, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 2})
	require.NoError(t, err)
	require.True(t, got.Metadata.Fallback)
	require.Equal(t, active.ID, got.Metadata.SeasonID)
	require.Equal(t, 3, got.Metadata.TotalCount)
	require.Len(t, got.Rows, 2)
	require.Equal(t, "b", got.Rows[0].ActorID)
	require.Equal(t, int64(900), got.Rows[0].BasisXP)
	require.Equal(t, "a", got.Rows[1].ActorID)
	require.False(t, got.Metadata.IsAllZeroTop)
}

func TestLeaderboardService_AuthoritativeSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	active := activeSeasonFixture()
	materializedAt := testNow.Add(-time.Minute)
	seasonRepo := seasonmock.NewRepository(t)
	snapshotRepo := rankingmock.NewSnapshotRepository(t)
	service := NewLeaderboardService(seasonRepo, snapshotRepo, actormock.NewRepository(t), ledgermock.NewRepository(t))

	rows := []ranking.Row{
		{SeasonID: active.ID, ActorID: "c", League: league.TierSilver, BasisXP: 0, RankOverall: 4, RankInLeague: 1},
		{SeasonID: active.ID, ActorID: "d", League: league.TierSilver, BasisXP: 0, RankOverall: 4, RankInLeague: 1},
	}
	wantQuery := ranking.PageQuery{SeasonID: active.ID, Scope: ranking.ScopeLeague, League: league.TierSilver, Offset: 0, Limit: 20}

	seasonRepo.On("GetActive", mock.Anything).Return(active, true, nil).Once()
	snapshotRepo.On("Describe", mock.Anything, active.ID).Return(ranking.Snapshot{SeasonID: active.ID, RowCount: 10, MaterializedAt: materializedAt}, nil).Once()
	snapshotRepo.On("ListPage", mock.Anything, wantQuery).Return(rows, 2, nil).Once()

	got, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "league", League: "Silver", Limit: 20})
	if err != nil {
		t.Fatalf("get leaderboard: %v", err)
	}
	if got.Metadata.Fallback {
		t.Fatalf("expected authoritative path")
	}
	if got.Metadata.MaterializedAt == nil || !got.Metadata.MaterializedAt.Equal(materializedAt) {
		t.Fatalf("unexpected materialized_at: %v", got.Metadata.MaterializedAt)
	}
	if !got.Metadata.IsAllZeroTop {
		t.Fatalf("expected all-zero guard")
	}
	if got.Rows[0].RankOverall != 1 {
		t.Fatalf("league-filtered rows must carry in-league rank as overall, got=%d", got.Rows[0].RankOverall)
	}
}

func TestLeaderboardService_StaleSnapshotFallsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	active := activeSeasonFixture()
	seasonRepo := seasonmock.NewRepository(t)
	snapshotRepo := rankingmock.NewSnapshotRepository(t)
	actorRepo := actormock.NewRepository(t)
	ledgerRepo := ledgermock.NewRepository(t)
	service := NewLeaderboardService(seasonRepo, snapshotRepo, actorRepo, ledgerRepo).WithMaxSnapshotAge(30 * time.Minute)
	service.now = fixedClock()

	fresh := testNow.Add(-29 * time.Minute)
	stale := testNow.Add(-31 * time.Minute)
	wantQuery := ranking.PageQuery{SeasonID: active.ID, Scope: ranking.ScopeOverall, Limit: 50}

	seasonRepo.On("GetActive", mock.Anything).Return(active, true, nil).Twice()
	snapshotRepo.On("Describe", mock.Anything, active.ID).Return(ranking.Snapshot{SeasonID: active.ID, RowCount: 3, MaterializedAt: fresh}, nil).Once()
	snapshotRepo.On("ListPage", mock.Anything, wantQuery).Return([]ranking.Row{{SeasonID: active.ID, ActorID: "c", BasisXP: 10, RankOverall: 1}}, 3, nil).Once()

	got, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 50})
	require.NoError(t, err)
	require.False(t, got.Metadata.Fallback)

	snapshotRepo.On("Describe", mock.Anything, active.ID).Return(ranking.Snapshot{SeasonID: active.ID, RowCount: 3, MaterializedAt: stale}, nil).Once()
	actorRepo.On("List", mock.Anything).Return(silverActors(), nil).Once()
	ledgerRepo.
		On("SumByWindow", mock.Anything, active.StartsAt, (*time.Time)(nil)).
		Return(map[string]int64{"b": 900}, nil).
		Once()

	got, err = service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 50})
	require.NoError(t, err)
	require.True(t, got.Metadata.Fallback)
	require.NotNil(t, got.Metadata.MaterializedAt)
	require.True(t, got.Metadata.MaterializedAt.Equal(stale))
	require.Equal(t, "b", got.Rows[0].ActorID)
}

func TestLeaderboardService_StorageErrorsAreNotMasked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	active := activeSeasonFixture()
	storageErr := errors.New("connection refused")

	t.Run("active season lookup", func(t *testing.T) {
		t.Parallel()
		seasonRepo := seasonmock.NewRepository(t)
		service := NewLeaderboardService(seasonRepo, rankingmock.NewSnapshotRepository(t), actormock.NewRepository(t), ledgermock.NewRepository(t))
		seasonRepo.On("GetActive", mock.Anything).Return(season.Season{}, false, storageErr).Once()

		_, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 10})
		if !errors.Is(err, storageErr) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})

	t.Run("snapshot page", func(t *testing.T) {
		t.Parallel()
		seasonRepo := seasonmock.NewRepository(t)
		snapshotRepo := rankingmock.NewSnapshotRepository(t)
		service := NewLeaderboardService(seasonRepo, snapshotRepo, actormock.NewRepository(t), ledgermock.NewRepository(t))
		seasonRepo.On("GetActive", mock.Anything).Return(active, true, nil).Once()
		snapshotRepo.On("Describe", mock.Anything, active.ID).Return(ranking.Snapshot{RowCount: 5}, nil).Once()
		snapshotRepo.On("ListPage", mock.Anything, mock.Anything).Return(nil, 0, storageErr).Once()

		_, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 10})
		if !errors.Is(err, storageErr) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})

	t.Run("snapshot describe", func(t *testing.T) {
		t.Parallel()
		seasonRepo := seasonmock.NewRepository(t)
		snapshotRepo := rankingmock.NewSnapshotRepository(t)
		service := NewLeaderboardService(seasonRepo, snapshotRepo, actormock.NewRepository(t), ledgermock.NewRepository(t))
		seasonRepo.On("GetActive", mock.Anything).Return(active, true, nil).Once()
		snapshotRepo.On("Describe", mock.Anything, active.ID).Return(ranking.Snapshot{}, storageErr).Once()

		_, err := service.GetLeaderboard(ctx, LeaderboardQuery{Scope: "overall", Limit: 10})
		if !errors.Is(err, storageErr) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})
}

func TestLeaderboardService_AuthoritativeMatchesFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	active := activeSeasonFixture()
	actors := []actor.Profile{
		{ID: "ayu", LifetimeXP: 16000, ActiveDays30: 12, Premium: true},
		{ID: "budi", LifetimeXP: 6000, ActiveDays30: 7},
		{ID: "citra", LifetimeXP: 6000, ActiveDays30: 7, Premium: true},
		{ID: "dimas", LifetimeXP: 1200, ActiveDays30: 3, Premium: true},
		{ID: "eka", LifetimeXP: 1500, ActiveDays30: 3},
		{ID: "fajar", LifetimeXP: 0},
	}

	store := newTestStore(actors, []season.Season{active})
	ledgerRepo := memory.NewLedgerRepository(store)
	grants := map[string]int64{"ayu": 300, "budi": 500, "citra": 500, "dimas": 120, "eka": 120}
	for actorID, amount := range grants {
		_, err := ledgerRepo.Apply(ctx, ledger.Entry{
			ActorID:        actorID,
			Amount:         amount,
			Reason:         ledger.ReasonSession,
			IdempotencyKey: ledger.Key("session", actorID, "s1", "2026-10-14"),
			CreatedAt:      testNow,
		})
		require.NoError(t, err)
	}

	seasonRepo := memory.NewSeasonRepository(store)
	actorRepo := memory.NewActorRepository(store)
	emptySnapshots := memory.NewSnapshotRepository(memory.NewStore(memory.Fixtures{}))
	filledSnapshots := memory.NewSnapshotRepository(store)

	snapshotSvc := NewSnapshotService(seasonRepo, actorRepo, ledgerRepo, filledSnapshots, nil, SnapshotConfig{}, nil)
	snapshotSvc.now = fixedClock()
	_, err := snapshotSvc.Materialize(ctx, active.ID)
	require.NoError(t, err)

	fallback := NewLeaderboardService(seasonRepo, emptySnapshots, actorRepo, ledgerRepo)
	authoritative := NewLeaderboardService(seasonRepo, filledSnapshots, actorRepo, ledgerRepo)

	queries := []LeaderboardQuery{
		{Scope: "overall", Limit: 50},
		{Scope: "overall", Limit: 2, Offset: 1},
		{Scope: "overall", League: "gold", Limit: 50},
		{Scope: "league", League: "gold", Limit: 50},
		{Scope: "league", League: "silver", Limit: 50},
		{Scope: "premium", League: "gold", Limit: 50},
		{Scope: "premium", League: "silver", Limit: 1},
	}
	for _, query := range queries {
		want, err := fallback.GetLeaderboard(ctx, query)
		require.NoError(t, err)
		got, err := authoritative.GetLeaderboard(ctx, query)
		require.NoError(t, err)

		require.True(t, want.Metadata.Fallback, "query %+v", query)
		require.False(t, got.Metadata.Fallback, "query %+v", query)
		require.Equal(t, want.Metadata.TotalCount, got.Metadata.TotalCount, "query %+v", query)
		require.Equal(t, want.Rows, got.Rows, "query %+v", query)
	}
}
