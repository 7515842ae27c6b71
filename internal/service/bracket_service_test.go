package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/liuclever/summonking/internal/domain"
	repoPostgres "github.com/liuclever/summonking/internal/repository/postgres"
	"github.com/liuclever/summonking/internal/service"
	"github.com/liuclever/summonking/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBattleServices(t *testing.T) (*service.Services, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB)
	services := service.NewServices(repos, testutil.FrozenClock(testutil.Friday))
	return services, testDB
}

func TestSeedFinals(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, domain.FinalistsPerArea)

	require.NoError(t, services.Bracket.SeedFinals(ctx))

	seasonID := domain.SeasonID(testutil.Friday)
	state, err := services.Bracket.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, seasonID, state.SeasonID)
	require.Len(t, state.Stages, len(domain.BracketStages))
	for _, ss := range state.Stages {
		assert.Equal(t, domain.StageStatusPending, ss.Status, "stage %s", ss.Stage)
	}

	var count int64
	testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Count(&count)
	assert.EqualValues(t, 2*domain.FinalistsPerArea, count)

	// Entry rewards claimed for every finalist
	var claims int64
	testDB.DB.Model(&domain.StageRewardClaim{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Count(&claims)
	assert.EqualValues(t, 2*domain.FinalistsPerArea, claims)
}

func TestSeedFinals_Idempotent(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, 4)

	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.SeedFinals(ctx))

	seasonID := domain.SeasonID(testutil.Friday)
	var count int64
	testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Count(&count)
	assert.EqualValues(t, 8, count)
}

func TestRunStage_FullBracket(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, domain.FinalistsPerArea)
	require.NoError(t, services.Bracket.SeedFinals(ctx))

	for _, stage := range domain.BracketStages {
		require.NoError(t, services.Bracket.RunStage(ctx, stage))
	}

	seasonID := domain.SeasonID(testutil.Friday)
	var season domain.Season
	require.NoError(t, testDB.DB.First(&season, "id = ?", seasonID).Error)
	require.NotNil(t, season.ChampionID, "season should have a champion")

	// Champion holds every stage claim from 32 through champion
	var claims int64
	testDB.DB.Model(&domain.StageRewardClaim{}).
		Where("season_id = ? AND competitor_id = ?", seasonID, season.ChampionID).
		Count(&claims)
	assert.EqualValues(t, len(domain.BracketStages)+1, claims)

	// Every stage ended advanced
	var stages []*domain.BracketStage
	require.NoError(t, testDB.DB.Where("season_id = ?", seasonID).Find(&stages).Error)
	require.Len(t, stages, len(domain.BracketStages))
	for _, stage := range stages {
		assert.Equal(t, domain.StageStatusAdvanced, stage.Status, "stage %s", stage.Stage)
	}
}

func TestRunStage_Rerun(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, 8)
	require.NoError(t, services.Bracket.SeedFinals(ctx))

	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	seasonID := domain.SeasonID(testutil.Friday)
	var matches int64
	testDB.DB.Model(&domain.Match{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Count(&matches)
	assert.EqualValues(t, 8, matches)

	var next int64
	testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf16).
		Count(&next)
	assert.EqualValues(t, 8, next)
}

func TestRunStage_RetryMirrorsSettledMatches(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, 2)
	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	seasonID := domain.SeasonID(testutil.Friday)
	var matches []*domain.Match
	require.NoError(t, testDB.DB.
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Order("number ASC").
		Find(&matches).Error)
	require.Len(t, matches, 2)
	settled := make(map[string]bool, len(matches))
	for _, m := range matches {
		require.NotNil(t, m.WinnerID)
		settled[m.WinnerID.String()] = true
	}

	// Rewind to the state a run leaves when it dies after settling the
	// matches but before mirroring the outcomes onto the entrants.
	require.NoError(t, testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Update("is_winner", nil).Error)
	require.NoError(t, testDB.DB.
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf16).
		Delete(&domain.Entrant{}).Error)
	require.NoError(t, testDB.DB.Model(&domain.BracketStage{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Update("status", domain.StageStatusResolving).Error)

	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	// Both winners reach the next stage, with the settled outcomes intact.
	var next []*domain.Entrant
	require.NoError(t, testDB.DB.
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf16).
		Find(&next).Error)
	require.Len(t, next, 2)
	for _, e := range next {
		assert.True(t, settled[e.CompetitorID.String()], "advanced competitor %s never won a match", e.CompetitorID)
	}

	var rematches []*domain.Match
	require.NoError(t, testDB.DB.
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Order("number ASC").
		Find(&rematches).Error)
	require.Len(t, rematches, 2)
	for i, m := range rematches {
		assert.Equal(t, matches[i].WinnerID, m.WinnerID, "match %d was re-fought", m.Number)
	}
}

func TestRunStage_ConcurrentTriggersPairOnce(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, 2)
	require.NoError(t, services.Bracket.SeedFinals(ctx))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = services.Bracket.RunStage(ctx, domain.StageRoundOf32)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "run %d", i)
	}

	seasonID := domain.SeasonID(testutil.Friday)
	var matches int64
	testDB.DB.Model(&domain.Match{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Count(&matches)
	assert.EqualValues(t, 2, matches)

	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))
	var next int64
	testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf16).
		Count(&next)
	assert.EqualValues(t, 2, next)
}

func TestRunStage_RecordsLadderTallies(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	testutil.SeedLadder(t, testDB.DB, 2)
	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	seasonID := domain.SeasonID(testutil.Friday)
	var entrants []*domain.Entrant
	require.NoError(t, testDB.DB.
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).
		Find(&entrants).Error)
	require.Len(t, entrants, 4)

	for _, e := range entrants {
		require.NotNil(t, e.IsWinner)
		var rank domain.QualifierRank
		require.NoError(t, testDB.DB.First(&rank, "competitor_id = ?", e.CompetitorID).Error)
		if *e.IsWinner {
			assert.Equal(t, 1, rank.Wins, "winner %s", e.CompetitorID)
			assert.Equal(t, 1, rank.WinStreak, "winner %s", e.CompetitorID)
			assert.Equal(t, 0, rank.Losses, "winner %s", e.CompetitorID)
		} else {
			assert.Equal(t, 1, rank.Losses, "loser %s", e.CompetitorID)
			assert.Equal(t, 0, rank.Wins, "loser %s", e.CompetitorID)
			assert.Equal(t, 0, rank.WinStreak, "loser %s", e.CompetitorID)
		}
	}
}

func TestRunStage_OddEntrantsBye(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	// 3 signed up in area 1 only
	seasonID := domain.SeasonID(testutil.Friday)
	for pos := 1; pos <= 3; pos++ {
		rank := testutil.NewQualifierBuilder().WithArea(1).WithPosition(pos).SignedUp().Build(t, testDB.DB)
		testutil.NewTeamBuilder(rank.CompetitorID).Build(t, testDB.DB)
	}
	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	var byes int64
	testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ? AND is_bye = true", seasonID, domain.StageRoundOf32).
		Count(&byes)
	assert.EqualValues(t, 1, byes)

	// One match winner plus the bye advance
	var next int64
	testDB.DB.Model(&domain.Entrant{}).
		Where("season_id = ? AND stage = ?", seasonID, domain.StageRoundOf16).
		Count(&next)
	assert.EqualValues(t, 2, next)
}

func TestRunStage_SingleEntrantCrowned(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	rank := testutil.NewQualifierBuilder().WithArea(1).WithPosition(1).SignedUp().Build(t, testDB.DB)
	testutil.NewTeamBuilder(rank.CompetitorID).Build(t, testDB.DB)

	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	seasonID := domain.SeasonID(testutil.Friday)
	var season domain.Season
	require.NoError(t, testDB.DB.First(&season, "id = ?", seasonID).Error)
	require.NotNil(t, season.ChampionID)
	assert.Equal(t, rank.CompetitorID, *season.ChampionID)
}

func TestRunStage_NoEntrantsIsNoop(t *testing.T) {
	services, _ := newBattleServices(t)
	ctx := context.Background()

	assert.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))
}

func TestRunStage_ForfeitWhenNoTeamFielded(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	withTeam := testutil.NewQualifierBuilder().WithArea(1).WithPosition(1).SignedUp().Build(t, testDB.DB)
	testutil.NewTeamBuilder(withTeam.CompetitorID).Build(t, testDB.DB)
	testutil.NewQualifierBuilder().WithArea(1).WithPosition(2).SignedUp().Build(t, testDB.DB)

	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	seasonID := domain.SeasonID(testutil.Friday)
	var match domain.Match
	require.NoError(t, testDB.DB.First(&match, "season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).Error)
	assert.Equal(t, domain.MatchOutcomeForfeit, match.Outcome)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, withTeam.CompetitorID, *match.WinnerID)
}

func TestRunStage_FallbackWhenNeitherSideFielded(t *testing.T) {
	services, testDB := newBattleServices(t)
	ctx := context.Background()

	a := testutil.NewQualifierBuilder().WithArea(1).WithPosition(1).SignedUp().Build(t, testDB.DB)
	b := testutil.NewQualifierBuilder().WithArea(1).WithPosition(2).SignedUp().Build(t, testDB.DB)

	require.NoError(t, services.Bracket.SeedFinals(ctx))
	require.NoError(t, services.Bracket.RunStage(ctx, domain.StageRoundOf32))

	seasonID := domain.SeasonID(testutil.Friday)
	var match domain.Match
	require.NoError(t, testDB.DB.First(&match, "season_id = ? AND stage = ?", seasonID, domain.StageRoundOf32).Error)
	assert.Equal(t, domain.MatchOutcomeFallback, match.Outcome)
	require.NotNil(t, match.WinnerID)
	assert.Contains(t, []string{a.CompetitorID.String(), b.CompetitorID.String()}, match.WinnerID.String())
}

func TestRunStage_UnknownStage(t *testing.T) {
	services, _ := newBattleServices(t)

	err := services.Bracket.RunStage(context.Background(), domain.Stage("64"))
	assert.ErrorIs(t, err, domain.ErrUnknownStage)

	err = services.Bracket.RunStage(context.Background(), domain.StageChampion)
	assert.ErrorIs(t, err, domain.ErrUnknownStage)
}
