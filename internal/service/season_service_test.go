package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/domain"
	repoPostgres "github.com/liuclever/summonking/internal/repository/postgres"
	"github.com/liuclever/summonking/internal/service"
	"github.com/liuclever/summonking/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeasonServices(t *testing.T, clock service.Clock) (*service.Services, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := repoPostgres.NewRepositories(testDB.DB)
	return service.NewServices(repos, clock), testDB
}

func TestRegister(t *testing.T) {
	services, _ := newSeasonServices(t, testutil.FrozenClock(testutil.Monday))
	ctx := context.Background()

	rank, err := services.Season.Register(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, rank.Area)
	assert.Equal(t, 1, rank.Position)
	assert.False(t, rank.SignedUp)
}

func TestRegister_BalancesAreas(t *testing.T) {
	services, _ := newSeasonServices(t, testutil.FrozenClock(testutil.Monday))
	ctx := context.Background()

	areas := make(map[int]int)
	for i := 0; i < 6; i++ {
		rank, err := services.Season.Register(ctx, uuid.New())
		require.NoError(t, err)
		areas[rank.Area]++
	}
	assert.Equal(t, 3, areas[1])
	assert.Equal(t, 3, areas[2])
}

func TestRegister_Duplicate(t *testing.T) {
	services, _ := newSeasonServices(t, testutil.FrozenClock(testutil.Monday))
	ctx := context.Background()
	competitorID := uuid.New()

	_, err := services.Season.Register(ctx, competitorID)
	require.NoError(t, err)

	_, err = services.Season.Register(ctx, competitorID)
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestRegister_OutsideEnrollment(t *testing.T) {
	services, _ := newSeasonServices(t, testutil.FrozenClock(testutil.Tuesday))

	_, err := services.Season.Register(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, domain.IsPhaseError(err))
}

func TestSignup(t *testing.T) {
	services, testDB := newSeasonServices(t, testutil.FrozenClock(testutil.Tuesday))
	ctx := context.Background()

	rank := testutil.NewQualifierBuilder().Build(t, testDB.DB)

	require.NoError(t, services.Season.Signup(ctx, rank.CompetitorID))

	err := services.Season.Signup(ctx, rank.CompetitorID)
	assert.ErrorIs(t, err, domain.ErrAlreadySignedUp)
}

func TestSignup_NotRegistered(t *testing.T) {
	services, _ := newSeasonServices(t, testutil.FrozenClock(testutil.Tuesday))

	err := services.Season.Signup(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestSignup_OutsideWindow(t *testing.T) {
	services, testDB := newSeasonServices(t, testutil.FrozenClock(testutil.Friday))

	rank := testutil.NewQualifierBuilder().Build(t, testDB.DB)

	err := services.Season.Signup(context.Background(), rank.CompetitorID)
	require.Error(t, err)
	assert.True(t, domain.IsPhaseError(err))
}

func TestResetSignups(t *testing.T) {
	services, testDB := newSeasonServices(t, testutil.FrozenClock(testutil.Monday))
	ctx := context.Background()

	for pos := 1; pos <= 3; pos++ {
		testutil.NewQualifierBuilder().WithPosition(pos).SignedUp().Build(t, testDB.DB)
	}

	require.NoError(t, services.Season.ResetSignups(ctx))

	var signedUp int64
	testDB.DB.Model(&domain.QualifierRank{}).Where("signed_up = true").Count(&signedUp)
	assert.EqualValues(t, 0, signedUp)
}

func TestRanking(t *testing.T) {
	services, testDB := newSeasonServices(t, testutil.FrozenClock(testutil.Monday))
	ctx := context.Background()

	for pos := 3; pos >= 1; pos-- {
		testutil.NewQualifierBuilder().WithPosition(pos).Build(t, testDB.DB)
	}

	ranks, err := services.Season.Ranking(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ranks, 3)
	for i, rank := range ranks {
		assert.Equal(t, i+1, rank.Position)
	}

	_, err = services.Season.Ranking(ctx, 99)
	assert.Error(t, err)
}
