package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/liuclever/summonking/internal/api/handlers"
	"github.com/liuclever/summonking/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doPost(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(nil))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func doGet(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Monday))
	competitorID := uuid.New()
	token := testutil.BearerToken(t, competitorID)

	resp := doPost(t, ts.APIURL("/king/register"), token)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	var body handlers.RegisterResponse
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, competitorID.String(), body.CompetitorID)
	assert.Equal(t, 1, body.Position)

	// Second registration conflicts
	resp = doPost(t, ts.APIURL("/king/register"), token)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
}

func TestRegisterEndpoint_RequiresAuth(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Monday))

	resp := doPost(t, ts.APIURL("/king/register"), "")
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestRegisterEndpoint_OutsideWindow(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Friday))
	token := testutil.BearerToken(t, uuid.New())

	resp := doPost(t, ts.APIURL("/king/register"), token)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Phase    string `json:"phase"`
		Required string `json:"requiredPhase"`
	}
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "battle", body.Phase)
	assert.Equal(t, "enrollment", body.Required)
}

func TestSignupEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Tuesday))
	rank := testutil.NewQualifierBuilder().Build(t, ts.DB.DB)
	token := testutil.BearerToken(t, rank.CompetitorID)

	resp := doPost(t, ts.APIURL("/king/signup"), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doPost(t, ts.APIURL("/king/signup"), token)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
}

func TestSignupEndpoint_NotRegistered(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Tuesday))
	token := testutil.BearerToken(t, uuid.New())

	resp := doPost(t, ts.APIURL("/king/signup"), token)
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
}

func TestRankingEndpoint_Public(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Monday))
	for pos := 1; pos <= 2; pos++ {
		testutil.NewQualifierBuilder().WithPosition(pos).Build(t, ts.DB.DB)
	}

	resp := doGet(t, ts.APIURL("/king/ranking?area=1"), "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body handlers.RankingResponse
	testutil.AssertJSONResponse(t, resp, &body)
	assert.Equal(t, 1, body.Area)
	assert.Len(t, body.Entries, 2)
}

func TestBracketFlowEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Friday))
	testutil.SeedLadder(t, ts.DB.DB, 4)
	token := testutil.BearerToken(t, uuid.New())

	resp := doPost(t, ts.APIURL("/admin/bracket/seed"), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doGet(t, ts.APIURL("/king/bracket"), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var state struct {
		Phase  string `json:"phase"`
		Stages []struct {
			Stage  string `json:"stage"`
			Status string `json:"status"`
		} `json:"stages"`
	}
	testutil.AssertJSONResponse(t, resp, &state)
	assert.Equal(t, "battle", state.Phase)
	require.Len(t, state.Stages, 5)
	assert.Equal(t, "32", state.Stages[0].Stage)
	assert.Equal(t, "pending", state.Stages[0].Status)

	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/admin/bracket/advance"),
		bytes.NewReader([]byte(`{"stage":"32"}`)))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	advResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer advResp.Body.Close()
	testutil.AssertStatusCode(t, advResp, http.StatusOK)

	resp = doGet(t, ts.APIURL("/king/bracket"), token)
	testutil.AssertJSONResponse(t, resp, &state)
	assert.Equal(t, "advanced", state.Stages[0].Status)
}

func TestRewardsEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t, testutil.FrozenClock(testutil.Friday))
	rank := testutil.NewQualifierBuilder().SignedUp().Build(t, ts.DB.DB)
	testutil.NewTeamBuilder(rank.CompetitorID).Build(t, ts.DB.DB)
	token := testutil.BearerToken(t, rank.CompetitorID)

	resp := doPost(t, ts.APIURL("/admin/bracket/seed"), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = doGet(t, ts.APIURL("/king/rewards"), token)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var body handlers.RewardsResponse
	testutil.AssertJSONResponse(t, resp, &body)
	require.Len(t, body.Claims, 1)
	assert.Equal(t, "32", body.Claims[0].Stage)
	assert.Equal(t, 50000, body.Claims[0].Gold)
	assert.True(t, body.Claims[0].Delivered)
}
