//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/game"
	"github.com/attaboy/matchday/internal/service"
	"github.com/attaboy/matchday/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_LifecycleOverPostgres(t *testing.T) {
	env := testutil.NewTestEnv(t)
	op := env.Admin(auth.RoleOperator)

	opener := testutil.Fixture("Arsenal", "Wolves", 48*time.Hour)
	closer := testutil.Fixture("Chelsea", "Everton", 7*24*time.Hour)
	gameID := env.CreateGame(op, opener, closer)

	alice := env.Guest("alice")
	bob := env.Guest("bob")
	env.Join(gameID, alice)
	env.Join(gameID, bob)

	resp := env.POST("/games/"+gameID.String()+"/join", nil, alice.Token)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, domain.CodeDuplicatePlayer)

	env.Bet(gameID, opener.ID, alice, 2, 1)
	env.Bet(gameID, opener.ID, bob, 0, 0)
	// A second bet replaces the first.
	env.Bet(gameID, opener.ID, bob, 1, 1)

	final := opener
	final.Status = domain.MatchFinished
	final.HomeGoals, final.AwayGoals = 2, 1
	resp = env.POST("/admin/games/"+gameID.String()+"/matches", final, op)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var pushed map[string]string
	testutil.DecodeJSON(t, resp, &pushed)
	assert.Equal(t, service.UpdateScored.String(), pushed["result"])

	scores := testutil.MatchScores(t, env, gameID, opener.ID)
	assert.Equal(t, 550, scores[alice.Player.ID])
	assert.Equal(t, -100, scores[bob.Player.ID])

	assert.Equal(t, []string{
		string(domain.EventGameCreated),
		string(domain.EventPlayerJoined),
		string(domain.EventPlayerJoined),
		string(domain.EventBetPlaced),
		string(domain.EventBetPlaced),
		string(domain.EventBetPlaced),
		string(domain.EventMatchScored),
	}, testutil.OutboxEventTypes(t, env, gameID))

	// A fresh service reloads the same state from the database.
	snap, err := env.Store.LoadGame(context.Background(), gameID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.GameScheduled, snap.Game.Status)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, alice.Player.ID, snap.Players[0].ID)
	require.Len(t, snap.Incoming, 1)
	assert.Equal(t, closer.ID, snap.Incoming[0].ID)
	assert.InDelta(t, 3.2, snap.Incoming[0].DrawOdds, 1e-9)
	require.Len(t, snap.Past, 1)
	assert.Equal(t, 2, snap.Past[0].HomeGoals)

	restored, err := game.Restore(*snap)
	require.NoError(t, err)
	standings := restored.Standings()
	require.Len(t, standings, 2)
	assert.Equal(t, alice.Player.ID, standings[0].PlayerID)
	assert.Equal(t, 550, standings[0].Points)
	assert.Equal(t, -100, standings[1].Points)
}

func TestGame_FinishingLastMatchClosesGame(t *testing.T) {
	env := testutil.NewTestEnv(t)
	op := env.Admin(auth.RoleOperator)

	m := testutil.Fixture("Arsenal", "Wolves", time.Hour)
	gameID := env.CreateGame(op, m)
	alice := env.Guest("alice")
	env.Join(gameID, alice)
	env.Bet(gameID, m.ID, alice, 1, 0)

	final := m
	final.Status = domain.MatchFinished
	final.HomeGoals, final.AwayGoals = 3, 0
	resp := env.POST("/admin/games/"+gameID.String()+"/matches", final, op)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	games, err := env.Store.ListGames(context.Background(), domain.GameFinished)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, gameID, games[0].ID)

	types := testutil.OutboxEventTypes(t, env, gameID)
	require.NotEmpty(t, types)
	assert.Equal(t, string(domain.EventGameFinished), types[len(types)-1])

	resp = env.GET("/games/"+gameID.String()+"/winners", alice.Token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var winners struct {
		Winners []domain.Player `json:"winners"`
	}
	testutil.DecodeJSON(t, resp, &winners)
	require.Len(t, winners.Winners, 1)
	assert.Equal(t, alice.Player.ID, winners.Winners[0].ID)
}

func TestGame_UnfinishedUpdateIsStored(t *testing.T) {
	env := testutil.NewTestEnv(t)
	op := env.Admin(auth.RoleOperator)

	m := testutil.Fixture("Arsenal", "Wolves", time.Hour)
	gameID := env.CreateGame(op, m)

	live := m
	live.Status = domain.MatchInProgress
	live.HomeGoals = 1
	live.HomeOdds = 1.4
	resp := env.POST("/admin/games/"+gameID.String()+"/matches", live, op)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	snap, err := env.Store.LoadGame(context.Background(), gameID)
	require.NoError(t, err)
	require.Len(t, snap.Incoming, 1)
	assert.Equal(t, domain.MatchInProgress, snap.Incoming[0].Status)
	assert.Equal(t, 1, snap.Incoming[0].HomeGoals)
	assert.InDelta(t, 1.4, snap.Incoming[0].HomeOdds, 1e-9)
	assert.Empty(t, snap.Past)
}
