//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/service"
	"github.com/google/uuid"
)

// Session is a signed-in caller.
type Session struct {
	Token  string        `json:"token"`
	Player domain.Player `json:"player"`
}

// Do performs a request with an optional JSON body and bearer token.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an authenticated GET request.
func (env *TestEnv) GET(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, token)
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, token)
}

// Guest signs in a new guest player.
func (env *TestEnv) Guest(name string) Session {
	env.t.Helper()
	resp := env.POST("/auth/guest", map[string]string{"name": name}, "")
	AssertStatus(env.t, resp, http.StatusCreated)
	var s Session
	DecodeJSON(env.t, resp, &s)
	return s
}

// Admin exchanges the API key for an admin token with the given role.
func (env *TestEnv) Admin(role string) string {
	env.t.Helper()
	resp := env.POST("/auth/admin", map[string]string{"api_key": TestAdminAPIKey, "role": role}, "")
	AssertStatus(env.t, resp, http.StatusOK)
	var s Session
	DecodeJSON(env.t, resp, &s)
	return s.Token
}

// CreateGame creates a game over the given matches through the admin API.
func (env *TestEnv) CreateGame(adminToken string, matches ...domain.Match) uuid.UUID {
	env.t.Helper()
	resp := env.POST("/admin/games", service.CreateGameInput{
		Name:        "integration pool",
		Competition: matches[0].Competition,
		Season:      matches[0].Season,
		Matches:     matches,
	}, adminToken)
	AssertStatus(env.t, resp, http.StatusCreated)
	var view struct {
		ID uuid.UUID `json:"id"`
	}
	DecodeJSON(env.t, resp, &view)
	return view.ID
}

// Join adds a session's player to a game.
func (env *TestEnv) Join(gameID uuid.UUID, s Session) {
	env.t.Helper()
	resp := env.POST("/games/"+gameID.String()+"/join", nil, s.Token)
	defer resp.Body.Close()
	AssertStatus(env.t, resp, http.StatusNoContent)
}

// Bet places a bet for a session's player.
func (env *TestEnv) Bet(gameID, matchID uuid.UUID, s Session, home, away int) {
	env.t.Helper()
	resp := env.POST("/games/"+gameID.String()+"/bets", map[string]interface{}{
		"match_id": matchID, "home_goals": home, "away_goals": away,
	}, s.Token)
	defer resp.Body.Close()
	AssertStatus(env.t, resp, http.StatusCreated)
}

// Fixture builds a scheduled match with odds kicking off after d.
func Fixture(home, away string, d time.Duration) domain.Match {
	m := domain.NewMatch("PL", "2024", 1, home, away, time.Now().Add(d).Truncate(time.Second).UTC())
	m.HomeOdds, m.DrawOdds, m.AwayOdds = 2.0, 3.2, 2.5
	return m
}
