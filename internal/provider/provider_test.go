package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveFile(t *testing.T, path string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFootballData_FetchMatches(t *testing.T) {
	srv := serveFile(t, "testdata/football_data_matches.json", func(r *http.Request) {
		assert.Equal(t, "/v4/competitions/PL/matches", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("season"))
		assert.Equal(t, "secret-token", r.Header.Get("X-Auth-Token"))
	})
	client := NewFootballDataClient(srv.URL+"/", "secret-token", testLogger())

	matches, err := client.FetchMatches(context.Background(), "PL", "2024-2025")
	require.NoError(t, err)
	// Cancelled and malformed matches are dropped.
	require.Len(t, matches, 3)

	finished := matches[0]
	assert.Equal(t, domain.MatchID("PL", "2024-2025", 1, "Manchester United FC", "Fulham FC"), finished.ID)
	assert.Equal(t, domain.MatchFinished, finished.Status)
	assert.Equal(t, 1, finished.HomeGoals)
	assert.Equal(t, 0, finished.AwayGoals)
	assert.Equal(t, 1.6, finished.HomeOdds)
	assert.Equal(t, 4.2, finished.DrawOdds)
	assert.Equal(t, 5.25, finished.AwayOdds)
	assert.Equal(t, time.Date(2024, 8, 16, 19, 0, 0, 0, time.UTC), finished.Date)

	live := matches[1]
	assert.Equal(t, domain.MatchInProgress, live.Status)
	assert.Equal(t, 1, live.AwayGoals)
	assert.Zero(t, live.HomeOdds, "odds package not activated")

	upcoming := matches[2]
	assert.Equal(t, domain.MatchScheduled, upcoming.Status)
	assert.Equal(t, 0, upcoming.HomeGoals)
	assert.Equal(t, "Wolverhampton Wanderers FC", upcoming.AwayTeam)
}

func TestFootballData_StableIDsAcrossFetches(t *testing.T) {
	srv := serveFile(t, "testdata/football_data_matches.json", nil)
	client := NewFootballDataClient(srv.URL, "k", testLogger())

	first, err := client.FetchMatches(context.Background(), "PL", "2024")
	require.NoError(t, err)
	second, err := client.FetchMatches(context.Background(), "PL", "2024")
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestFootballData_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"quota", http.StatusTooManyRequests, `{"message":"slow down"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrQuotaExceeded)
		}},
		{"forbidden", http.StatusForbidden, `{"message":"restricted"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrForbidden)
			assert.Contains(t, err.Error(), "restricted")
		}},
		{"bad json", http.StatusOK, `{"matches":`, func(t *testing.T, err error) {
			assert.Contains(t, err.Error(), "decode")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewFootballDataClient(srv.URL, "k", testLogger()).FetchMatches(context.Background(), "PL", "2024")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in   string
		want domain.MatchStatus
		ok   bool
	}{
		{"SCHEDULED", domain.MatchScheduled, true},
		{"TIMED", domain.MatchScheduled, true},
		{"POSTPONED", domain.MatchScheduled, true},
		{"IN_PLAY", domain.MatchInProgress, true},
		{"PAUSED", domain.MatchInProgress, true},
		{"FINISHED", domain.MatchFinished, true},
		{"AWARDED", domain.MatchFinished, true},
		{"CANCELLED", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := mapStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestSeasonStartYear(t *testing.T) {
	assert.Equal(t, "2024", seasonStartYear("2024"))
	assert.Equal(t, "2024", seasonStartYear("2024-2025"))
	assert.Equal(t, "", seasonStartYear("24"))
}

func TestFixtureSource_FetchMatches(t *testing.T) {
	src := NewFixtureSource("testdata/fixtures.json")

	matches, err := src.FetchMatches(context.Background(), "PL", "2024")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, domain.MatchID("PL", "2024", 1, "Arsenal", "Wolves"), matches[0].ID)
	assert.Equal(t, domain.MatchFinished, matches[0].Status)
	assert.Equal(t, 2, matches[0].HomeGoals)
	assert.Equal(t, domain.MatchInProgress, matches[1].Status)
	assert.Equal(t, domain.MatchScheduled, matches[2].Status, "status defaults to scheduled")

	other, err := src.FetchMatches(context.Background(), "BL1", "2024")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	none, err := src.FetchMatches(context.Background(), "SA", "2024")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFixtureSource_Errors(t *testing.T) {
	_, err := NewFixtureSource(filepath.Join(t.TempDir(), "missing.json")).FetchMatches(context.Background(), "PL", "2024")
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"competitions":[{"competition":"PL","season":"2024","matches":[{"home_team":"A","away_team":"B","date":"2024-08-17T14:00:00Z","status":"abandoned"}]}]}`), 0o644))
	_, err = NewFixtureSource(bad).FetchMatches(context.Background(), "PL", "2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid match status")
}
