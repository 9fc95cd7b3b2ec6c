//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// OutboxEventTypes returns the event types recorded for a game, oldest first.
func OutboxEventTypes(t *testing.T, env *TestEnv, gameID uuid.UUID) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := env.Pool.Query(ctx,
		`SELECT "eventType" FROM event_outbox WHERE "aggregateId" = $1 ORDER BY "id"`, gameID.String())
	if err != nil {
		t.Fatalf("OutboxEventTypes: %v", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("OutboxEventTypes: scan: %v", err)
		}
		types = append(types, s)
	}
	return types
}

// MatchScores returns the persisted points per player for one match.
func MatchScores(t *testing.T, env *TestEnv, gameID, matchID uuid.UUID) map[uuid.UUID]int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := env.Pool.Query(ctx,
		`SELECT player_id, points FROM match_scores WHERE game_id = $1 AND match_id = $2`, gameID, matchID)
	if err != nil {
		t.Fatalf("MatchScores: %v", err)
	}
	defer rows.Close()

	scores := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var pts int
		if err := rows.Scan(&id, &pts); err != nil {
			t.Fatalf("MatchScores: scan: %v", err)
		}
		scores[id] = pts
	}
	return scores
}
