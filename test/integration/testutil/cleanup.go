//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every table the store writes.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx, `
		TRUNCATE event_outbox, match_scores, bets, game_matches, game_players, games, players
		RESTART IDENTITY CASCADE`)
	if err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
