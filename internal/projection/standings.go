package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
)

// StandingsProjection is the cached leaderboard of one game.
type StandingsProjection struct {
	GameID    uuid.UUID         `json:"game_id"`
	Status    domain.GameStatus `json:"status"`
	Standings []domain.Standing `json:"standings"`
	Winners   []uuid.UUID       `json:"winners,omitempty"`
	UpdatedAt string            `json:"updated_at"`
}

// Finished games keep their standings for a week.
const (
	liveStandingsTTL     = 10 * time.Minute
	finishedStandingsTTL = 7 * 24 * time.Hour
)

func standingsKey(gameID uuid.UUID) string {
	return fmt.Sprintf("projection:standings:%s", gameID)
}

// UpdateStandings caches a game's leaderboard. UpdatedAt is stamped with the
// current time only when the caller left it empty.
func UpdateStandings(ctx context.Context, store Store, p StandingsProjection) error {
	if p.UpdatedAt == "" {
		p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	ttl := liveStandingsTTL
	if p.Status == domain.GameFinished {
		ttl = finishedStandingsTTL
	}
	return SetJSON(ctx, store, standingsKey(p.GameID), p, ttl)
}

// GetStandings retrieves a cached leaderboard. A miss wraps ErrNotFound.
func GetStandings(ctx context.Context, store Store, gameID uuid.UUID) (*StandingsProjection, error) {
	var p StandingsProjection
	if err := GetJSON(ctx, store, standingsKey(gameID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InvalidateStandings removes a game's cached leaderboard.
func InvalidateStandings(ctx context.Context, store Store, gameID uuid.UUID) error {
	return store.Delete(ctx, standingsKey(gameID))
}
