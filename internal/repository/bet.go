package repository

import (
	"context"
	"fmt"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
)

type betRepo struct{}

// NewBetRepository returns a pgx-backed BetRepository.
func NewBetRepository() BetRepository {
	return &betRepo{}
}

func (r *betRepo) Upsert(ctx context.Context, db DBTX, gameID, playerID uuid.UUID, bet domain.Bet) error {
	_, err := db.Exec(ctx, `
		INSERT INTO bets (game_id, match_id, player_id, home_goals, away_goals)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, match_id, player_id) DO UPDATE SET
		  home_goals = EXCLUDED.home_goals,
		  away_goals = EXCLUDED.away_goals,
		  placed_at  = now()`,
		gameID, bet.MatchID, playerID, bet.HomeGoals, bet.AwayGoals,
	)
	if err != nil {
		return fmt.Errorf("upsert bet: %w", err)
	}
	return nil
}

func (r *betRepo) ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) (map[uuid.UUID]map[uuid.UUID]domain.Bet, error) {
	rows, err := db.Query(ctx, `
		SELECT match_id, player_id, home_goals, away_goals
		FROM bets WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	bets := make(map[uuid.UUID]map[uuid.UUID]domain.Bet)
	for rows.Next() {
		var b domain.Bet
		var playerID uuid.UUID
		if err := rows.Scan(&b.MatchID, &playerID, &b.HomeGoals, &b.AwayGoals); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		if bets[b.MatchID] == nil {
			bets[b.MatchID] = make(map[uuid.UUID]domain.Bet)
		}
		bets[b.MatchID][playerID] = b
	}
	return bets, rows.Err()
}
