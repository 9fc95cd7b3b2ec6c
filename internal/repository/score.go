package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type scoreRepo struct{}

// NewScoreRepository returns a pgx-backed ScoreRepository.
func NewScoreRepository() ScoreRepository {
	return &scoreRepo{}
}

// InsertMatch writes all rows in one statement via unnest.
func (r *scoreRepo) InsertMatch(ctx context.Context, db DBTX, gameID, matchID uuid.UUID, scores map[uuid.UUID]int) error {
	if len(scores) == 0 {
		return nil
	}
	playerIDs := make([]uuid.UUID, 0, len(scores))
	points := make([]int32, 0, len(scores))
	for id, pts := range scores {
		playerIDs = append(playerIDs, id)
		points = append(points, int32(pts))
	}

	_, err := db.Exec(ctx, `
		INSERT INTO match_scores (game_id, match_id, player_id, points)
		SELECT $1, $2, s.player_id, s.points
		FROM unnest($3::uuid[], $4::int[]) AS s(player_id, points)`,
		gameID, matchID, playerIDs, points,
	)
	if err != nil {
		return fmt.Errorf("insert match scores: %w", err)
	}
	return nil
}

func (r *scoreRepo) ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) (map[uuid.UUID]map[uuid.UUID]int, error) {
	rows, err := db.Query(ctx, `
		SELECT match_id, player_id, points
		FROM match_scores WHERE game_id = $1`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list match scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[uuid.UUID]map[uuid.UUID]int)
	for rows.Next() {
		var matchID, playerID uuid.UUID
		var pts int
		if err := rows.Scan(&matchID, &playerID, &pts); err != nil {
			return nil, fmt.Errorf("scan match score: %w", err)
		}
		if scores[matchID] == nil {
			scores[matchID] = make(map[uuid.UUID]int)
		}
		scores[matchID][playerID] = pts
	}
	return scores, rows.Err()
}
