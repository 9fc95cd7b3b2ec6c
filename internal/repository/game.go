package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

const gameColumns = `id, name, competition, season, status, created_at`

func (r *gameRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	row := db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *gameRepo) ListByStatus(ctx context.Context, db DBTX, status domain.GameStatus) ([]domain.Game, error) {
	rows, err := db.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games WHERE status = $1
		ORDER BY created_at ASC, id ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (r *gameRepo) Create(ctx context.Context, db DBTX, g domain.Game) error {
	_, err := db.Exec(ctx, `
		INSERT INTO games (id, name, competition, season, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		g.ID, g.Name, g.Competition, g.Season, string(g.Status), g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *gameRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.GameStatus) error {
	tag, err := db.Exec(ctx, `UPDATE games SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update game status: game %s does not exist", id)
	}
	return nil
}

func (r *gameRepo) AddPlayer(ctx context.Context, db DBTX, gameID, playerID uuid.UUID) error {
	_, err := db.Exec(ctx, `INSERT INTO game_players (game_id, player_id) VALUES ($1, $2)`, gameID, playerID)
	if err != nil {
		return fmt.Errorf("insert game player: %w", err)
	}
	return nil
}

func (r *gameRepo) ListPlayers(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Player, error) {
	rows, err := db.Query(ctx, `
		SELECT p.id, p.name
		FROM game_players gp
		JOIN players p ON p.id = gp.player_id
		WHERE gp.game_id = $1
		ORDER BY gp.seq ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan game player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func scanGame(row pgx.Row) (domain.Game, error) {
	var g domain.Game
	var status string
	err := row.Scan(&g.ID, &g.Name, &g.Competition, &g.Season, &status, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return g, err
		}
		return g, fmt.Errorf("scan game: %w", err)
	}
	g.Status = domain.GameStatus(status)
	return g, nil
}
