package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error) {
	var p domain.Player
	err := db.QueryRow(ctx, `SELECT id, name FROM players WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, player domain.Player) error {
	_, err := db.Exec(ctx, `INSERT INTO players (id, name) VALUES ($1, $2)`, player.ID, player.Name)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}
