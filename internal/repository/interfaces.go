package repository

import (
	"context"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PlayerRepository provides access to players.
type PlayerRepository interface {
	// FindByID returns a player by ID, or nil when none exists.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error)

	// Create inserts a new player.
	Create(ctx context.Context, db DBTX, player domain.Player) error
}

// GameRepository provides access to games and game_players.
type GameRepository interface {
	// FindByID returns a game header by ID, or nil when none exists.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)

	// ListByStatus returns game headers in creation order.
	ListByStatus(ctx context.Context, db DBTX, status domain.GameStatus) ([]domain.Game, error)

	// Create inserts a new game header.
	Create(ctx context.Context, db DBTX, g domain.Game) error

	// UpdateStatus sets the overall status of a game.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.GameStatus) error

	// AddPlayer appends a player to the game roster.
	AddPlayer(ctx context.Context, db DBTX, gameID, playerID uuid.UUID) error

	// ListPlayers returns the roster in join order.
	ListPlayers(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Player, error)
}

// MatchRepository provides access to game_matches.
type MatchRepository interface {
	// Upsert inserts a match or refreshes the feed fields of an incoming one.
	// Retired matches are left untouched.
	Upsert(ctx context.Context, db DBTX, gameID uuid.UUID, m domain.Match) error

	// Retire moves a match from incoming to past.
	Retire(ctx context.Context, db DBTX, gameID, matchID uuid.UUID) error

	// ListByGame returns incoming and past matches ordered by kickoff.
	ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) (incoming, past []domain.Match, err error)
}

// BetRepository provides access to bets.
type BetRepository interface {
	// Upsert stores a bet, replacing the player's earlier bet on the same match.
	Upsert(ctx context.Context, db DBTX, gameID, playerID uuid.UUID, bet domain.Bet) error

	// ListByGame returns bets keyed by match then player.
	ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) (map[uuid.UUID]map[uuid.UUID]domain.Bet, error)
}

// ScoreRepository provides access to match_scores.
type ScoreRepository interface {
	// InsertMatch writes the points every roster player earned on one match.
	InsertMatch(ctx context.Context, db DBTX, gameID, matchID uuid.UUID, scores map[uuid.UUID]int) error

	// ListByGame returns points keyed by match then player.
	ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) (map[uuid.UUID]map[uuid.UUID]int, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// InsertAll writes events in order within the caller's transaction.
	InsertAll(ctx context.Context, db DBTX, drafts []domain.OutboxDraft) error
}
