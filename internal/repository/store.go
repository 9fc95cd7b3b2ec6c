package repository

import (
	"context"
	"fmt"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/game"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameStore persists game state. Every write is atomic and records its
// outbox events in the same transaction.
type GameStore interface {
	// CreatePlayer stores a new player identity.
	CreatePlayer(ctx context.Context, p domain.Player, events ...domain.OutboxDraft) error

	// FindPlayer returns a player, or nil when none exists.
	FindPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error)

	// CreateGame stores a game header with its starting roster and incoming
	// matches. Nothing is stored when any part fails.
	CreateGame(ctx context.Context, g domain.Game, players []domain.Player, matches []domain.Match, events ...domain.OutboxDraft) error

	// LoadGame returns the full persisted state of a game, or nil when none exists.
	LoadGame(ctx context.Context, id uuid.UUID) (*game.Snapshot, error)

	// ListGames returns game headers with the given status.
	ListGames(ctx context.Context, status domain.GameStatus) ([]domain.Game, error)

	// AddGamePlayer appends a player to a game roster.
	AddGamePlayer(ctx context.Context, gameID uuid.UUID, p domain.Player, events ...domain.OutboxDraft) error

	// SaveBet stores or replaces a player's bet.
	SaveBet(ctx context.Context, gameID, playerID uuid.UUID, bet domain.Bet, events ...domain.OutboxDraft) error

	// SaveMatch stores the latest feed snapshot of an incoming match.
	SaveMatch(ctx context.Context, gameID uuid.UUID, m domain.Match, events ...domain.OutboxDraft) error

	// SaveMatchScores retires a finished match with its scores and sets the game status.
	SaveMatchScores(ctx context.Context, gameID uuid.UUID, m domain.Match, scores map[uuid.UUID]int, status domain.GameStatus, events ...domain.OutboxDraft) error

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}

// PgStore is the PostgreSQL GameStore.
type PgStore struct {
	pool    *pgxpool.Pool
	players PlayerRepository
	games   GameRepository
	matches MatchRepository
	bets    BetRepository
	scores  ScoreRepository
	outbox  OutboxRepository
}

// NewPgStore creates a GameStore backed by the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		pool:    pool,
		players: NewPlayerRepository(),
		games:   NewGameRepository(),
		matches: NewMatchRepository(),
		bets:    NewBetRepository(),
		scores:  NewScoreRepository(),
		outbox:  NewOutboxRepository(),
	}
}

// inTx runs fn and writes events inside one transaction.
func (s *PgStore) inTx(ctx context.Context, events []domain.OutboxDraft, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := s.outbox.InsertAll(ctx, tx, events); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PgStore) CreatePlayer(ctx context.Context, p domain.Player, events ...domain.OutboxDraft) error {
	return s.inTx(ctx, events, func(tx pgx.Tx) error {
		return s.players.Create(ctx, tx, p)
	})
}

func (s *PgStore) FindPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return s.players.FindByID(ctx, s.pool, id)
}

func (s *PgStore) CreateGame(ctx context.Context, g domain.Game, players []domain.Player, matches []domain.Match, events ...domain.OutboxDraft) error {
	return s.inTx(ctx, events, func(tx pgx.Tx) error {
		if err := s.games.Create(ctx, tx, g); err != nil {
			return err
		}
		for _, p := range players {
			if err := s.games.AddPlayer(ctx, tx, g.ID, p.ID); err != nil {
				return err
			}
		}
		for _, m := range matches {
			if err := s.matches.Upsert(ctx, tx, g.ID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadGame reads every table under one repeatable-read snapshot.
func (s *PgStore) LoadGame(ctx context.Context, id uuid.UUID) (*game.Snapshot, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	header, err := s.games.FindByID(ctx, tx, id)
	if err != nil || header == nil {
		return nil, err
	}
	snap := &game.Snapshot{Game: *header}

	if snap.Players, err = s.games.ListPlayers(ctx, tx, id); err != nil {
		return nil, err
	}
	if snap.Incoming, snap.Past, err = s.matches.ListByGame(ctx, tx, id); err != nil {
		return nil, err
	}
	if snap.Bets, err = s.bets.ListByGame(ctx, tx, id); err != nil {
		return nil, err
	}
	if snap.Scores, err = s.scores.ListByGame(ctx, tx, id); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PgStore) ListGames(ctx context.Context, status domain.GameStatus) ([]domain.Game, error) {
	return s.games.ListByStatus(ctx, s.pool, status)
}

func (s *PgStore) AddGamePlayer(ctx context.Context, gameID uuid.UUID, p domain.Player, events ...domain.OutboxDraft) error {
	return s.inTx(ctx, events, func(tx pgx.Tx) error {
		return s.games.AddPlayer(ctx, tx, gameID, p.ID)
	})
}

func (s *PgStore) SaveBet(ctx context.Context, gameID, playerID uuid.UUID, bet domain.Bet, events ...domain.OutboxDraft) error {
	return s.inTx(ctx, events, func(tx pgx.Tx) error {
		return s.bets.Upsert(ctx, tx, gameID, playerID, bet)
	})
}

func (s *PgStore) SaveMatch(ctx context.Context, gameID uuid.UUID, m domain.Match, events ...domain.OutboxDraft) error {
	return s.inTx(ctx, events, func(tx pgx.Tx) error {
		return s.matches.Upsert(ctx, tx, gameID, m)
	})
}

func (s *PgStore) SaveMatchScores(ctx context.Context, gameID uuid.UUID, m domain.Match, scores map[uuid.UUID]int, status domain.GameStatus, events ...domain.OutboxDraft) error {
	return s.inTx(ctx, events, func(tx pgx.Tx) error {
		if err := s.matches.Upsert(ctx, tx, gameID, m); err != nil {
			return err
		}
		if err := s.matches.Retire(ctx, tx, gameID, m.ID); err != nil {
			return err
		}
		if err := s.scores.InsertMatch(ctx, tx, gameID, m.ID, scores); err != nil {
			return err
		}
		return s.games.UpdateStatus(ctx, tx, gameID, status)
	})
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
