package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/game"
	"github.com/attaboy/matchday/internal/projection"
	"github.com/attaboy/matchday/internal/provider"
	"github.com/attaboy/matchday/internal/repository"
	"github.com/google/uuid"
)

// Publisher fans game events out to live subscribers.
type Publisher interface {
	PublishToGame(gameID string, event string, data interface{})
}

// UpdateResult tells what a match update did to a game.
type UpdateResult int

const (
	// UpdateIgnored means the game does not track the match, or already scored it.
	UpdateIgnored UpdateResult = iota
	// UpdateStored means the snapshot replaced the incoming match.
	UpdateStored
	// UpdateScored means the match finished and its points were credited.
	UpdateScored
)

func (r UpdateResult) String() string {
	switch r {
	case UpdateStored:
		return "stored"
	case UpdateScored:
		return "scored"
	default:
		return "ignored"
	}
}

// gameEntry serialises the validate, persist and apply steps of one game.
type gameEntry struct {
	mu   sync.Mutex
	game *game.Game
}

// GameService owns every loaded Game and keeps it in step with the GameStore.
type GameService struct {
	store       repository.GameStore
	projections projection.Store
	publisher   Publisher
	source      provider.MatchSource
	logger      *slog.Logger
	now         func() time.Time

	mu    sync.Mutex
	games map[uuid.UUID]*gameEntry
}

// NewGameService creates a GameService. publisher and source may be nil.
func NewGameService(store repository.GameStore, projections projection.Store, publisher Publisher, source provider.MatchSource, logger *slog.Logger) *GameService {
	return &GameService{
		store:       store,
		projections: projections,
		publisher:   publisher,
		source:      source,
		logger:      logger,
		now:         time.Now,
		games:       make(map[uuid.UUID]*gameEntry),
	}
}

// WithClock replaces the clock used for kickoff checks.
func (s *GameService) WithClock(now func() time.Time) *GameService {
	s.now = now
	return s
}

// ── Players ──

// CreatePlayer registers a new guest player.
func (s *GameService) CreatePlayer(ctx context.Context, name string) (*domain.Player, error) {
	if err := domain.ValidatePlayerName(name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	p := domain.NewPlayer(name)
	if err := s.store.CreatePlayer(ctx, p, domain.NewPlayerCreatedEvent(p)); err != nil {
		return nil, domain.ErrInternal("create player", err)
	}
	s.logger.Info("player created", "player_id", p.ID)
	return &p, nil
}

// FindPlayer returns a registered player.
func (s *GameService) FindPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	p, err := s.store.FindPlayer(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound("player", id.String())
	}
	return p, nil
}

// ── Games ──

// CreateGameInput describes a new competition. When Matches is empty the
// fixtures are fetched from the configured MatchSource.
type CreateGameInput struct {
	Name        string         `json:"name"`
	Competition string         `json:"competition"`
	Season      string         `json:"season"`
	PlayerIDs   []uuid.UUID    `json:"player_ids"`
	Matches     []domain.Match `json:"matches"`
}

// CreateGame persists and loads a new game.
func (s *GameService) CreateGame(ctx context.Context, input CreateGameInput) (*game.Game, error) {
	if input.Name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if err := domain.ValidateCompetition(input.Competition); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateSeason(input.Season); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	matches := input.Matches
	if len(matches) == 0 {
		if s.source == nil {
			return nil, domain.ErrValidation("matches are required when no match provider is configured")
		}
		fetched, err := s.source.FetchMatches(ctx, input.Competition, input.Season)
		if err != nil {
			return nil, domain.ErrInternal("fetch fixtures", err)
		}
		matches = fetched
	}

	incoming := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if m.ID == uuid.Nil {
			m.ID = domain.MatchID(input.Competition, input.Season, m.Matchday, m.HomeTeam, m.AwayTeam)
		}
		if m.Competition == "" {
			m.Competition, m.Season = input.Competition, input.Season
		}
		if m.Status == "" {
			m.Status = domain.MatchScheduled
		}
		if err := domain.ValidateMatch(m); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		if m.IsFinished() {
			continue
		}
		incoming = append(incoming, m)
	}
	if len(incoming) == 0 {
		return nil, domain.ErrValidation("game needs at least one unfinished match")
	}

	players := make([]domain.Player, 0, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		p, err := s.FindPlayer(ctx, id)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}

	header := domain.Game{
		ID:          uuid.New(),
		Name:        input.Name,
		Competition: input.Competition,
		Season:      input.Season,
		Status:      domain.GameScheduled,
		CreatedAt:   s.now().UTC(),
	}
	g, err := game.New(header, players, incoming)
	if err != nil {
		return nil, err
	}

	events := []domain.OutboxDraft{domain.NewGameCreatedEvent(header, len(incoming))}
	for _, p := range players {
		events = append(events, domain.NewPlayerJoinedEvent(header.ID, p))
	}
	if err := s.store.CreateGame(ctx, header, players, incoming, events...); err != nil {
		return nil, domain.ErrInternal("create game", err)
	}

	s.mu.Lock()
	s.games[header.ID] = &gameEntry{game: g}
	s.mu.Unlock()

	s.refreshStandings(ctx, g)
	s.logger.Info("game created", "game_id", header.ID, "competition", header.Competition,
		"season", header.Season, "matches", len(incoming), "players", len(players))
	return g, nil
}

// Game returns a game, loading it from the store on first use.
func (s *GameService) Game(ctx context.Context, id uuid.UUID) (*game.Game, error) {
	e, err := s.entry(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.game, nil
}

// entry returns the registry entry for id, loading it on first use. The
// registry lock is not held while the store loads.
func (s *GameService) entry(ctx context.Context, id uuid.UUID) (*gameEntry, error) {
	s.mu.Lock()
	e, ok := s.games[id]
	s.mu.Unlock()
	if ok {
		return e, nil
	}

	snap, err := s.store.LoadGame(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("load game", err)
	}
	if snap == nil {
		return nil, domain.ErrNotFound("game", id.String())
	}
	g, err := game.Restore(*snap)
	if err != nil {
		return nil, domain.ErrInternal("restore game", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if loaded, ok := s.games[id]; ok {
		return loaded, nil
	}
	e = &gameEntry{game: g}
	s.games[id] = e
	s.logger.Debug("game loaded", "game_id", id)
	return e, nil
}

// ListActive returns the headers of every game still taking bets.
func (s *GameService) ListActive(ctx context.Context) ([]domain.Game, error) {
	games, err := s.store.ListGames(ctx, domain.GameScheduled)
	if err != nil {
		return nil, domain.ErrInternal("list games", err)
	}
	return games, nil
}

// JoinGame adds a registered player to a game roster.
func (s *GameService) JoinGame(ctx context.Context, gameID, playerID uuid.UUID) error {
	p, err := s.FindPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	e, err := s.entry(ctx, gameID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.game
	if g.Status() == domain.GameFinished {
		return domain.ErrValidation("game is finished")
	}
	if _, err := g.Player(playerID); err == nil {
		return domain.ErrDuplicatePlayer(playerID.String())
	}
	if err := s.store.AddGamePlayer(ctx, gameID, *p, domain.NewPlayerJoinedEvent(gameID, *p)); err != nil {
		return domain.ErrInternal("add game player", err)
	}
	if err := g.AddPlayer(*p); err != nil {
		return err
	}

	s.refreshStandings(ctx, g)
	s.publish(gameID, "player.joined", p)
	s.logger.Info("player joined", "game_id", gameID, "player_id", playerID)
	return nil
}

// PlaceBet validates a bet against the current clock, then stores it.
func (s *GameService) PlaceBet(ctx context.Context, gameID, playerID uuid.UUID, bet domain.Bet) error {
	e, err := s.entry(ctx, gameID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.game
	if err := g.ValidateBet(playerID, bet, s.now()); err != nil {
		return err
	}
	if err := s.store.SaveBet(ctx, gameID, playerID, bet, domain.NewBetPlacedEvent(gameID, playerID, bet)); err != nil {
		return domain.ErrInternal("save bet", err)
	}
	if err := g.AddPlayerBet(playerID, bet); err != nil {
		return err
	}

	// Predictions stay private until kickoff.
	s.publish(gameID, "bet.placed", map[string]string{
		"player_id": playerID.String(),
		"match_id":  bet.MatchID.String(),
	})
	s.logger.Info("bet placed", "game_id", gameID, "player_id", playerID, "match_id", bet.MatchID)
	return nil
}

// ApplyMatchUpdate feeds a match snapshot into a game. A finished snapshot is
// scored and retired. Snapshots for matches the game does not hold as
// incoming are ignored so feed redeliveries are harmless.
func (s *GameService) ApplyMatchUpdate(ctx context.Context, gameID uuid.UUID, m domain.Match) (UpdateResult, error) {
	if err := domain.ValidateMatch(m); err != nil {
		return UpdateIgnored, domain.ErrValidation(err.Error())
	}
	e, err := s.entry(ctx, gameID)
	if err != nil {
		return UpdateIgnored, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	g := e.game
	if !g.IsIncoming(m.ID) {
		return UpdateIgnored, nil
	}

	if !m.IsFinished() {
		if err := s.store.SaveMatch(ctx, gameID, m, domain.NewMatchUpdatedEvent(gameID, m)); err != nil {
			return UpdateIgnored, domain.ErrInternal("save match", err)
		}
		if err := g.UpdateMatch(m); err != nil {
			return UpdateIgnored, err
		}
		s.publish(gameID, "match.updated", m)
		return UpdateStored, nil
	}

	// Score on a copy first so the store commits before the live game changes.
	preview, err := game.Restore(g.Snapshot())
	if err != nil {
		return UpdateIgnored, domain.ErrInternal("copy game", err)
	}
	if err := preview.UpdateMatch(m); err != nil {
		return UpdateIgnored, err
	}
	scores, err := preview.CalculateMatchScores(m.ID)
	if err != nil {
		return UpdateIgnored, err
	}
	if err := preview.ApplyMatchScores(m.ID, scores); err != nil {
		return UpdateIgnored, err
	}

	events := []domain.OutboxDraft{domain.NewMatchScoredEvent(gameID, m, scores)}
	status := preview.Status()
	if status == domain.GameFinished {
		events = append(events, domain.NewGameFinishedEvent(gameID, preview.Winners()))
	}
	if err := s.store.SaveMatchScores(ctx, gameID, m, scores, status, events...); err != nil {
		return UpdateIgnored, domain.ErrInternal("save match scores", err)
	}

	if err := g.UpdateMatch(m); err != nil {
		return UpdateIgnored, err
	}
	if err := g.ApplyMatchScores(m.ID, scores); err != nil {
		return UpdateIgnored, err
	}

	s.refreshStandings(ctx, g)
	s.publish(gameID, "match.scored", map[string]interface{}{"match": m, "scores": scores})
	if status == domain.GameFinished {
		s.publish(gameID, "game.finished", map[string]interface{}{"winners": g.Winners()})
		s.logger.Info("game finished", "game_id", gameID, "winners", len(g.Winners()))
	}
	s.logger.Info("match scored", "game_id", gameID, "match_id", m.ID,
		"home_goals", m.HomeGoals, "away_goals", m.AwayGoals)
	return UpdateScored, nil
}

// ── Queries ──

// IncomingMatches returns the incoming matches with the bets viewer may see.
func (s *GameService) IncomingMatches(ctx context.Context, gameID, viewer uuid.UUID) ([]game.MatchView, error) {
	g, err := s.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.IncomingMatchesFor(viewer), nil
}

// Match returns one match of a game, incoming or past.
func (s *GameService) Match(ctx context.Context, gameID, matchID uuid.UUID) (domain.Match, error) {
	g, err := s.Game(ctx, gameID)
	if err != nil {
		return domain.Match{}, err
	}
	return g.Match(matchID)
}

// PastResults returns retired matches with every bet and the points earned.
func (s *GameService) PastResults(ctx context.Context, gameID uuid.UUID) ([]game.Result, error) {
	g, err := s.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return g.PastResults(), nil
}

// Standings returns the leaderboard, served from the projection store when warm.
func (s *GameService) Standings(ctx context.Context, gameID uuid.UUID) (*projection.StandingsProjection, error) {
	cached, err := projection.GetStandings(ctx, s.projections, gameID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, projection.ErrNotFound) {
		s.logger.Warn("standings projection read failed", "game_id", gameID, "error", err)
	}

	g, err := s.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.refreshStandings(ctx, g), nil
}

// Winners returns the players tied on the highest total.
func (s *GameService) Winners(ctx context.Context, gameID uuid.UUID) ([]domain.Player, error) {
	g, err := s.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	ids := g.Winners()
	winners := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		p, err := g.Player(id)
		if err != nil {
			return nil, fmt.Errorf("resolve winner: %w", err)
		}
		winners = append(winners, p)
	}
	return winners, nil
}

func (s *GameService) refreshStandings(ctx context.Context, g *game.Game) *projection.StandingsProjection {
	p := projection.StandingsProjection{
		GameID:    g.ID(),
		Status:    g.Status(),
		Standings: g.Standings(),
		Winners:   g.Winners(),
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := projection.UpdateStandings(ctx, s.projections, p); err != nil {
		s.logger.Warn("standings projection write failed", "game_id", g.ID(), "error", err)
		// A stale leaderboard must not outlive the write it missed.
		if err := projection.InvalidateStandings(ctx, s.projections, g.ID()); err != nil {
			s.logger.Error("standings projection invalidate failed", "game_id", g.ID(), "error", err)
		}
	}
	return &p
}

func (s *GameService) publish(gameID uuid.UUID, event string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishToGame(gameID.String(), event, data)
}
