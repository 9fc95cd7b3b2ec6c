package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/game"
	"github.com/google/uuid"
)

type memGame struct {
	header  domain.Game
	roster  []uuid.UUID
	matches map[uuid.UUID]domain.Match
	past    map[uuid.UUID]bool
	bets    map[uuid.UUID]map[uuid.UUID]domain.Bet
	scores  map[uuid.UUID]map[uuid.UUID]int
}

// MemoryStore is a GameStore held in process memory. It backs STORE=memory
// and service tests. Outbox events are kept in order instead of published.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[uuid.UUID]domain.Player
	games   map[uuid.UUID]*memGame
	order   []uuid.UUID
	events  []domain.OutboxDraft
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: make(map[uuid.UUID]domain.Player),
		games:   make(map[uuid.UUID]*memGame),
	}
}

// Events returns every outbox event recorded so far.
func (s *MemoryStore) Events() []domain.OutboxDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OutboxDraft(nil), s.events...)
}

func (s *MemoryStore) CreatePlayer(_ context.Context, p domain.Player, events ...domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("insert player: %s already exists", p.ID)
	}
	s.players[p.ID] = p
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) FindPlayer(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) CreateGame(_ context.Context, g domain.Game, players []domain.Player, matches []domain.Match, events ...domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return fmt.Errorf("insert game: %s already exists", g.ID)
	}
	roster := make([]uuid.UUID, 0, len(players))
	seen := make(map[uuid.UUID]bool, len(players))
	for _, p := range players {
		if _, ok := s.players[p.ID]; !ok {
			return fmt.Errorf("insert game player: player %s does not exist", p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("insert game player: %s listed twice", p.ID)
		}
		seen[p.ID] = true
		roster = append(roster, p.ID)
	}
	mg := &memGame{
		header:  g,
		roster:  roster,
		matches: make(map[uuid.UUID]domain.Match, len(matches)),
		past:    make(map[uuid.UUID]bool),
		bets:    make(map[uuid.UUID]map[uuid.UUID]domain.Bet),
		scores:  make(map[uuid.UUID]map[uuid.UUID]int),
	}
	for _, m := range matches {
		mg.matches[m.ID] = m
	}
	s.games[g.ID] = mg
	s.order = append(s.order, g.ID)
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) LoadGame(_ context.Context, id uuid.UUID) (*game.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mg, ok := s.games[id]
	if !ok {
		return nil, nil
	}

	snap := &game.Snapshot{
		Game:   mg.header,
		Bets:   make(map[uuid.UUID]map[uuid.UUID]domain.Bet, len(mg.bets)),
		Scores: make(map[uuid.UUID]map[uuid.UUID]int, len(mg.scores)),
	}
	for _, pid := range mg.roster {
		snap.Players = append(snap.Players, s.players[pid])
	}
	for id, m := range mg.matches {
		if mg.past[id] {
			snap.Past = append(snap.Past, m)
		} else {
			snap.Incoming = append(snap.Incoming, m)
		}
	}
	byKickoff(snap.Incoming)
	byKickoff(snap.Past)
	for matchID, byPlayer := range mg.bets {
		snap.Bets[matchID] = make(map[uuid.UUID]domain.Bet, len(byPlayer))
		for pid, b := range byPlayer {
			snap.Bets[matchID][pid] = b
		}
	}
	for matchID, byPlayer := range mg.scores {
		snap.Scores[matchID] = make(map[uuid.UUID]int, len(byPlayer))
		for pid, pts := range byPlayer {
			snap.Scores[matchID][pid] = pts
		}
	}
	return snap, nil
}

func (s *MemoryStore) ListGames(_ context.Context, status domain.GameStatus) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []domain.Game
	for _, id := range s.order {
		if g := s.games[id].header; g.Status == status {
			games = append(games, g)
		}
	}
	return games, nil
}

func (s *MemoryStore) AddGamePlayer(_ context.Context, gameID uuid.UUID, p domain.Player, events ...domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mg, err := s.gameLocked(gameID)
	if err != nil {
		return err
	}
	if _, ok := s.players[p.ID]; !ok {
		return fmt.Errorf("insert game player: player %s does not exist", p.ID)
	}
	for _, pid := range mg.roster {
		if pid == p.ID {
			return fmt.Errorf("insert game player: %s already joined", p.ID)
		}
	}
	mg.roster = append(mg.roster, p.ID)
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) SaveBet(_ context.Context, gameID, playerID uuid.UUID, bet domain.Bet, events ...domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mg, err := s.gameLocked(gameID)
	if err != nil {
		return err
	}
	if _, ok := mg.matches[bet.MatchID]; !ok {
		return fmt.Errorf("upsert bet: match %s does not exist", bet.MatchID)
	}
	if mg.bets[bet.MatchID] == nil {
		mg.bets[bet.MatchID] = make(map[uuid.UUID]domain.Bet)
	}
	mg.bets[bet.MatchID][playerID] = bet
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) SaveMatch(_ context.Context, gameID uuid.UUID, m domain.Match, events ...domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mg, err := s.gameLocked(gameID)
	if err != nil {
		return err
	}
	if !mg.past[m.ID] {
		mg.matches[m.ID] = m
	}
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) SaveMatchScores(_ context.Context, gameID uuid.UUID, m domain.Match, scores map[uuid.UUID]int, status domain.GameStatus, events ...domain.OutboxDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mg, err := s.gameLocked(gameID)
	if err != nil {
		return err
	}
	if _, ok := mg.matches[m.ID]; !ok || mg.past[m.ID] {
		return fmt.Errorf("retire match %s: not an incoming match of game %s", m.ID, gameID)
	}
	mg.matches[m.ID] = m
	mg.past[m.ID] = true
	byPlayer := make(map[uuid.UUID]int, len(scores))
	for pid, pts := range scores {
		byPlayer[pid] = pts
	}
	mg.scores[m.ID] = byPlayer
	mg.header.Status = status
	s.events = append(s.events, events...)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) gameLocked(id uuid.UUID) (*memGame, error) {
	mg, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s does not exist", id)
	}
	return mg, nil
}

func byKickoff(ms []domain.Match) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.Before(ms[j].Date)
		}
		return ms[i].ID.String() < ms[j].ID.String()
	})
}

var (
	_ GameStore = (*MemoryStore)(nil)
	_ GameStore = (*PgStore)(nil)
)
