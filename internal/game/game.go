// Package game holds the authoritative in-memory state of one competition:
// its roster, its incoming and past matches, the bets placed on them and the
// points they earned.
//
// A Game is safe for concurrent use. Every operation runs under a single
// lock; none of them perform I/O.
package game

import (
	"sort"
	"sync"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/scoring"
	"github.com/google/uuid"
)

// Game is the aggregate root for one competition.
type Game struct {
	mu sync.RWMutex

	header   domain.Game
	roster   []domain.Player
	members  map[uuid.UUID]struct{}
	incoming map[uuid.UUID]domain.Match
	past     map[uuid.UUID]domain.Match
	bets     map[uuid.UUID]map[uuid.UUID]domain.Bet // match -> player -> bet
	scores   map[uuid.UUID]map[uuid.UUID]int        // match -> player -> points
	totals   map[uuid.UUID]int
}

// New creates a fresh game with no past matches.
func New(header domain.Game, players []domain.Player, incoming []domain.Match) (*Game, error) {
	return Restore(Snapshot{Game: header, Players: players, Incoming: incoming})
}

func empty(header domain.Game) *Game {
	return &Game{
		header:   header,
		members:  make(map[uuid.UUID]struct{}),
		incoming: make(map[uuid.UUID]domain.Match),
		past:     make(map[uuid.UUID]domain.Match),
		bets:     make(map[uuid.UUID]map[uuid.UUID]domain.Bet),
		scores:   make(map[uuid.UUID]map[uuid.UUID]int),
		totals:   make(map[uuid.UUID]int),
	}
}

// ID returns the game id.
func (g *Game) ID() uuid.UUID { return g.header.ID }

// Header returns the persisted header with the current status.
func (g *Game) Header() domain.Game {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.header
}

// Status returns the overall game status.
func (g *Game) Status() domain.GameStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.header.Status
}

// Players returns the roster in join order.
func (g *Game) Players() []domain.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]domain.Player(nil), g.roster...)
}

// Player returns a roster member.
func (g *Game) Player(id uuid.UUID) (domain.Player, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.roster {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Player{}, domain.ErrNotFound("player", id.String())
}

// AddPlayer appends a player to the roster.
func (g *Game) AddPlayer(p domain.Player) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addPlayerLocked(p)
}

func (g *Game) addPlayerLocked(p domain.Player) error {
	if _, ok := g.members[p.ID]; ok {
		return domain.ErrDuplicatePlayer(p.ID.String())
	}
	g.roster = append(g.roster, p)
	g.members[p.ID] = struct{}{}
	g.totals[p.ID] = 0
	return nil
}

// ValidateBet checks whether player may place bet at now. It has no side effects.
func (g *Game) ValidateBet(playerID uuid.UUID, bet domain.Bet, now time.Time) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	m, ok := g.incoming[bet.MatchID]
	if !ok {
		return domain.ErrNotFound("match", bet.MatchID.String())
	}
	if _, ok := g.members[playerID]; !ok {
		return domain.ErrNotFound("player", playerID.String())
	}
	if m.HasKickedOff(now) {
		return domain.ErrTooLate(m.ID.String())
	}
	if err := domain.ValidateBetGoals(bet); err != nil {
		return domain.ErrValidation(err.Error())
	}
	return nil
}

// AddPlayerBet stores bet, replacing any earlier bet by the same player on the
// same match. Kickoff is not checked here; callers run ValidateBet first.
func (g *Game) AddPlayerBet(playerID uuid.UUID, bet domain.Bet) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.incoming[bet.MatchID]; !ok {
		return domain.ErrNotFound("match", bet.MatchID.String())
	}
	if _, ok := g.members[playerID]; !ok {
		return domain.ErrNotFound("player", playerID.String())
	}
	byPlayer := g.bets[bet.MatchID]
	if byPlayer == nil {
		byPlayer = make(map[uuid.UUID]domain.Bet)
		g.bets[bet.MatchID] = byPlayer
	}
	byPlayer[playerID] = bet
	return nil
}

// UpdateMatch replaces an incoming match with a fresher feed snapshot.
func (g *Game) UpdateMatch(m domain.Match) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.incoming[m.ID]; !ok {
		return domain.ErrNotFound("match", m.ID.String())
	}
	g.incoming[m.ID] = m
	return nil
}

// CalculateMatchScores scores a finished incoming match against the bets held
// for it, one slot per roster player. It does not change any state.
func (g *Game) CalculateMatchScores(matchID uuid.UUID) (map[uuid.UUID]int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	m, ok := g.incoming[matchID]
	if !ok {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	if !m.IsFinished() {
		return nil, domain.ErrNotFinished(matchID.String())
	}

	slots := make([]*domain.Bet, len(g.roster))
	for i, p := range g.roster {
		if b, ok := g.bets[matchID][p.ID]; ok {
			slots[i] = &b
		}
	}
	points := scoring.ScoreMatch(m, slots)

	scores := make(map[uuid.UUID]int, len(g.roster))
	for i, p := range g.roster {
		scores[p.ID] = points[i]
	}
	return scores, nil
}

// ApplyMatchScores credits scores, retires the match to past and finishes the
// game once nothing is incoming. A match already in past is rejected.
func (g *Game) ApplyMatchScores(matchID uuid.UUID, scores map[uuid.UUID]int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.past[matchID]; ok {
		return domain.ErrAlreadyFinished(matchID.String())
	}
	m, ok := g.incoming[matchID]
	if !ok {
		return domain.ErrNotFound("match", matchID.String())
	}
	for playerID := range scores {
		if _, ok := g.members[playerID]; !ok {
			return domain.ErrNotFound("player", playerID.String())
		}
	}

	byPlayer := g.scores[matchID]
	if byPlayer == nil {
		byPlayer = make(map[uuid.UUID]int, len(scores))
		g.scores[matchID] = byPlayer
	}
	for playerID, pts := range scores {
		byPlayer[playerID] += pts
		g.totals[playerID] += pts
	}

	delete(g.incoming, matchID)
	g.past[matchID] = m
	g.refreshStatusLocked()
	return nil
}

func (g *Game) refreshStatusLocked() {
	if len(g.incoming) == 0 {
		g.header.Status = domain.GameFinished
		return
	}
	g.header.Status = domain.GameScheduled
}

// IsIncoming reports whether the match is still open for scoring.
func (g *Game) IsIncoming(matchID uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.incoming[matchID]
	return ok
}

// IsPast reports whether the match has been scored and retired.
func (g *Game) IsPast(matchID uuid.UUID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.past[matchID]
	return ok
}

// Match returns an incoming or past match by id.
func (g *Game) Match(matchID uuid.UUID) (domain.Match, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if m, ok := g.incoming[matchID]; ok {
		return m, nil
	}
	if m, ok := g.past[matchID]; ok {
		return m, nil
	}
	return domain.Match{}, domain.ErrNotFound("match", matchID.String())
}

func sortMatches(ms []domain.Match) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.Before(ms[j].Date)
		}
		return ms[i].ID.String() < ms[j].ID.String()
	})
}
