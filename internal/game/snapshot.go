package game

import (
	"fmt"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
)

// Snapshot is the persistable state of a game.
type Snapshot struct {
	Game     domain.Game
	Players  []domain.Player
	Incoming []domain.Match
	Past     []domain.Match
	Bets     map[uuid.UUID]map[uuid.UUID]domain.Bet
	Scores   map[uuid.UUID]map[uuid.UUID]int
}

// Restore rebuilds a game, possibly already started, from a snapshot.
// Totals are recomputed from the per-match scores of past matches.
func Restore(s Snapshot) (*Game, error) {
	g := empty(s.Game)

	for _, p := range s.Players {
		if err := g.addPlayerLocked(p); err != nil {
			return nil, err
		}
	}
	for _, m := range s.Incoming {
		g.incoming[m.ID] = m
	}
	for _, m := range s.Past {
		if _, dup := g.incoming[m.ID]; dup {
			return nil, fmt.Errorf("restore game %s: match %s is both incoming and past", s.Game.ID, m.ID)
		}
		g.past[m.ID] = m
	}

	for matchID, byPlayer := range s.Bets {
		if _, ok := g.incoming[matchID]; !ok {
			if _, ok := g.past[matchID]; !ok {
				return nil, fmt.Errorf("restore game %s: bets for unknown match %s", s.Game.ID, matchID)
			}
		}
		for playerID, b := range byPlayer {
			if _, ok := g.members[playerID]; !ok {
				return nil, fmt.Errorf("restore game %s: bet by unknown player %s", s.Game.ID, playerID)
			}
			if g.bets[matchID] == nil {
				g.bets[matchID] = make(map[uuid.UUID]domain.Bet)
			}
			b.MatchID = matchID
			g.bets[matchID][playerID] = b
		}
	}

	for matchID, byPlayer := range s.Scores {
		if _, ok := g.past[matchID]; !ok {
			return nil, fmt.Errorf("restore game %s: scores for match %s that is not past", s.Game.ID, matchID)
		}
		for playerID, pts := range byPlayer {
			if _, ok := g.members[playerID]; !ok {
				return nil, fmt.Errorf("restore game %s: score for unknown player %s", s.Game.ID, playerID)
			}
			if g.scores[matchID] == nil {
				g.scores[matchID] = make(map[uuid.UUID]int)
			}
			g.scores[matchID][playerID] = pts
			g.totals[playerID] += pts
		}
	}

	g.refreshStatusLocked()
	return g, nil
}

// Snapshot copies the current state for persistence.
func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Snapshot{
		Game:     g.header,
		Players:  append([]domain.Player(nil), g.roster...),
		Incoming: make([]domain.Match, 0, len(g.incoming)),
		Past:     make([]domain.Match, 0, len(g.past)),
		Bets:     make(map[uuid.UUID]map[uuid.UUID]domain.Bet, len(g.bets)),
		Scores:   make(map[uuid.UUID]map[uuid.UUID]int, len(g.scores)),
	}
	for _, m := range g.incoming {
		s.Incoming = append(s.Incoming, m)
	}
	for _, m := range g.past {
		s.Past = append(s.Past, m)
	}
	sortMatches(s.Incoming)
	sortMatches(s.Past)
	for matchID, byPlayer := range g.bets {
		s.Bets[matchID] = copyBets(byPlayer)
	}
	for matchID, byPlayer := range g.scores {
		s.Scores[matchID] = copyScores(byPlayer)
	}
	return s
}
