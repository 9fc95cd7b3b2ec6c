package game

import (
	"sort"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/google/uuid"
)

// MatchView is an incoming match with the bets visible to the reader.
type MatchView struct {
	Match domain.Match             `json:"match"`
	Bets  map[uuid.UUID]domain.Bet `json:"bets"`
}

// Result is a retired match with every bet and the points they earned.
type Result struct {
	Match  domain.Match             `json:"match"`
	Bets   map[uuid.UUID]domain.Bet `json:"bets"`
	Scores map[uuid.UUID]int        `json:"scores"`
}

// IncomingMatches returns every incoming match with all of its bets, by kickoff.
func (g *Game) IncomingMatches() []MatchView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.incomingLocked(func(domain.Match, uuid.UUID) bool { return true })
}

// IncomingMatchesFor returns incoming matches with the bets viewer may see:
// everyone's once the match is under way, only the viewer's own before that.
func (g *Game) IncomingMatchesFor(viewer uuid.UUID) []MatchView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.incomingLocked(func(m domain.Match, better uuid.UUID) bool {
		return m.Status != domain.MatchScheduled || better == viewer
	})
}

func (g *Game) incomingLocked(visible func(domain.Match, uuid.UUID) bool) []MatchView {
	matches := make([]domain.Match, 0, len(g.incoming))
	for _, m := range g.incoming {
		matches = append(matches, m)
	}
	sortMatches(matches)

	views := make([]MatchView, len(matches))
	for i, m := range matches {
		bets := make(map[uuid.UUID]domain.Bet)
		for playerID, b := range g.bets[m.ID] {
			if visible(m, playerID) {
				bets[playerID] = b
			}
		}
		views[i] = MatchView{Match: m, Bets: bets}
	}
	return views
}

// PastResults returns retired matches by kickoff.
func (g *Game) PastResults() []Result {
	g.mu.RLock()
	defer g.mu.RUnlock()

	matches := make([]domain.Match, 0, len(g.past))
	for _, m := range g.past {
		matches = append(matches, m)
	}
	sortMatches(matches)

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Match:  m,
			Bets:   copyBets(g.bets[m.ID]),
			Scores: copyScores(g.scores[m.ID]),
		}
	}
	return results
}

// Bets returns a copy of the bets held for a match.
func (g *Game) Bets(matchID uuid.UUID) map[uuid.UUID]domain.Bet {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyBets(g.bets[matchID])
}

// Points returns cumulative points per roster player.
func (g *Game) Points() map[uuid.UUID]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return copyScores(g.totals)
}

// Standings returns the roster ranked by points; ties keep join order.
func (g *Game) Standings() []domain.Standing {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows := make([]domain.Standing, len(g.roster))
	for i, p := range g.roster {
		rows[i] = domain.Standing{PlayerID: p.ID, Name: p.Name, Points: g.totals[p.ID]}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Points > rows[j].Points })
	return rows
}

// Winners returns every player tied on the highest total, in join order.
// When all totals are equal (including all zero) the whole roster wins.
func (g *Game) Winners() []uuid.UUID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.roster) == 0 {
		return nil
	}
	best := g.totals[g.roster[0].ID]
	for _, p := range g.roster[1:] {
		if pts := g.totals[p.ID]; pts > best {
			best = pts
		}
	}
	var winners []uuid.UUID
	for _, p := range g.roster {
		if g.totals[p.ID] == best {
			winners = append(winners, p.ID)
		}
	}
	return winners
}

func copyBets(src map[uuid.UUID]domain.Bet) map[uuid.UUID]domain.Bet {
	dst := make(map[uuid.UUID]domain.Bet, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyScores(src map[uuid.UUID]int) map[uuid.UUID]int {
	dst := make(map[uuid.UUID]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
