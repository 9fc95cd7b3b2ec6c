package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the lifecycle state reported by the match feed.
type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchInProgress, MatchFinished:
		return true
	}
	return false
}

// matchNamespace seeds the UUIDv5 space for fixture identities.
var matchNamespace = uuid.MustParse("6f1c3b0e-8d2a-5b47-9c1e-3a5d7f9b2c40")

// MatchID derives the identity of a fixture. The same teams, season,
// competition and matchday always produce the same id.
func MatchID(competition, season string, matchday int, homeTeam, awayTeam string) uuid.UUID {
	name := fmt.Sprintf("%s|%s|%d|%s|%s", competition, season, matchday, homeTeam, awayTeam)
	return uuid.NewSHA1(matchNamespace, []byte(name))
}

// Match is an authoritative snapshot of one real-world fixture.
type Match struct {
	ID          uuid.UUID   `json:"id"`
	Competition string      `json:"competition"`
	Season      string      `json:"season"`
	Matchday    int         `json:"matchday"`
	HomeTeam    string      `json:"home_team"`
	AwayTeam    string      `json:"away_team"`
	HomeOdds    float64     `json:"home_odds"`
	DrawOdds    float64     `json:"draw_odds"`
	AwayOdds    float64     `json:"away_odds"`
	Date        time.Time   `json:"date"`
	Status      MatchStatus `json:"status"`
	HomeGoals   int         `json:"home_goals"`
	AwayGoals   int         `json:"away_goals"`
}

// NewMatch builds a scheduled match and assigns its derived id.
func NewMatch(competition, season string, matchday int, homeTeam, awayTeam string, date time.Time) Match {
	return Match{
		ID:          MatchID(competition, season, matchday, homeTeam, awayTeam),
		Competition: competition,
		Season:      season,
		Matchday:    matchday,
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		Date:        date,
		Status:      MatchScheduled,
	}
}

// IsFinished reports whether the feed has marked the match as over.
func (m Match) IsFinished() bool { return m.Status == MatchFinished }

// HasKickedOff reports whether now is at or after kickoff.
func (m Match) HasKickedOff(now time.Time) bool { return !now.Before(m.Date) }

// Outcome classifies the final (or current) score.
func (m Match) Outcome() Outcome { return ClassifyOutcome(m.HomeGoals, m.AwayGoals) }
