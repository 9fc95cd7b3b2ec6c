package domain

import "github.com/google/uuid"

// Bet is a predicted final score for one match. A new bet replaces the old one.
type Bet struct {
	MatchID   uuid.UUID `json:"match_id"`
	HomeGoals int       `json:"home_goals"`
	AwayGoals int       `json:"away_goals"`
}

// Outcome classifies the predicted score.
func (b Bet) Outcome() Outcome { return ClassifyOutcome(b.HomeGoals, b.AwayGoals) }

// Precision grades the bet against a match result.
func (b Bet) Precision(m Match) Precision {
	return ComparePrediction(b.HomeGoals, b.AwayGoals, m.HomeGoals, m.AwayGoals)
}
