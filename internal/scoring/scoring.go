// Package scoring turns a finished match and the predictions made on it into points.
//
// Each prediction slot is scored in stages:
//  1. no bet: fixed penalty, stop
//  2. wrong outcome class: 0, stop
//  3. base points by precision (perfect, close, outcome only)
//  4. odds bonus when a clear favorite did not win
//  5. consensus bonus when few slots share the slot's outcome class
//
// Every multiplicative stage truncates to an integer before the next one runs.
package scoring

import (
	"fmt"
	"math"

	"github.com/attaboy/matchday/internal/domain"
)

const (
	NoBetPenalty  = -100
	PerfectPoints = 500
	ClosePoints   = 400
	OutcomePoints = 300

	// FavoriteOddsGap is the minimum home/away odds gap for a favorite to exist.
	FavoriteOddsGap = 1.5

	DrawMultiplier     = 1.5
	UpsetMultiplier    = 2.0
	RareMultiplier     = 1.25 // at most 25% of slots share the outcome
	MinorityMultiplier = 1.10 // at most 50% of slots share the outcome
)

// Detail explains how one slot's points were reached.
type Detail struct {
	Placed              bool             `json:"placed"`
	Precision           domain.Precision `json:"precision"`
	Base                int              `json:"base"`
	OddsMultiplier      float64          `json:"odds_multiplier"`
	ConsensusMultiplier float64          `json:"consensus_multiplier"`
	Points              int              `json:"points"`
}

// ScoreMatch returns one point value per prediction slot, in slot order.
// A nil slot is a player who did not bet. It panics if m is not finished or
// if a bet targets a different match.
func ScoreMatch(m domain.Match, predictions []*domain.Bet) []int {
	details := Explain(m, predictions)
	points := make([]int, len(details))
	for i, d := range details {
		points[i] = d.Points
	}
	return points
}

// Explain is ScoreMatch with the per-stage breakdown kept.
func Explain(m domain.Match, predictions []*domain.Bet) []Detail {
	if !m.IsFinished() {
		panic(fmt.Sprintf("scoring: match %s is %s, not finished", m.ID, m.Status))
	}

	counts := make(map[domain.Outcome]int, 3)
	for _, b := range predictions {
		if b == nil {
			continue
		}
		if b.MatchID != m.ID {
			panic(fmt.Sprintf("scoring: bet for match %s scored against %s", b.MatchID, m.ID))
		}
		counts[b.Outcome()]++
	}

	oddsMult := oddsMultiplier(m)
	details := make([]Detail, len(predictions))
	for i, b := range predictions {
		details[i] = scoreSlot(m, b, oddsMult, counts, len(predictions))
	}
	return details
}

func scoreSlot(m domain.Match, b *domain.Bet, oddsMult float64, counts map[domain.Outcome]int, total int) Detail {
	if b == nil {
		return Detail{Points: NoBetPenalty}
	}

	d := Detail{Placed: true, Precision: b.Precision(m)}
	switch d.Precision {
	case domain.PrecisionWrong:
		return d
	case domain.PrecisionPerfect:
		d.Base = PerfectPoints
	case domain.PrecisionClose:
		d.Base = ClosePoints
	default:
		d.Base = OutcomePoints
	}

	d.OddsMultiplier = oddsMult
	points := applyMultiplier(d.Base, oddsMult)

	d.ConsensusMultiplier = consensusMultiplier(counts[b.Outcome()], total)
	d.Points = applyMultiplier(points, d.ConsensusMultiplier)
	return d
}

// oddsMultiplier rewards draws and upsets when one side was a clear favorite.
func oddsMultiplier(m domain.Match) float64 {
	if math.Abs(m.HomeOdds-m.AwayOdds) < FavoriteOddsGap {
		return 1
	}
	favorite := domain.OutcomeAway
	if m.HomeOdds < m.AwayOdds {
		favorite = domain.OutcomeHome
	}

	switch m.Outcome() {
	case domain.OutcomeDraw:
		return DrawMultiplier
	case favorite:
		return 1
	default:
		return UpsetMultiplier
	}
}

// consensusMultiplier uses inclusive thresholds on same/total, compared in
// integers so the 25% and 50% boundaries are exact.
func consensusMultiplier(same, total int) float64 {
	if total == 0 {
		return 1
	}
	switch {
	case same*4 <= total:
		return RareMultiplier
	case same*2 <= total:
		return MinorityMultiplier
	default:
		return 1
	}
}

func applyMultiplier(points int, mult float64) int {
	if mult == 1 {
		return points
	}
	return int(float64(points) * mult)
}
