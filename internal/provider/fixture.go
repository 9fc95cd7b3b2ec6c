package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/attaboy/matchday/internal/domain"
)

type fixtureFile struct {
	Competitions []fixtureCompetition `json:"competitions"`
}

type fixtureCompetition struct {
	Competition string         `json:"competition"`
	Season      string         `json:"season"`
	Matches     []fixtureMatch `json:"matches"`
}

type fixtureMatch struct {
	Matchday  int                `json:"matchday"`
	HomeTeam  string             `json:"home_team"`
	AwayTeam  string             `json:"away_team"`
	Date      time.Time          `json:"date"`
	Status    domain.MatchStatus `json:"status"`
	HomeGoals int                `json:"home_goals"`
	AwayGoals int                `json:"away_goals"`
	HomeOdds  float64            `json:"home_odds"`
	DrawOdds  float64            `json:"draw_odds"`
	AwayOdds  float64            `json:"away_odds"`
}

// FixtureSource serves matches from a JSON file. The file is re-read on every
// fetch so editing it plays out a match day locally.
type FixtureSource struct {
	path string
}

// NewFixtureSource creates a source reading path.
func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{path: path}
}

func (s *FixtureSource) Name() string { return "fixture" }

// FetchMatches returns the matches listed for the competition season.
func (s *FixtureSource) FetchMatches(_ context.Context, competition, season string) ([]domain.Match, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}
	var f fixtureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture file %s: %w", s.path, err)
	}

	var matches []domain.Match
	for _, c := range f.Competitions {
		if c.Competition != competition || c.Season != season {
			continue
		}
		for i, fm := range c.Matches {
			m := domain.NewMatch(competition, season, fm.Matchday, fm.HomeTeam, fm.AwayTeam, fm.Date.UTC())
			if fm.Status != "" {
				m.Status = fm.Status
			}
			m.HomeGoals, m.AwayGoals = fm.HomeGoals, fm.AwayGoals
			m.HomeOdds, m.DrawOdds, m.AwayOdds = fm.HomeOdds, fm.DrawOdds, fm.AwayOdds
			if err := domain.ValidateMatch(m); err != nil {
				return nil, fmt.Errorf("fixture %s/%s match %d: %w", competition, season, i, err)
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}
