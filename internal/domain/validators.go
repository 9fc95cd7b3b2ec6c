package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	competitionRegex = regexp.MustCompile(`^[A-Z0-9]{2,8}$`)
	seasonRegex      = regexp.MustCompile(`^[0-9]{4}(-[0-9]{4})?$`)
)

const maxNameLength = 64

// ValidatePlayerName checks a display name.
func ValidatePlayerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters", maxNameLength)
	}
	return nil
}

// ValidateCompetition checks a competition code such as "PL" or "WC".
func ValidateCompetition(code string) error {
	if !competitionRegex.MatchString(code) {
		return fmt.Errorf("invalid competition code: %s", code)
	}
	return nil
}

// ValidateSeason checks a season label such as "2024" or "2024-2025".
func ValidateSeason(season string) error {
	if !seasonRegex.MatchString(season) {
		return fmt.Errorf("invalid season: %s", season)
	}
	return nil
}

// ValidateBetGoals checks that predicted goals are non-negative.
func ValidateBetGoals(b Bet) error {
	if b.HomeGoals < 0 || b.AwayGoals < 0 {
		return fmt.Errorf("predicted goals must be non-negative, got %d-%d", b.HomeGoals, b.AwayGoals)
	}
	return nil
}

// ValidateMatch checks a feed snapshot before it reaches a game.
func ValidateMatch(m Match) error {
	if m.HomeTeam == "" || m.AwayTeam == "" {
		return fmt.Errorf("match teams are required")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid match status: %q", m.Status)
	}
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return fmt.Errorf("goals must be non-negative")
	}
	if m.HomeOdds < 0 || m.DrawOdds < 0 || m.AwayOdds < 0 {
		return fmt.Errorf("odds must be non-negative")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}
	return nil
}
