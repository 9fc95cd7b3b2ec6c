package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/attaboy/matchday/internal/domain"
)

var (
	// ErrQuotaExceeded is returned when football-data.org throttles the client.
	ErrQuotaExceeded = errors.New("football-data quota exceeded")

	// ErrForbidden is returned when the API key does not cover the competition.
	ErrForbidden = errors.New("football-data access forbidden")
)

// ── football-data.org v4 types ──

type fdMatchesResponse struct {
	Matches []fdMatch `json:"matches"`
}

type fdMatch struct {
	ID       int     `json:"id"`
	UTCDate  string  `json:"utcDate"`
	Status   string  `json:"status"`
	Matchday int     `json:"matchday"`
	HomeTeam fdTeam  `json:"homeTeam"`
	AwayTeam fdTeam  `json:"awayTeam"`
	Score    fdScore `json:"score"`
	Odds     fdOdds  `json:"odds"`
}

type fdTeam struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
}

type fdScore struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

type fdOdds struct {
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

// mapStatus converts a football-data status. ok is false for matches that
// will never be played.
func mapStatus(s string) (domain.MatchStatus, bool) {
	switch s {
	case "SCHEDULED", "TIMED", "POSTPONED", "SUSPENDED":
		return domain.MatchScheduled, true
	case "IN_PLAY", "PAUSED", "LIVE", "EXTRA_TIME", "PENALTY_SHOOTOUT":
		return domain.MatchInProgress, true
	case "FINISHED", "AWARDED":
		return domain.MatchFinished, true
	default:
		return "", false
	}
}

// ── FootballDataClient ──

// FootballDataClient reads fixtures, live scores and odds from football-data.org.
type FootballDataClient struct {
	baseURL string
	apiKey  string
	logger  *slog.Logger
	client  *http.Client
}

// NewFootballDataClient creates a new football-data.org client.
func NewFootballDataClient(baseURL, apiKey string, logger *slog.Logger) *FootballDataClient {
	return &FootballDataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *FootballDataClient) Name() string { return "football-data" }

// ── HTTP helper ──

func (c *FootballDataClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Auth-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("football-data request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read football-data response: %w", err)
	}

	remaining := resp.Header.Get("X-Requests-Available-Minute")
	c.logger.Debug("football-data request", "path", path, "status", resp.StatusCode, "remaining", remaining)

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, ErrQuotaExceeded
	case http.StatusForbidden:
		return nil, fmt.Errorf("%w (403): %s", ErrForbidden, string(body[:min(200, len(body))]))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("football-data returned %d: %s", resp.StatusCode, string(body[:min(200, len(body))]))
	}

	return body, nil
}

// ── Matches ──

// FetchMatches returns every playable match of the competition season.
func (c *FootballDataClient) FetchMatches(ctx context.Context, competition, season string) ([]domain.Match, error) {
	query := url.Values{}
	if y := seasonStartYear(season); y != "" {
		query.Set("season", y)
	}
	body, err := c.get(ctx, "/v4/competitions/"+url.PathEscape(competition)+"/matches", query)
	if err != nil {
		return nil, err
	}

	var resp fdMatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode football-data matches: %w", err)
	}

	matches := make([]domain.Match, 0, len(resp.Matches))
	for _, fm := range resp.Matches {
		m, ok, err := toDomainMatch(competition, season, fm)
		if err != nil {
			c.logger.Warn("football-data match skipped", "external_id", fm.ID, "error", err)
			continue
		}
		if !ok {
			c.logger.Debug("football-data match dropped", "external_id", fm.ID, "status", fm.Status)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func toDomainMatch(competition, season string, fm fdMatch) (domain.Match, bool, error) {
	status, ok := mapStatus(fm.Status)
	if !ok {
		return domain.Match{}, false, nil
	}
	kickoff, err := time.Parse(time.RFC3339, fm.UTCDate)
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("parse utcDate %q: %w", fm.UTCDate, err)
	}
	if fm.HomeTeam.Name == "" || fm.AwayTeam.Name == "" {
		return domain.Match{}, false, fmt.Errorf("match %d has no team names yet", fm.ID)
	}

	m := domain.NewMatch(competition, season, fm.Matchday, fm.HomeTeam.Name, fm.AwayTeam.Name, kickoff.UTC())
	m.Status = status
	m.HomeOdds = fm.Odds.HomeWin
	m.DrawOdds = fm.Odds.Draw
	m.AwayOdds = fm.Odds.AwayWin
	if fm.Score.FullTime.Home != nil {
		m.HomeGoals = *fm.Score.FullTime.Home
	}
	if fm.Score.FullTime.Away != nil {
		m.AwayGoals = *fm.Score.FullTime.Away
	}
	return m, true, nil
}

// seasonStartYear maps "2024" and "2024-2025" to "2024".
func seasonStartYear(season string) string {
	if len(season) < 4 {
		return ""
	}
	return season[:4]
}
