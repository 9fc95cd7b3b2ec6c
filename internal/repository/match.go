package repository

import (
	"context"
	"fmt"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

func (r *matchRepo) Upsert(ctx context.Context, db DBTX, gameID uuid.UUID, m domain.Match) error {
	_, err := db.Exec(ctx, `
		INSERT INTO game_matches
		  (game_id, id, competition, season, matchday, home_team, away_team,
		   home_odds, draw_odds, away_odds, kickoff_at, status, home_goals, away_goals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (game_id, id) DO UPDATE SET
		  home_odds  = EXCLUDED.home_odds,
		  draw_odds  = EXCLUDED.draw_odds,
		  away_odds  = EXCLUDED.away_odds,
		  kickoff_at = EXCLUDED.kickoff_at,
		  status     = EXCLUDED.status,
		  home_goals = EXCLUDED.home_goals,
		  away_goals = EXCLUDED.away_goals,
		  updated_at = now()
		WHERE game_matches.past = false`,
		gameID,
		m.ID,
		m.Competition,
		m.Season,
		m.Matchday,
		m.HomeTeam,
		m.AwayTeam,
		infra.OddsToNumeric(m.HomeOdds),
		infra.OddsToNumeric(m.DrawOdds),
		infra.OddsToNumeric(m.AwayOdds),
		m.Date,
		string(m.Status),
		m.HomeGoals,
		m.AwayGoals,
	)
	if err != nil {
		return fmt.Errorf("upsert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *matchRepo) Retire(ctx context.Context, db DBTX, gameID, matchID uuid.UUID) error {
	tag, err := db.Exec(ctx, `
		UPDATE game_matches SET past = true, updated_at = now()
		WHERE game_id = $1 AND id = $2 AND past = false`, gameID, matchID)
	if err != nil {
		return fmt.Errorf("retire match %s: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("retire match %s: not an incoming match of game %s", matchID, gameID)
	}
	return nil
}

func (r *matchRepo) ListByGame(ctx context.Context, db DBTX, gameID uuid.UUID) ([]domain.Match, []domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT id, competition, season, matchday, home_team, away_team,
		       home_odds, draw_odds, away_odds, kickoff_at, status, home_goals, away_goals, past
		FROM game_matches
		WHERE game_id = $1
		ORDER BY kickoff_at ASC, id ASC`, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var incoming, past []domain.Match
	for rows.Next() {
		m, isPast, err := scanMatch(rows)
		if err != nil {
			return nil, nil, err
		}
		if isPast {
			past = append(past, m)
		} else {
			incoming = append(incoming, m)
		}
	}
	return incoming, past, rows.Err()
}

func scanMatch(row pgx.Row) (domain.Match, bool, error) {
	var m domain.Match
	var homeNum, drawNum, awayNum pgtype.Numeric
	var status string
	var past bool
	err := row.Scan(&m.ID, &m.Competition, &m.Season, &m.Matchday, &m.HomeTeam, &m.AwayTeam,
		&homeNum, &drawNum, &awayNum, &m.Date, &status, &m.HomeGoals, &m.AwayGoals, &past)
	if err != nil {
		return m, false, fmt.Errorf("scan match: %w", err)
	}
	m.Status = domain.MatchStatus(status)

	var convErr error
	if m.HomeOdds, convErr = infra.NumericToOdds(homeNum); convErr != nil {
		return m, false, fmt.Errorf("convert home_odds: %w", convErr)
	}
	if m.DrawOdds, convErr = infra.NumericToOdds(drawNum); convErr != nil {
		return m, false, fmt.Errorf("convert draw_odds: %w", convErr)
	}
	if m.AwayOdds, convErr = infra.NumericToOdds(awayNum); convErr != nil {
		return m, false, fmt.Errorf("convert away_odds: %w", convErr)
	}
	m.Date = m.Date.UTC()
	return m, past, nil
}
