package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func newGameEvent(gameID uuid.UUID, evtType EventType, payload interface{}) OutboxDraft {
	data, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateGame,
		AggregateID:   gameID.String(),
		EventType:     evtType,
		PartitionKey:  gameID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       data,
		OccurredAt:    time.Now(),
	}
}

// NewGameCreatedEvent announces a new competition.
func NewGameCreatedEvent(g Game, matches int) OutboxDraft {
	return newGameEvent(g.ID, EventGameCreated, map[string]interface{}{
		"game_id":     g.ID.String(),
		"name":        g.Name,
		"competition": g.Competition,
		"season":      g.Season,
		"matches":     matches,
	})
}

// NewPlayerJoinedEvent records a roster addition.
func NewPlayerJoinedEvent(gameID uuid.UUID, p Player) OutboxDraft {
	return newGameEvent(gameID, EventPlayerJoined, map[string]string{
		"game_id":   gameID.String(),
		"player_id": p.ID.String(),
		"name":      p.Name,
	})
}

// NewBetPlacedEvent records a placed or replaced bet.
func NewBetPlacedEvent(gameID, playerID uuid.UUID, bet Bet) OutboxDraft {
	return newGameEvent(gameID, EventBetPlaced, map[string]interface{}{
		"game_id":    gameID.String(),
		"player_id":  playerID.String(),
		"match_id":   bet.MatchID.String(),
		"home_goals": bet.HomeGoals,
		"away_goals": bet.AwayGoals,
	})
}

// NewMatchUpdatedEvent records a feed snapshot accepted for an incoming match.
func NewMatchUpdatedEvent(gameID uuid.UUID, m Match) OutboxDraft {
	return newGameEvent(gameID, EventMatchUpdated, map[string]interface{}{
		"game_id":    gameID.String(),
		"match_id":   m.ID.String(),
		"status":     m.Status,
		"home_goals": m.HomeGoals,
		"away_goals": m.AwayGoals,
	})
}

// NewMatchScoredEvent carries the points awarded for a retired match.
func NewMatchScoredEvent(gameID uuid.UUID, m Match, scores map[uuid.UUID]int) OutboxDraft {
	points := make(map[string]int, len(scores))
	for id, pts := range scores {
		points[id.String()] = pts
	}
	return newGameEvent(gameID, EventMatchScored, map[string]interface{}{
		"game_id":    gameID.String(),
		"match_id":   m.ID.String(),
		"home_goals": m.HomeGoals,
		"away_goals": m.AwayGoals,
		"scores":     points,
	})
}

// NewGameFinishedEvent announces the winners of a finished game.
func NewGameFinishedEvent(gameID uuid.UUID, winners []uuid.UUID) OutboxDraft {
	ids := make([]string, len(winners))
	for i, id := range winners {
		ids[i] = id.String()
	}
	return newGameEvent(gameID, EventGameFinished, map[string]interface{}{
		"game_id": gameID.String(),
		"winners": ids,
	})
}

// NewPlayerCreatedEvent creates a player lifecycle event.
func NewPlayerCreatedEvent(p Player) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"player_id": p.ID.String(),
		"name":      p.Name,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregatePlayer,
		AggregateID:   p.ID.String(),
		EventType:     EventPlayerCreated,
		PartitionKey:  p.ID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
