package domain

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle state of a competition.
type GameStatus string

const (
	GameScheduled GameStatus = "scheduled"
	GameFinished  GameStatus = "finished"
)

// Game is the persisted header of a competition.
type Game struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Competition string     `json:"competition"`
	Season      string     `json:"season"`
	Status      GameStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Standing is one row of the leaderboard.
type Standing struct {
	PlayerID uuid.UUID `json:"player_id"`
	Name     string    `json:"name"`
	Points   int       `json:"points"`
}
