package domain

import "github.com/google/uuid"

// Player is a competitor in a game. Players compare equal by ID.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// NewPlayer creates a player with a fresh identity.
func NewPlayer(name string) Player {
	return Player{ID: uuid.New(), Name: name}
}
