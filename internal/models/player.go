package models

import (
	"time"
)

// Player represents a participant in a game
type Player struct {
	// ID is the unique identifier for the player
	ID string `json:"id"`

	// GameID is the ID of the game the player belongs to
	GameID string `json:"game_id"`

	// Name is the display name of the player
	Name string `json:"name"`

	// TotalScore is the player's banked score, never decreases
	TotalScore int `json:"total_score"`

	// TurnScore is the unbanked points accumulated in the player's current turn
	TurnScore int `json:"turn_score"`

	// TurnOrder is the player's position in the cyclic turn sequence,
	// unique per game and assigned at join time
	TurnOrder int `json:"turn_order"`

	// Active indicates whether the player participates in the turn cycle.
	// Inactive players are skipped without renumbering the others.
	Active bool `json:"active"`

	// CreatedAt is when the player joined the game
	CreatedAt time.Time `json:"created_at"`
}
