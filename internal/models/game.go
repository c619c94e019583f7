package models

import (
	"time"
)

// GameStatus represents the current state of a game
type GameStatus string

const (
	// GameStatusWaiting indicates a game is waiting for players to join
	GameStatusWaiting GameStatus = "waiting"

	// GameStatusActive indicates a game is in progress
	GameStatusActive GameStatus = "active"

	// GameStatusFinished indicates a game has ended with a winner
	GameStatusFinished GameStatus = "finished"
)

// IsWaiting returns true if the game is waiting for players
func (s GameStatus) IsWaiting() bool {
	return s == GameStatusWaiting
}

// IsActive returns true if the game is in progress
func (s GameStatus) IsActive() bool {
	return s == GameStatusActive
}

// IsFinished returns true if the game has ended
func (s GameStatus) IsFinished() bool {
	return s == GameStatusFinished
}

// Game represents a push-your-luck dice game session
type Game struct {
	// ID is the unique identifier for the game
	ID string `json:"id"`

	// Code is the human-shareable join code, fixed length, stored uppercase
	Code string `json:"code"`

	// Status is the current state of the game
	Status GameStatus `json:"status"`

	// CurrentPlayerID is the player authorized to act, set while the game is active
	CurrentPlayerID string `json:"current_player_id,omitempty"`

	// WinnerID is the winning player, set once when the game finishes and never changed
	WinnerID string `json:"winner_id,omitempty"`

	// TargetScore is the banked total a player must reach to win, fixed at creation
	TargetScore int `json:"target_score"`

	// CreatedAt is when the game was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the game was last updated
	UpdatedAt time.Time `json:"updated_at"`
}
