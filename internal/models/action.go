package models

import (
	"time"
)

// ActionKind represents the type of a recorded game action
type ActionKind string

const (
	// ActionKindRoll indicates a roll that accumulated points
	ActionKindRoll ActionKind = "roll"

	// ActionKindHold indicates banking the turn score and ending the turn
	ActionKindHold ActionKind = "hold"

	// ActionKindBust indicates a roll of 1 that forfeited the turn score
	ActionKindBust ActionKind = "bust"
)

// Action represents a single entry in a game's append-only history log.
// Actions are immutable once written.
type Action struct {
	// ID is the unique identifier for the action
	ID string `json:"id"`

	// GameID is the ID of the game the action belongs to
	GameID string `json:"game_id"`

	// PlayerID is the player that performed the action
	PlayerID string `json:"player_id"`

	// Kind is the type of action
	Kind ActionKind `json:"kind"`

	// Die is the rolled value, set for roll and bust actions
	Die int `json:"die,omitempty"`

	// TurnScore is the acting player's turn score after the action
	// (for holds, the banked amount)
	TurnScore int `json:"turn_score"`

	// TotalScore is the acting player's total score after the action
	TotalScore int `json:"total_score"`

	// CreatedAt is when the action was recorded
	CreatedAt time.Time `json:"created_at"`
}
