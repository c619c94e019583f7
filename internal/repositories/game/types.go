package game

import (
	"github.com/KirkDiggler/pigpen/internal/models"
)

// SaveGameInput contains parameters for saving a game
type SaveGameInput struct {
	// Game is the record to persist
	Game *models.Game
}

// GetGameInput contains parameters for retrieving a game by ID
type GetGameInput struct {
	// GameID is the unique identifier of the game
	GameID string
}

// GetGameByCodeInput contains parameters for retrieving a game by join code
type GetGameByCodeInput struct {
	// Code is the join code, matched case-insensitively
	Code string
}

// SavePlayerInput contains parameters for saving a player
type SavePlayerInput struct {
	// Player is the record to persist
	Player *models.Player
}

// ListPlayersInput contains parameters for listing a game's players
type ListPlayersInput struct {
	// GameID is the unique identifier of the game
	GameID string
}

// ListRecentActionsInput contains parameters for reading the action log tail
type ListRecentActionsInput struct {
	// GameID is the unique identifier of the game
	GameID string

	// Limit is the maximum number of actions to return
	Limit int
}

// ApplyTransitionInput contains the records produced by one accepted
// turn-engine decision
type ApplyTransitionInput struct {
	// ExpectedCurrentPlayerID is the current-player value read at the
	// start of the operation; the write is rejected if the stored game
	// no longer matches it
	ExpectedCurrentPlayerID string

	// Game is the resulting game record
	Game *models.Game

	// Players are the player records that changed
	Players []*models.Player

	// Action is the history entry to append, nil for transitions that
	// record no action (starting a game)
	Action *models.Action
}
