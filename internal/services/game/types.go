package game

import (
	"github.com/KirkDiggler/pigpen/internal/common/clock"
	"github.com/KirkDiggler/pigpen/internal/common/uuid"
	"github.com/KirkDiggler/pigpen/internal/dice"
	"github.com/KirkDiggler/pigpen/internal/gamecode"
	"github.com/KirkDiggler/pigpen/internal/models"
	feedRepo "github.com/KirkDiggler/pigpen/internal/repositories/feed"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
)

// Config holds configuration for the game service
type Config struct {
	// TargetScore is the banked total a player must reach to win
	TargetScore int

	// MinPlayers is the minimum number of players needed to start
	MinPlayers int

	// MaxPlayers is the maximum number of players per game
	MaxPlayers int

	// DiceSides is the number of sides on the die
	DiceSides int

	// ActionHistoryLimit is how many recent actions GetGameState surfaces
	ActionHistoryLimit int

	// CodeAttempts is how many candidate join codes are tried before
	// giving up on finding a unique one
	CodeAttempts int

	// Repository dependencies
	GameRepo gameRepo.Repository
	FeedRepo feedRepo.Repository

	// Service dependencies
	DiceRoller    dice.Roller
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	CodeGenerator *gamecode.Generator
}

// CreateGameInput contains parameters for creating a new game
type CreateGameInput struct {
	// CreatorName is the display name of the player creating the game
	CreatorName string
}

// CreateGameOutput contains the result of creating a new game
type CreateGameOutput struct {
	// Game is the created game, in waiting status
	Game *models.Game

	// Player is the creator's player record, first in turn order
	Player *models.Player
}

// JoinGameInput contains parameters for joining a game
type JoinGameInput struct {
	// Code is the join code of the game, case-insensitive
	Code string

	// PlayerName is the display name of the joining player
	PlayerName string
}

// JoinGameOutput contains the result of joining a game
type JoinGameOutput struct {
	// Game is the joined game
	Game *models.Game

	// Player is the newly created player record
	Player *models.Player
}

// StartGameInput contains parameters for starting a game
type StartGameInput struct {
	// GameID is the unique identifier of the game to start
	GameID string
}

// StartGameOutput contains the result of starting a game
type StartGameOutput struct {
	// Game is the now-active game with its first current player set
	Game *models.Game
}

// RollDiceInput contains parameters for rolling the die
type RollDiceInput struct {
	// GameID is the unique identifier of the game
	GameID string

	// PlayerID is the acting player
	PlayerID string
}

// RollDiceOutput contains the result of a roll
type RollDiceOutput struct {
	// DieValue is the rolled value
	DieValue int

	// NewTurnScore is the acting player's turn score after the roll,
	// zero on a bust
	NewTurnScore int

	// Bust indicates the roll forfeited the turn score and passed the turn
	Bust bool
}

// HoldTurnInput contains parameters for banking the turn score
type HoldTurnInput struct {
	// GameID is the unique identifier of the game
	GameID string

	// PlayerID is the acting player
	PlayerID string
}

// HoldTurnOutput contains the result of a hold
type HoldTurnOutput struct {
	// NewTotalScore is the acting player's total score after banking
	NewTotalScore int

	// GameWon indicates the hold finished the game
	GameWon bool

	// WinnerID is the winning player when GameWon is set
	WinnerID string
}

// GetGameStateInput contains parameters for reading full game state
type GetGameStateInput struct {
	// GameIDOrCode is either a game ID or a join code; codes are
	// recognized by their fixed length
	GameIDOrCode string
}

// GetGameStateOutput contains a full snapshot of a game
type GetGameStateOutput struct {
	// Game is the game record
	Game *models.Game

	// Players are the game's players in turn order
	Players []*models.Player

	// Actions are the most recent actions, newest first
	Actions []*models.Action
}
