package game

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pigpen/internal/services/game Service

// Service defines the interface for game operations
type Service interface {
	// CreateGame creates a new game with a unique join code and its
	// creator as the first player
	CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error)

	// JoinGame adds a player to a waiting game by join code
	JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error)

	// StartGame begins a waiting game once enough players have joined
	StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error)

	// RollDice rolls the die for the current player
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)

	// HoldTurn banks the current player's turn score and passes the turn
	HoldTurn(ctx context.Context, input *HoldTurnInput) (*HoldTurnOutput, error)

	// GetGameState returns a game with its players and recent actions,
	// looked up by ID or join code
	GetGameState(ctx context.Context, input *GetGameStateInput) (*GetGameStateOutput, error)
}
