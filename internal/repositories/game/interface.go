package game

import (
	"context"

	"github.com/KirkDiggler/pigpen/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/pigpen/internal/repositories/game Repository

// Repository is the authoritative store for games, players and the
// action log. The turn authority guard in the game service is the only
// caller allowed to mutate game and player records after creation, and
// it must do so through ApplyTransition.
type Repository interface {
	// SaveGame persists a game record and its join-code index entry
	SaveGame(ctx context.Context, input *SaveGameInput) error

	// GetGame retrieves a game by ID
	GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error)

	// GetGameByCode retrieves a game by its join code
	GetGameByCode(ctx context.Context, input *GetGameByCodeInput) (*models.Game, error)

	// SavePlayer persists a player record and indexes it under its game
	SavePlayer(ctx context.Context, input *SavePlayerInput) error

	// ListPlayers returns a game's players ordered by turn order
	ListPlayers(ctx context.Context, input *ListPlayersInput) ([]*models.Player, error)

	// ListRecentActions returns up to Limit most recent actions,
	// newest first. The full log is retained in the store.
	ListRecentActions(ctx context.Context, input *ListRecentActionsInput) ([]*models.Action, error)

	// ApplyTransition writes a game, its changed players and one new
	// action as a single conditional unit. The write succeeds only if
	// the stored game's current player still equals
	// ExpectedCurrentPlayerID; otherwise ErrConcurrentModification is
	// returned and nothing is written.
	ApplyTransition(ctx context.Context, input *ApplyTransitionInput) error
}
