package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	// Rejections surfaced to callers. None of these leave any partial
	// side effect in the store.
	ErrGameNotFound     GameError = "game not found"
	ErrGameNotWaiting   GameError = "game is not waiting for players"
	ErrGameNotActive    GameError = "game is not active"
	ErrGameNotJoinable  GameError = "game can no longer be joined"
	ErrGameFull         GameError = "game is at maximum capacity"
	ErrNotEnoughPlayers GameError = "not enough players to start"
	ErrNotYourTurn      GameError = "not your turn"
	ErrNoPointsToHold   GameError = "no points to hold"
	ErrPlayerNotInGame  GameError = "player not in game"

	// ErrConflict means a concurrent request won the race for this turn
	// and the operation gave up after its bounded retry
	ErrConflict GameError = "conflicting concurrent action"

	// ErrCodeExhausted means no unique join code could be generated
	ErrCodeExhausted GameError = "could not generate a unique join code"

	// Constructor validation errors
	ErrNilConfig        GameError = "config cannot be nil"
	ErrNilGameRepo      GameError = "game repository cannot be nil"
	ErrNilFeedRepo      GameError = "feed repository cannot be nil"
	ErrNilDiceRoller    GameError = "dice roller cannot be nil"
	ErrNilClock         GameError = "clock cannot be nil"
	ErrNilUUIDGenerator GameError = "UUID generator cannot be nil"
	ErrNilCodeGenerator GameError = "code generator cannot be nil"
)
