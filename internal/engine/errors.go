package engine

// EngineError is a custom error type for turn engine rejections
type EngineError string

// Error implements the error interface
func (e EngineError) Error() string {
	return string(e)
}

// Rejection reasons. A rejection means the requested action is invalid
// against the presented snapshot; the engine never mutates its inputs.
const (
	ErrGameNotWaiting   EngineError = "game is not waiting for players"
	ErrGameNotActive    EngineError = "game is not active"
	ErrNotEnoughPlayers EngineError = "not enough players to start"
	ErrNotYourTurn      EngineError = "not your turn"
	ErrNoPointsToHold   EngineError = "no points to hold"
	ErrPlayerNotInGame  EngineError = "player not in game"
	ErrInvalidRequest   EngineError = "invalid request"
)
