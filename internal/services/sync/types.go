package sync

import (
	"time"

	"github.com/KirkDiggler/pigpen/internal/models"
	feedRepo "github.com/KirkDiggler/pigpen/internal/repositories/feed"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
)

// Config holds configuration for the sync service
type Config struct {
	// PollInterval is how often a session reloads the full state from
	// the store regardless of push activity
	PollInterval time.Duration

	// ActionLimit caps the mirrored action log
	ActionLimit int

	// Repository dependencies
	GameRepo gameRepo.Repository
	FeedRepo feedRepo.Repository
}

// AttachInput contains parameters for attaching a sync session
type AttachInput struct {
	// GameID is the game to mirror
	GameID string
}

// Snapshot is a self-consistent copy of a session's mirror, safe to
// hold and read after the mirror moves on
type Snapshot struct {
	// Game is the mirrored game record
	Game *models.Game

	// Players are the mirrored players in turn order
	Players []*models.Player

	// Actions are the mirrored recent actions, newest first
	Actions []*models.Action
}

// Player returns the snapshot's player with the given ID, or nil
func (s *Snapshot) Player(playerID string) *models.Player {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil when the
// game is not active
func (s *Snapshot) CurrentPlayer() *models.Player {
	if s.Game == nil || s.Game.CurrentPlayerID == "" {
		return nil
	}
	return s.Player(s.Game.CurrentPlayerID)
}

// IsTurn reports whether the given player is authorized to act
func (s *Snapshot) IsTurn(playerID string) bool {
	return s.Game != nil && s.Game.Status.IsActive() && s.Game.CurrentPlayerID == playerID
}
