package feed

import (
	"github.com/KirkDiggler/pigpen/internal/models"
)

// PublishInput contains parameters for publishing a change event
type PublishInput struct {
	// Event is the change notification to broadcast; its GameID selects
	// the channel
	Event *models.ChangeEvent
}

// SubscribeInput contains parameters for opening a change event stream
type SubscribeInput struct {
	// GameID scopes the subscription to a single game
	GameID string
}
