package feed

import (
	"context"

	"github.com/KirkDiggler/pigpen/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/pigpen/internal/repositories/feed Repository,Subscription

// Repository is the change-notification feed between the turn authority
// and connected sync sessions. Delivery is best effort: subscribers that
// miss events are expected to self-heal through their poll cycle.
type Repository interface {
	// Publish broadcasts a change event to every subscriber of the
	// event's game
	Publish(ctx context.Context, input *PublishInput) error

	// Subscribe opens a stream of change events scoped to one game.
	// The returned subscription must be closed by the caller.
	Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error)
}

// Subscription is a live per-game change event stream
type Subscription interface {
	// Events returns the stream of change events. The channel is
	// closed when the subscription is closed or the connection is lost.
	Events() <-chan *models.ChangeEvent

	// Close tears down the subscription and closes the event channel
	Close() error
}
