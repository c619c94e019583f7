package sync

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/pigpen/internal/services/sync Service

// Service creates per-client sync sessions. Each session keeps an
// eventually-consistent local mirror of one game's state, fed by the
// change feed for low latency and a fixed-interval poll as the
// correctness backstop.
type Service interface {
	// Attach performs a full synchronous load of the game's state and
	// starts the push and poll workers. The returned session must be
	// detached by the caller.
	Attach(ctx context.Context, input *AttachInput) (*Session, error)
}
