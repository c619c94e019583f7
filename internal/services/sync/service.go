package sync

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	feedRepo "github.com/KirkDiggler/pigpen/internal/repositories/feed"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
)

const (
	// defaultPollInterval bounds a client's worst-case staleness when
	// push notifications are missed
	defaultPollInterval = 3 * time.Second

	defaultActionLimit = 10
)

// service implements the Service interface
type service struct {
	config   *Config
	gameRepo gameRepo.Repository
	feedRepo feedRepo.Repository
	log      *logrus.Entry
}

// New creates a new sync service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.GameRepo == nil {
		return nil, ErrNilGameRepo
	}

	if cfg.FeedRepo == nil {
		return nil, ErrNilFeedRepo
	}

	// Set default values if not provided
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ActionLimit <= 0 {
		cfg.ActionLimit = defaultActionLimit
	}

	return &service{
		config:   cfg,
		gameRepo: cfg.GameRepo,
		feedRepo: cfg.FeedRepo,
		log:      logrus.WithField("component", "sync_service"),
	}, nil
}

// Attach loads the game's full state synchronously, subscribes to its
// change feed and starts the poll worker
func (s *service) Attach(ctx context.Context, input *AttachInput) (*Session, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	// The session outlives the attach call; its lifetime ends at Detach
	sessionCtx, cancel := context.WithCancel(context.Background())

	session := &Session{
		gameID:       input.GameID,
		gameRepo:     s.gameRepo,
		pollInterval: s.config.PollInterval,
		actionLimit:  s.config.ActionLimit,
		updates:      make(chan struct{}, 1),
		ctx:          sessionCtx,
		cancel:       cancel,
		log: s.log.WithFields(logrus.Fields{
			"game_id": input.GameID,
		}),
	}

	// Initial load happens on the caller's context so a missing game
	// fails the attach outright
	if err := session.reload(ctx); err != nil {
		cancel()
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	sub, err := s.feedRepo.Subscribe(sessionCtx, &feedRepo.SubscribeInput{
		GameID: input.GameID,
	})
	if err != nil {
		cancel()
		return nil, err
	}
	session.sub = sub

	session.wg.Add(2)
	go session.pushLoop()
	go session.pollLoop()

	return session, nil
}
