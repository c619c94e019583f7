package game

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/pigpen/internal/common/clock"
	"github.com/KirkDiggler/pigpen/internal/common/uuid"
	"github.com/KirkDiggler/pigpen/internal/dice"
	"github.com/KirkDiggler/pigpen/internal/engine"
	"github.com/KirkDiggler/pigpen/internal/gamecode"
	"github.com/KirkDiggler/pigpen/internal/models"
	feedRepo "github.com/KirkDiggler/pigpen/internal/repositories/feed"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
)

const (
	defaultTargetScore        = 100
	defaultMinPlayers         = 2
	defaultMaxPlayers         = 8
	defaultDiceSides          = 6
	defaultActionHistoryLimit = 10
	defaultCodeAttempts       = 10

	// applyAttempts bounds the optimistic-concurrency loop: one initial
	// try plus one retry from a fresh read, then the caller gets ErrConflict
	applyAttempts = 2
)

// service implements the Service interface
type service struct {
	config    *Config
	engineCfg *engine.Config
	gameRepo  gameRepo.Repository
	feedRepo  feedRepo.Repository
	dice      dice.Roller
	clock     clock.Clock
	uuid      uuid.UUID
	codes     *gamecode.Generator
	log       *logrus.Entry
}

// New creates a new game service
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

	if cfg.DiceRoller == nil {
		return nil, ErrNilDiceRoller
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	if cfg.CodeGenerator == nil {
		return nil, ErrNilCodeGenerator
	}

	// Set default values if not provided
	if cfg.TargetScore <= 0 {
		cfg.TargetScore = defaultTargetScore
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = defaultMinPlayers
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = defaultMaxPlayers
	}
	if cfg.DiceSides <= 0 {
		cfg.DiceSides = defaultDiceSides
	}
	if cfg.ActionHistoryLimit <= 0 {
		cfg.ActionHistoryLimit = defaultActionHistoryLimit
	}
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = defaultCodeAttempts
	}

	return &service{
		config: cfg,
		engineCfg: &engine.Config{
			MinPlayers: cfg.MinPlayers,
			BustValue:  1,
		},
		gameRepo: cfg.GameRepo,
		feedRepo: cfg.FeedRepo,
		dice:     cfg.DiceRoller,
		clock:    cfg.Clock,
		uuid:     cfg.UUIDGenerator,
		codes:    cfg.CodeGenerator,
		log:      logrus.WithField("component", "game_service"),
	}, nil
}

// CreateGame creates a new game in waiting status, with a unique join
// code and the creator registered as the first player
func (s *service) CreateGame(ctx context.Context, input *CreateGameInput) (*CreateGameOutput, error) {
	if input == nil || input.CreatorName == "" {
		return nil, errors.New("input and creator name cannot be empty")
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	game := &models.Game{
		ID:          s.uuid.NewUUID(),
		Code:        code,
		Status:      models.GameStatusWaiting,
		TargetScore: s.config.TargetScore,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.gameRepo.SaveGame(ctx, &gameRepo.SaveGameInput{Game: game}); err != nil {
		return nil, err
	}

	player := &models.Player{
		ID:        s.uuid.NewUUID(),
		GameID:    game.ID,
		Name:      input.CreatorName,
		TurnOrder: 1,
		Active:    true,
		CreatedAt: now,
	}

	if err := s.gameRepo.SavePlayer(ctx, &gameRepo.SavePlayerInput{Player: player}); err != nil {
		return nil, err
	}

	s.publish(ctx, &models.ChangeEvent{
		GameID: game.ID,
		Entity: models.EntityPlayer,
		Kind:   models.EventInsert,
		Player: player,
	})

	s.log.WithFields(logrus.Fields{
		"game_id": game.ID,
		"code":    game.Code,
	}).Info("game created")

	return &CreateGameOutput{
		Game:   game,
		Player: player,
	}, nil
}

// JoinGame adds a player to a waiting game found by its join code
func (s *service) JoinGame(ctx context.Context, input *JoinGameInput) (*JoinGameOutput, error) {
	if input == nil || input.Code == "" || input.PlayerName == "" {
		return nil, errors.New("input, code and player name cannot be empty")
	}

	game, err := s.gameRepo.GetGameByCode(ctx, &gameRepo.GetGameByCodeInput{
		Code: gamecode.Normalize(input.Code),
	})
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	if !game.Status.IsWaiting() {
		return nil, ErrGameNotJoinable
	}

	players, err := s.gameRepo.ListPlayers(ctx, &gameRepo.ListPlayersInput{
		GameID: game.ID,
	})
	if err != nil {
		return nil, err
	}

	if len(players) >= s.config.MaxPlayers {
		return nil, ErrGameFull
	}

	// Turn orders only grow; removed players never free their slot
	nextOrder := 1
	for _, p := range players {
		if p.TurnOrder >= nextOrder {
			nextOrder = p.TurnOrder + 1
		}
	}

	player := &models.Player{
		ID:        s.uuid.NewUUID(),
		GameID:    game.ID,
		Name:      input.PlayerName,
		TurnOrder: nextOrder,
		Active:    true,
		CreatedAt: s.clock.Now(),
	}

	if err := s.gameRepo.SavePlayer(ctx, &gameRepo.SavePlayerInput{Player: player}); err != nil {
		return nil, err
	}

	s.publish(ctx, &models.ChangeEvent{
		GameID: game.ID,
		Entity: models.EntityPlayer,
		Kind:   models.EventInsert,
		Player: player,
	})

	return &JoinGameOutput{
		Game:   game,
		Player: player,
	}, nil
}

// StartGame begins a waiting game
func (s *service) StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	transition, err := s.applyAction(ctx, input.GameID, &engine.Request{
		Kind: engine.RequestStart,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("game_id", input.GameID).Info("game started")

	return &StartGameOutput{
		Game: transition.Game,
	}, nil
}

// RollDice rolls the die for the current player
func (s *service) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil || input.GameID == "" || input.PlayerID == "" {
		return nil, errors.New("input, game ID and player ID cannot be empty")
	}

	transition, err := s.applyAction(ctx, input.GameID, &engine.Request{
		Kind:     engine.RequestRoll,
		PlayerID: input.PlayerID,
	})
	if err != nil {
		return nil, err
	}

	action := transition.Action

	return &RollDiceOutput{
		DieValue:     action.Die,
		NewTurnScore: action.TurnScore,
		Bust:         action.Kind == models.ActionKindBust,
	}, nil
}

// HoldTurn banks the current player's turn score
func (s *service) HoldTurn(ctx context.Context, input *HoldTurnInput) (*HoldTurnOutput, error) {
	if input == nil || input.GameID == "" || input.PlayerID == "" {
		return nil, errors.New("input, game ID and player ID cannot be empty")
	}

	transition, err := s.applyAction(ctx, input.GameID, &engine.Request{
		Kind:     engine.RequestHold,
		PlayerID: input.PlayerID,
	})
	if err != nil {
		return nil, err
	}

	return &HoldTurnOutput{
		NewTotalScore: transition.Action.TotalScore,
		GameWon:       transition.Won,
		WinnerID:      transition.Game.WinnerID,
	}, nil
}

// GetGameState returns a game with its players and the most recent
// slice of its action log, looked up by ID or join code
func (s *service) GetGameState(ctx context.Context, input *GetGameStateInput) (*GetGameStateOutput, error) {
	if input == nil || input.GameIDOrCode == "" {
		return nil, errors.New("input and game ID or code cannot be empty")
	}

	var game *models.Game
	var err error

	if gamecode.IsCode(input.GameIDOrCode) {
		game, err = s.gameRepo.GetGameByCode(ctx, &gameRepo.GetGameByCodeInput{
			Code: gamecode.Normalize(input.GameIDOrCode),
		})
	} else {
		game, err = s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{
			GameID: input.GameIDOrCode,
		})
	}
	if err != nil {
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}

	players, err := s.gameRepo.ListPlayers(ctx, &gameRepo.ListPlayersInput{
		GameID: game.ID,
	})
	if err != nil {
		return nil, err
	}

	actions, err := s.gameRepo.ListRecentActions(ctx, &gameRepo.ListRecentActionsInput{
		GameID: game.ID,
		Limit:  s.config.ActionHistoryLimit,
	})
	if err != nil {
		return nil, err
	}

	return &GetGameStateOutput{
		Game:    game,
		Players: players,
		Actions: actions,
	}, nil
}

// applyAction is the turn authority guard. It reads a fresh snapshot,
// asks the engine for a decision and writes the result conditionally on
// the current-player field being unchanged since the read. A lost race
// is retried once from a new read before surfacing ErrConflict.
func (s *service) applyAction(ctx context.Context, gameID string, req *engine.Request) (*engine.Transition, error) {
	for attempt := 0; attempt < applyAttempts; attempt++ {
		game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{
			GameID: gameID,
		})
		if err != nil {
			if errors.Is(err, gameRepo.ErrGameNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, err
		}

		players, err := s.gameRepo.ListPlayers(ctx, &gameRepo.ListPlayersInput{
			GameID: gameID,
		})
		if err != nil {
			return nil, err
		}

		// A retried roll draws again; the first draw belongs to the
		// request that lost the race and was never applied
		if req.Kind == engine.RequestRoll {
			req.Die = s.dice.Roll(s.config.DiceSides)
		}

		transition, err := engine.Decide(s.engineCfg, game, players, req)
		if err != nil {
			return nil, mapEngineError(err)
		}

		now := s.clock.Now()
		transition.Game.UpdatedAt = now
		if transition.Action != nil {
			transition.Action.ID = s.uuid.NewUUID()
			transition.Action.CreatedAt = now
		}

		err = s.gameRepo.ApplyTransition(ctx, &gameRepo.ApplyTransitionInput{
			ExpectedCurrentPlayerID: game.CurrentPlayerID,
			Game:                    transition.Game,
			Players:                 transition.UpdatedPlayers,
			Action:                  transition.Action,
		})
		if err != nil {
			if errors.Is(err, gameRepo.ErrConcurrentModification) {
				s.log.WithFields(logrus.Fields{
					"game_id": gameID,
					"attempt": attempt + 1,
				}).Warn("conditional write lost race, retrying")
				continue
			}
			if errors.Is(err, gameRepo.ErrGameNotFound) {
				return nil, ErrGameNotFound
			}
			return nil, err
		}

		s.publishTransition(ctx, transition)

		return transition, nil
	}

	return nil, ErrConflict
}

// publishTransition emits change notifications for everything an
// accepted action touched
func (s *service) publishTransition(ctx context.Context, transition *engine.Transition) {
	s.publish(ctx, &models.ChangeEvent{
		GameID: transition.Game.ID,
		Entity: models.EntityGame,
		Kind:   models.EventUpdate,
		Game:   transition.Game,
	})

	for _, player := range transition.UpdatedPlayers {
		s.publish(ctx, &models.ChangeEvent{
			GameID: transition.Game.ID,
			Entity: models.EntityPlayer,
			Kind:   models.EventUpdate,
			Player: player,
		})
	}

	if transition.Action != nil {
		s.publish(ctx, &models.ChangeEvent{
			GameID: transition.Game.ID,
			Entity: models.EntityAction,
			Kind:   models.EventInsert,
			Action: transition.Action,
		})
	}
}

// publish sends one change event. Delivery is best effort: the store is
// already updated and pollers will converge, so a failed publish is
// logged and swallowed.
func (s *service) publish(ctx context.Context, event *models.ChangeEvent) {
	err := s.feedRepo.Publish(ctx, &feedRepo.PublishInput{Event: event})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"game_id": event.GameID,
			"entity":  event.Entity,
		}).Warn("failed to publish change event")
	}
}

// uniqueCode draws candidate join codes until one is unused
func (s *service) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < s.config.CodeAttempts; i++ {
		code := s.codes.Next()

		_, err := s.gameRepo.GetGameByCode(ctx, &gameRepo.GetGameByCodeInput{Code: code})
		if errors.Is(err, gameRepo.ErrGameNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		// Code taken, draw again
	}

	return "", ErrCodeExhausted
}

// mapEngineError translates engine rejections into the service error
// taxonomy
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrGameNotWaiting):
		return ErrGameNotWaiting
	case errors.Is(err, engine.ErrGameNotActive):
		return ErrGameNotActive
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		return ErrNotEnoughPlayers
	case errors.Is(err, engine.ErrNotYourTurn):
		return ErrNotYourTurn
	case errors.Is(err, engine.ErrNoPointsToHold):
		return ErrNoPointsToHold
	case errors.Is(err, engine.ErrPlayerNotInGame):
		return ErrPlayerNotInGame
	default:
		return err
	}
}
