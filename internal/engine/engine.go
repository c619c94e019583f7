// Package engine holds the turn rules for the dice game as a pure
// decision function. Given a snapshot of a game and its players plus a
// requested action, Decide computes the resulting state or rejects the
// request. The engine never touches storage and never rolls dice itself;
// the die value is drawn by the caller and passed in, which keeps every
// path deterministic and directly testable.
package engine

import (
	"sort"

	"github.com/KirkDiggler/pigpen/internal/models"
)

// RequestKind represents the type of action being requested
type RequestKind string

const (
	// RequestStart begins a waiting game
	RequestStart RequestKind = "start"

	// RequestRoll rolls the die for the current player
	RequestRoll RequestKind = "roll"

	// RequestHold banks the current player's turn score
	RequestHold RequestKind = "hold"
)

// Request describes an action to evaluate against a game snapshot
type Request struct {
	// Kind is the type of action being requested
	Kind RequestKind

	// PlayerID is the acting player, required for roll and hold
	PlayerID string

	// Die is the rolled value, supplied by the caller for roll requests
	Die int
}

// Config holds the rule parameters
type Config struct {
	// MinPlayers is the minimum number of active players needed to start
	MinPlayers int

	// BustValue is the die value that forfeits the turn score
	BustValue int
}

// DefaultConfig returns the standard rules: two players to start, 1 busts
func DefaultConfig() *Config {
	return &Config{
		MinPlayers: 2,
		BustValue:  1,
	}
}

// Transition is the computed result of an accepted request. All records
// are copies; the inputs to Decide are never mutated.
type Transition struct {
	// Game is the resulting game record
	Game *models.Game

	// UpdatedPlayers holds the player records that changed
	UpdatedPlayers []*models.Player

	// Action is the history entry to record, nil for start requests.
	// ID and CreatedAt are left for the caller to stamp.
	Action *models.Action

	// TurnPassed indicates the current player changed
	TurnPassed bool

	// Won indicates the game finished with the acting player as winner
	Won bool
}

// Decide evaluates a request against a game snapshot and returns the
// resulting transition, or a rejection error with no state produced.
func Decide(cfg *Config, game *models.Game, players []*models.Player, req *Request) (*Transition, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if game == nil || req == nil {
		return nil, ErrInvalidRequest
	}

	switch req.Kind {
	case RequestStart:
		return decideStart(cfg, game, players)
	case RequestRoll:
		return decideRoll(cfg, game, players, req)
	case RequestHold:
		return decideHold(game, players, req)
	default:
		return nil, ErrInvalidRequest
	}
}

func decideStart(cfg *Config, game *models.Game, players []*models.Player) (*Transition, error) {
	if !game.Status.IsWaiting() {
		return nil, ErrGameNotWaiting
	}

	ordered := activeByTurnOrder(players)
	if len(ordered) < cfg.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	first := *ordered[0]
	first.TurnScore = 0

	next := *game
	next.Status = models.GameStatusActive
	next.CurrentPlayerID = first.ID

	return &Transition{
		Game:           &next,
		UpdatedPlayers: []*models.Player{&first},
		TurnPassed:     true,
	}, nil
}

func decideRoll(cfg *Config, game *models.Game, players []*models.Player, req *Request) (*Transition, error) {
	actor, err := requireCurrent(game, players, req.PlayerID)
	if err != nil {
		return nil, err
	}

	if req.Die < 1 {
		return nil, ErrInvalidRequest
	}

	next := *game
	acting := *actor
	updated := []*models.Player{&acting}

	if req.Die == cfg.BustValue {
		acting.TurnScore = 0
		incoming := advanceTurn(&next, players, &acting)
		if incoming != nil {
			updated = append(updated, incoming)
		}

		return &Transition{
			Game:           &next,
			UpdatedPlayers: updated,
			Action: &models.Action{
				GameID:     game.ID,
				PlayerID:   acting.ID,
				Kind:       models.ActionKindBust,
				Die:        req.Die,
				TurnScore:  0,
				TotalScore: acting.TotalScore,
			},
			TurnPassed: true,
		}, nil
	}

	acting.TurnScore += req.Die

	return &Transition{
		Game:           &next,
		UpdatedPlayers: updated,
		Action: &models.Action{
			GameID:     game.ID,
			PlayerID:   acting.ID,
			Kind:       models.ActionKindRoll,
			Die:        req.Die,
			TurnScore:  acting.TurnScore,
			TotalScore: acting.TotalScore,
		},
	}, nil
}

func decideHold(game *models.Game, players []*models.Player, req *Request) (*Transition, error) {
	actor, err := requireCurrent(game, players, req.PlayerID)
	if err != nil {
		return nil, err
	}

	if actor.TurnScore <= 0 {
		return nil, ErrNoPointsToHold
	}

	next := *game
	acting := *actor
	banked := acting.TurnScore
	acting.TotalScore += banked
	acting.TurnScore = 0
	updated := []*models.Player{&acting}

	action := &models.Action{
		GameID:     game.ID,
		PlayerID:   acting.ID,
		Kind:       models.ActionKindHold,
		TurnScore:  banked,
		TotalScore: acting.TotalScore,
	}

	if acting.TotalScore >= game.TargetScore {
		next.Status = models.GameStatusFinished
		next.WinnerID = acting.ID
		next.CurrentPlayerID = ""

		return &Transition{
			Game:           &next,
			UpdatedPlayers: updated,
			Action:         action,
			Won:            true,
		}, nil
	}

	incoming := advanceTurn(&next, players, &acting)
	if incoming != nil {
		updated = append(updated, incoming)
	}

	return &Transition{
		Game:           &next,
		UpdatedPlayers: updated,
		Action:         action,
		TurnPassed:     true,
	}, nil
}

// requireCurrent validates that the game is active and the requested
// player is the one authorized to act, returning that player's record.
func requireCurrent(game *models.Game, players []*models.Player, playerID string) (*models.Player, error) {
	if !game.Status.IsActive() {
		return nil, ErrGameNotActive
	}

	if playerID == "" || playerID != game.CurrentPlayerID {
		return nil, ErrNotYourTurn
	}

	for _, p := range players {
		if p.ID == playerID {
			return p, nil
		}
	}

	return nil, ErrPlayerNotInGame
}

// advanceTurn moves the game's current player to the next active player
// in cyclic turn order and returns a copy of that player with its turn
// score reset. The reset should be a no-op by invariant but is kept as a
// cheap guard. Returns nil when the incoming player is the actor itself
// (a single-player cycle), whose copy the caller already tracks.
func advanceTurn(game *models.Game, players []*models.Player, acting *models.Player) *models.Player {
	ordered := activeByTurnOrder(players)
	if len(ordered) == 0 {
		return nil
	}

	// Smallest turn order strictly greater than the actor's, wrapping
	// to the lowest order when the actor is last in the cycle.
	next := ordered[0]
	for _, p := range ordered {
		if p.TurnOrder > acting.TurnOrder {
			next = p
			break
		}
	}

	game.CurrentPlayerID = next.ID

	if next.ID == acting.ID {
		acting.TurnScore = 0
		return nil
	}

	incoming := *next
	incoming.TurnScore = 0
	return &incoming
}

// activeByTurnOrder filters out inactive players and sorts the rest by
// their position in the turn cycle.
func activeByTurnOrder(players []*models.Player) []*models.Player {
	ordered := make([]*models.Player, 0, len(players))
	for _, p := range players {
		if p.Active {
			ordered = append(ordered, p)
		}
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].TurnOrder < ordered[j].TurnOrder
	})

	return ordered
}
