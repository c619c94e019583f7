package sync

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/pigpen/internal/models"
	feedRepo "github.com/KirkDiggler/pigpen/internal/repositories/feed"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
)

// Session mirrors one game's state for one client. Two workers feed the
// mirror: the push loop applies change events as they arrive, and the
// poll loop replaces the whole mirror from the store on a fixed
// interval. Whichever writes last wins; the store is the source of
// truth either way.
type Session struct {
	gameID       string
	gameRepo     gameRepo.Repository
	sub          feedRepo.Subscription
	pollInterval time.Duration
	actionLimit  int
	log          *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	game    *models.Game
	players []*models.Player
	actions []*models.Action

	// updates carries a coalesced "something changed" signal
	updates chan struct{}
}

// GameID returns the game this session mirrors
func (s *Session) GameID() string {
	return s.gameID
}

// Updates returns a signal channel that receives after the mirror
// changes. Signals are coalesced; a receiver is guaranteed to observe a
// mirror at least as new as the change that produced the signal.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Snapshot returns a copy of the current mirror
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &Snapshot{
		Players: make([]*models.Player, 0, len(s.players)),
		Actions: make([]*models.Action, 0, len(s.actions)),
	}

	if s.game != nil {
		game := *s.game
		snapshot.Game = &game
	}

	for _, p := range s.players {
		player := *p
		snapshot.Players = append(snapshot.Players, &player)
	}

	for _, a := range s.actions {
		action := *a
		snapshot.Actions = append(snapshot.Actions, &action)
	}

	return snapshot
}

// Detach stops both workers and closes the push subscription. It does
// not return until neither worker can touch the mirror again.
func (s *Session) Detach() {
	s.cancel()
	if err := s.sub.Close(); err != nil {
		s.log.WithError(err).Debug("closing feed subscription")
	}
	s.wg.Wait()
}

// pushLoop applies change events until the subscription ends
func (s *Session) pushLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.sub.Events():
			if !ok {
				// Connection lost or detached; the poll loop keeps the
				// mirror converging either way
				s.log.Debug("push stream ended")
				return
			}
			s.applyEvent(event)
			s.notify()
		}
	}
}

// pollLoop reloads the full state on a fixed interval, independent of
// push activity
func (s *Session) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.reload(s.ctx); err != nil {
				// Non-fatal: the next tick tries again
				if s.ctx.Err() == nil {
					s.log.WithError(err).Warn("poll reload failed")
				}
				continue
			}
			s.notify()
		}
	}
}

// reload replaces the whole mirror with a fresh read of the store
func (s *Session) reload(ctx context.Context) error {
	game, err := s.gameRepo.GetGame(ctx, &gameRepo.GetGameInput{
		GameID: s.gameID,
	})
	if err != nil {
		return err
	}

	players, err := s.gameRepo.ListPlayers(ctx, &gameRepo.ListPlayersInput{
		GameID: s.gameID,
	})
	if err != nil {
		return err
	}

	actions, err := s.gameRepo.ListRecentActions(ctx, &gameRepo.ListRecentActionsInput{
		GameID: s.gameID,
		Limit:  s.actionLimit,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.game = game
	s.players = players
	s.actions = actions
	s.mu.Unlock()

	return nil
}

// applyEvent folds one change notification into the mirror
func (s *Session) applyEvent(event *models.ChangeEvent) {
	if event == nil || event.GameID != s.gameID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Entity {
	case models.EntityGame:
		if event.Kind != models.EventDelete && event.Game != nil {
			s.game = event.Game
		}

	case models.EntityPlayer:
		switch event.Kind {
		case models.EventDelete:
			s.removePlayer(event.DeletedID)
		default:
			if event.Player != nil {
				s.upsertPlayer(event.Player)
			}
		}

	case models.EntityAction:
		if event.Kind == models.EventInsert && event.Action != nil {
			s.insertAction(event.Action)
		}
	}
}

// upsertPlayer replaces or inserts a player, keeping turn order
func (s *Session) upsertPlayer(player *models.Player) {
	for i, p := range s.players {
		if p.ID == player.ID {
			s.players[i] = player
			return
		}
	}

	s.players = append(s.players, player)
	sort.Slice(s.players, func(i, j int) bool {
		return s.players[i].TurnOrder < s.players[j].TurnOrder
	})
}

func (s *Session) removePlayer(playerID string) {
	for i, p := range s.players {
		if p.ID == playerID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return
		}
	}
}

// insertAction prepends a new action, dropping duplicates the poll may
// already have delivered, and caps the mirror at the action limit
func (s *Session) insertAction(action *models.Action) {
	for _, a := range s.actions {
		if a.ID == action.ID {
			return
		}
	}

	s.actions = append([]*models.Action{action}, s.actions...)
	if len(s.actions) > s.actionLimit {
		s.actions = s.actions[:s.actionLimit]
	}
}

// notify signals watchers without ever blocking a worker
func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
