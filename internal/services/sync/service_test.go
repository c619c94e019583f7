package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	"github.com/KirkDiggler/pigpen/internal/models"
	feedMocks "github.com/KirkDiggler/pigpen/internal/repositories/feed/mocks"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
	gameMocks "github.com/KirkDiggler/pigpen/internal/repositories/game/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// storeState is the fake authoritative state the mocked repository
// serves; tests mutate it to simulate writes happening elsewhere
type storeState struct {
	mu      stdsync.Mutex
	game    *models.Game
	players []*models.Player
	actions []*models.Action
}

type SyncServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockGameRepo *gameMocks.MockRepository
	mockFeedRepo *feedMocks.MockRepository
	mockSub      *feedMocks.MockSubscription
	events       chan *models.ChangeEvent
	store        *storeState
	syncService  Service
	ctx          context.Context

	testGameID string
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockGameRepo = gameMocks.NewMockRepository(s.mockCtrl)
	s.mockFeedRepo = feedMocks.NewMockRepository(s.mockCtrl)
	s.mockSub = feedMocks.NewMockSubscription(s.mockCtrl)
	s.ctx = context.Background()

	s.testGameID = "test-game-id"

	s.store = &storeState{
		game: &models.Game{
			ID:              s.testGameID,
			Code:            "ABCDEF",
			Status:          models.GameStatusActive,
			CurrentPlayerID: "player-1",
			TargetScore:     100,
		},
		players: []*models.Player{
			{ID: "player-1", GameID: s.testGameID, Name: "Alice", TurnOrder: 1, Active: true},
			{ID: "player-2", GameID: s.testGameID, Name: "Bob", TurnOrder: 3, Active: true},
		},
		actions: []*models.Action{
			{ID: "action-1", GameID: s.testGameID, PlayerID: "player-1", Kind: models.ActionKindRoll, Die: 4, TurnScore: 4},
		},
	}

	// The mocked repository always serves the current fake store state
	s.mockGameRepo.EXPECT().
		GetGame(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *gameRepo.GetGameInput) (*models.Game, error) {
			s.store.mu.Lock()
			defer s.store.mu.Unlock()
			if s.store.game == nil {
				return nil, gameRepo.ErrGameNotFound
			}
			game := *s.store.game
			return &game, nil
		}).
		AnyTimes()

	s.mockGameRepo.EXPECT().
		ListPlayers(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *gameRepo.ListPlayersInput) ([]*models.Player, error) {
			s.store.mu.Lock()
			defer s.store.mu.Unlock()
			players := make([]*models.Player, len(s.store.players))
			copy(players, s.store.players)
			return players, nil
		}).
		AnyTimes()

	s.mockGameRepo.EXPECT().
		ListRecentActions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *gameRepo.ListRecentActionsInput) ([]*models.Action, error) {
			s.store.mu.Lock()
			defer s.store.mu.Unlock()
			actions := make([]*models.Action, len(s.store.actions))
			copy(actions, s.store.actions)
			if len(actions) > input.Limit {
				actions = actions[:input.Limit]
			}
			return actions, nil
		}).
		AnyTimes()

	// Push channel under test control; Close ends the stream like a
	// real subscription teardown would
	s.events = make(chan *models.ChangeEvent, 16)
	var events <-chan *models.ChangeEvent = s.events
	s.mockSub.EXPECT().Events().Return(events).AnyTimes()

	var closeOnce stdsync.Once
	s.mockSub.EXPECT().Close().DoAndReturn(func() error {
		closeOnce.Do(func() { close(s.events) })
		return nil
	}).AnyTimes()

	s.mockFeedRepo.EXPECT().
		Subscribe(gomock.Any(), gomock.Any()).
		Return(s.mockSub, nil).
		AnyTimes()

	// Push tests keep the poll out of the way; poll tests build their
	// own service with a short interval
	s.syncService = s.newService(time.Minute)
}

func (s *SyncServiceTestSuite) newService(pollInterval time.Duration) Service {
	svc, err := New(&Config{
		GameRepo:     s.mockGameRepo,
		FeedRepo:     s.mockFeedRepo,
		PollInterval: pollInterval,
		ActionLimit:  10,
	})
	s.Require().NoError(err)
	return svc
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) attach() *Session {
	session, err := s.syncService.Attach(s.ctx, &AttachInput{GameID: s.testGameID})
	s.Require().NoError(err)
	return session
}

func (s *SyncServiceTestSuite) TestAttachLoadsInitialState() {
	session := s.attach()
	defer session.Detach()

	snapshot := session.Snapshot()
	s.Require().NotNil(snapshot.Game)
	s.Equal(s.testGameID, snapshot.Game.ID)
	s.Equal(models.GameStatusActive, snapshot.Game.Status)
	s.Len(snapshot.Players, 2)
	s.Len(snapshot.Actions, 1)
}

func (s *SyncServiceTestSuite) TestAttachGameNotFound() {
	s.store.mu.Lock()
	s.store.game = nil
	s.store.mu.Unlock()

	_, err := s.syncService.Attach(s.ctx, &AttachInput{GameID: s.testGameID})
	s.ErrorIs(err, ErrGameNotFound)
}

func (s *SyncServiceTestSuite) TestPushGameUpdateReachesMirror() {
	session := s.attach()
	defer session.Detach()

	s.events <- &models.ChangeEvent{
		GameID: s.testGameID,
		Entity: models.EntityGame,
		Kind:   models.EventUpdate,
		Game: &models.Game{
			ID:              s.testGameID,
			Status:          models.GameStatusActive,
			CurrentPlayerID: "player-2",
			TargetScore:     100,
		},
	}

	s.Require().Eventually(func() bool {
		return session.Snapshot().Game.CurrentPlayerID == "player-2"
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *SyncServiceTestSuite) TestPushedActionsDeduplicateAndCap() {
	session := s.attach()
	defer session.Detach()

	duplicate := &models.Action{ID: "action-1", GameID: s.testGameID, Kind: models.ActionKindRoll}
	s.events <- &models.ChangeEvent{GameID: s.testGameID, Entity: models.EntityAction, Kind: models.EventInsert, Action: duplicate}

	// Push well past the cap
	for i := 2; i <= 15; i++ {
		s.events <- &models.ChangeEvent{
			GameID: s.testGameID,
			Entity: models.EntityAction,
			Kind:   models.EventInsert,
			Action: &models.Action{ID: fmt.Sprintf("action-%d", i), GameID: s.testGameID, Kind: models.ActionKindRoll},
		}
	}

	s.Require().Eventually(func() bool {
		actions := session.Snapshot().Actions
		return len(actions) == 10 && actions[0].ID == "action-15"
	}, 2*time.Second, 5*time.Millisecond)

	// No duplicate IDs anywhere in the mirror
	seen := make(map[string]bool)
	for _, action := range session.Snapshot().Actions {
		s.False(seen[action.ID], "duplicate action %s", action.ID)
		seen[action.ID] = true
	}
}

func (s *SyncServiceTestSuite) TestPushPlayerInsertKeepsTurnOrder() {
	session := s.attach()
	defer session.Detach()

	// A player with an order between the existing two
	s.events <- &models.ChangeEvent{
		GameID: s.testGameID,
		Entity: models.EntityPlayer,
		Kind:   models.EventInsert,
		Player: &models.Player{ID: "player-3", GameID: s.testGameID, Name: "Cara", TurnOrder: 2, Active: true},
	}

	s.Require().Eventually(func() bool {
		players := session.Snapshot().Players
		return len(players) == 3 && players[1].ID == "player-3"
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *SyncServiceTestSuite) TestPushPlayerDelete() {
	session := s.attach()
	defer session.Detach()

	s.events <- &models.ChangeEvent{
		GameID:    s.testGameID,
		Entity:    models.EntityPlayer,
		Kind:      models.EventDelete,
		DeletedID: "player-2",
	}

	s.Require().Eventually(func() bool {
		players := session.Snapshot().Players
		return len(players) == 1 && players[0].ID == "player-1"
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *SyncServiceTestSuite) TestEventsForOtherGamesIgnored() {
	session := s.attach()
	defer session.Detach()

	s.events <- &models.ChangeEvent{
		GameID: "other-game",
		Entity: models.EntityGame,
		Kind:   models.EventUpdate,
		Game:   &models.Game{ID: "other-game", Status: models.GameStatusFinished},
	}

	time.Sleep(30 * time.Millisecond)
	s.Equal(s.testGameID, session.Snapshot().Game.ID)
}

func (s *SyncServiceTestSuite) TestPollConvergesAfterMissedPush() {
	session, err := s.newService(20 * time.Millisecond).Attach(s.ctx, &AttachInput{GameID: s.testGameID})
	s.Require().NoError(err)
	defer session.Detach()

	// The store moves on but no push is ever delivered
	s.store.mu.Lock()
	s.store.game.Status = models.GameStatusFinished
	s.store.game.WinnerID = "player-1"
	s.store.game.CurrentPlayerID = ""
	s.store.mu.Unlock()

	// The poll backstop picks it up within an interval
	s.Require().Eventually(func() bool {
		snapshot := session.Snapshot()
		return snapshot.Game.Status.IsFinished() && snapshot.Game.WinnerID == "player-1"
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *SyncServiceTestSuite) TestDetachStopsMirror() {
	session, err := s.newService(20 * time.Millisecond).Attach(s.ctx, &AttachInput{GameID: s.testGameID})
	s.Require().NoError(err)
	session.Detach()

	// Mutate the store after teardown; no poll may pick it up
	s.store.mu.Lock()
	s.store.game.Status = models.GameStatusFinished
	s.store.mu.Unlock()

	time.Sleep(150 * time.Millisecond)
	s.Equal(models.GameStatusActive, session.Snapshot().Game.Status)
}

func (s *SyncServiceTestSuite) TestUpdatesSignalCoalesces() {
	session := s.attach()
	defer session.Detach()

	s.events <- &models.ChangeEvent{
		GameID: s.testGameID,
		Entity: models.EntityGame,
		Kind:   models.EventUpdate,
		Game:   &models.Game{ID: s.testGameID, Status: models.GameStatusActive, CurrentPlayerID: "player-2"},
	}

	select {
	case <-session.Updates():
	case <-time.After(2 * time.Second):
		s.FailNow("no update signal received")
	}
}

func (s *SyncServiceTestSuite) TestSnapshotHelpers() {
	session := s.attach()
	defer session.Detach()

	snapshot := session.Snapshot()

	s.True(snapshot.IsTurn("player-1"))
	s.False(snapshot.IsTurn("player-2"))

	current := snapshot.CurrentPlayer()
	s.Require().NotNil(current)
	s.Equal("Alice", current.Name)

	s.Nil(snapshot.Player("nobody"))
}
