package httpapi

import (
	"context"
	"net/http/httptest"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/KirkDiggler/pigpen/internal/models"
	feedMocks "github.com/KirkDiggler/pigpen/internal/repositories/feed/mocks"
	gameRepo "github.com/KirkDiggler/pigpen/internal/repositories/game"
	gameRepoMocks "github.com/KirkDiggler/pigpen/internal/repositories/game/mocks"
	gameSvcMocks "github.com/KirkDiggler/pigpen/internal/services/game/mocks"
	"github.com/KirkDiggler/pigpen/internal/services/sync"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// StreamTestSuite exercises the websocket route against a real sync
// service backed by mocked repositories
type StreamTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	events   chan *models.ChangeEvent
	server   *httptest.Server
	ctx      context.Context

	testGameID string
}

func (s *StreamTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.ctx = context.Background()
	s.testGameID = "test-game-id"

	storedGame := &models.Game{
		ID:              s.testGameID,
		Code:            "ABCDEF",
		Status:          models.GameStatusActive,
		CurrentPlayerID: "player-1",
		TargetScore:     100,
	}
	storedPlayers := []*models.Player{
		{ID: "player-1", GameID: s.testGameID, Name: "Alice", TurnOrder: 1, Active: true},
		{ID: "player-2", GameID: s.testGameID, Name: "Bob", TurnOrder: 2, Active: true},
	}

	mockGameRepo := gameRepoMocks.NewMockRepository(s.mockCtrl)
	mockGameRepo.EXPECT().
		GetGame(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *gameRepo.GetGameInput) (*models.Game, error) {
			if input.GameID != s.testGameID {
				return nil, gameRepo.ErrGameNotFound
			}
			game := *storedGame
			return &game, nil
		}).
		AnyTimes()
	mockGameRepo.EXPECT().
		ListPlayers(gomock.Any(), gomock.Any()).
		Return(storedPlayers, nil).
		AnyTimes()
	mockGameRepo.EXPECT().
		ListRecentActions(gomock.Any(), gomock.Any()).
		Return([]*models.Action{}, nil).
		AnyTimes()

	s.events = make(chan *models.ChangeEvent, 16)
	var events <-chan *models.ChangeEvent = s.events
	mockSub := feedMocks.NewMockSubscription(s.mockCtrl)
	mockSub.EXPECT().Events().Return(events).AnyTimes()

	var closeOnce stdsync.Once
	mockSub.EXPECT().Close().DoAndReturn(func() error {
		closeOnce.Do(func() { close(s.events) })
		return nil
	}).AnyTimes()

	mockFeedRepo := feedMocks.NewMockRepository(s.mockCtrl)
	mockFeedRepo.EXPECT().
		Subscribe(gomock.Any(), gomock.Any()).
		Return(mockSub, nil).
		AnyTimes()

	syncService, err := sync.New(&sync.Config{
		GameRepo:     mockGameRepo,
		FeedRepo:     mockFeedRepo,
		PollInterval: time.Minute, // pushes only; keep the poll out of the way
	})
	s.Require().NoError(err)

	handler, err := New(&Config{
		GameService: gameSvcMocks.NewMockService(s.mockCtrl),
		SyncService: syncService,
	})
	s.Require().NoError(err)

	s.server = httptest.NewServer(handler.Routes())
}

func (s *StreamTestSuite) TearDownTest() {
	s.server.Close()
	s.mockCtrl.Finish()
}

func TestStreamTestSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func (s *StreamTestSuite) dial() *websocket.Conn {
	url := strings.Replace(s.server.URL, "http", "ws", 1) + "/ws/games/" + s.testGameID
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	s.Require().NoError(err)
	return conn
}

func (s *StreamTestSuite) read(conn *websocket.Conn) *stateMessage {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()

	var msg stateMessage
	s.Require().NoError(wsjson.Read(ctx, conn, &msg))
	return &msg
}

func (s *StreamTestSuite) TestInitialSnapshotOnConnect() {
	conn := s.dial()
	defer conn.Close(websocket.StatusNormalClosure, "")

	msg := s.read(conn)
	s.Require().NotNil(msg.Game)
	s.Equal(s.testGameID, msg.Game.ID)
	s.Equal("player-1", msg.Game.CurrentPlayerID)
	s.Len(msg.Players, 2)
}

func (s *StreamTestSuite) TestChangeEventsStreamToWatcher() {
	conn := s.dial()
	defer conn.Close(websocket.StatusNormalClosure, "")

	// initial snapshot
	s.read(conn)

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

	msg := s.read(conn)
	s.Equal("player-2", msg.Game.CurrentPlayerID)
}
