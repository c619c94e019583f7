package feed

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/pigpen/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisFeedTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
}

func (s *RedisFeedTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisFeedTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisFeedTestSuite(t *testing.T) {
	suite.Run(t, new(RedisFeedTestSuite))
}

func (s *RedisFeedTestSuite) waitForEvent(sub Subscription) *models.ChangeEvent {
	select {
	case event, ok := <-sub.Events():
		s.Require().True(ok, "subscription closed before event arrived")
		return event
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for event")
		return nil
	}
}

func (s *RedisFeedTestSuite) TestPublishReachesSubscriber() {
	sub, err := s.repo.Subscribe(context.Background(), &SubscribeInput{
		GameID: "game-1",
	})
	s.Require().NoError(err)
	defer sub.Close()

	err = s.repo.Publish(context.Background(), &PublishInput{
		Event: &models.ChangeEvent{
			GameID: "game-1",
			Entity: models.EntityAction,
			Kind:   models.EventInsert,
			Action: &models.Action{
				ID:     "action-1",
				GameID: "game-1",
				Kind:   models.ActionKindRoll,
				Die:    4,
			},
		},
	})
	s.Require().NoError(err)

	event := s.waitForEvent(sub)
	s.Equal(models.EntityAction, event.Entity)
	s.Equal(models.EventInsert, event.Kind)
	s.Require().NotNil(event.Action)
	s.Equal("action-1", event.Action.ID)
	s.Equal(4, event.Action.Die)
}

func (s *RedisFeedTestSuite) TestSubscriptionIsScopedToGame() {
	sub, err := s.repo.Subscribe(context.Background(), &SubscribeInput{
		GameID: "game-1",
	})
	s.Require().NoError(err)
	defer sub.Close()

	// An event for another game must not arrive on this stream
	err = s.repo.Publish(context.Background(), &PublishInput{
		Event: &models.ChangeEvent{
			GameID: "game-2",
			Entity: models.EntityGame,
			Kind:   models.EventUpdate,
			Game:   &models.Game{ID: "game-2"},
		},
	})
	s.Require().NoError(err)

	err = s.repo.Publish(context.Background(), &PublishInput{
		Event: &models.ChangeEvent{
			GameID: "game-1",
			Entity: models.EntityGame,
			Kind:   models.EventUpdate,
			Game:   &models.Game{ID: "game-1"},
		},
	})
	s.Require().NoError(err)

	event := s.waitForEvent(sub)
	s.Equal("game-1", event.GameID)
}

func (s *RedisFeedTestSuite) TestCloseEndsStream() {
	sub, err := s.repo.Subscribe(context.Background(), &SubscribeInput{
		GameID: "game-1",
	})
	s.Require().NoError(err)

	s.Require().NoError(sub.Close())

	select {
	case _, ok := <-sub.Events():
		s.False(ok, "expected event channel to be closed")
	case <-time.After(2 * time.Second):
		s.FailNow("event channel was not closed after Close")
	}
}

func (s *RedisFeedTestSuite) TestPublishValidation() {
	err := s.repo.Publish(context.Background(), &PublishInput{})
	s.Require().Error(err)

	err = s.repo.Publish(context.Background(), &PublishInput{
		Event: &models.ChangeEvent{Entity: models.EntityGame, Kind: models.EventUpdate},
	})
	s.Require().Error(err)
}
