package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/pigpen/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// channelKeyPrefix is the Redis pub/sub channel namespace, one
	// channel per game
	channelKeyPrefix = "game_feed:"

	// subscriptionBuffer bounds how many undelivered events a slow
	// subscriber may hold before further events are dropped for it
	subscriptionBuffer = 64
)

// Config holds configuration for the Redis feed repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis pub/sub
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed feed repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// Publish broadcasts a change event to the game's channel
func (r *redisRepository) Publish(ctx context.Context, input *PublishInput) error {
	if input == nil || input.Event == nil {
		return errors.New("input and event cannot be nil")
	}

	if input.Event.GameID == "" {
		return errors.New("event game ID cannot be empty")
	}

	eventJSON, err := json.Marshal(input.Event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("%s%s", channelKeyPrefix, input.Event.GameID)
	if err := r.client.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subscribe opens a per-game change event stream backed by a Redis
// pub/sub subscription
func (r *redisRepository) Subscribe(ctx context.Context, input *SubscribeInput) (Subscription, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	channel := fmt.Sprintf("%s%s", channelKeyPrefix, input.GameID)
	pubsub := r.client.Subscribe(ctx, channel)

	// Force the subscription handshake so a broken connection surfaces
	// here instead of as a silently empty stream
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to feed: %w", err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan *models.ChangeEvent, subscriptionBuffer),
	}

	go sub.pump()

	return sub, nil
}

// redisSubscription implements Subscription over a Redis pub/sub channel
type redisSubscription struct {
	pubsub *redis.PubSub
	events chan *models.ChangeEvent
}

// Events returns the stream of change events
func (s *redisSubscription) Events() <-chan *models.ChangeEvent {
	return s.events
}

// Close tears down the subscription and closes the event channel
func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}

// pump decodes raw pub/sub messages onto the event channel until the
// underlying subscription closes
func (s *redisSubscription) pump() {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		var event models.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			logrus.WithError(err).Warn("feed: dropping undecodable event")
			continue
		}

		select {
		case s.events <- &event:
		default:
			// Subscriber is not draining; drop rather than block the
			// pump. The poll cycle covers the gap.
			logrus.WithField("game_id", event.GameID).
				Warn("feed: subscriber backlogged, dropping event")
		}
	}
}
