package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KirkDiggler/pigpen/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefixes for Redis
	gameKeyPrefix    = "game:"
	codeKeyPrefix    = "code:"
	playerKeyPrefix  = "player:"
	playersKeyPrefix = "game_players:" // Sorted set of player IDs scored by turn order
	actionsKeyPrefix = "game_actions:" // Append-only list of action records
)

var (
	// ErrGameNotFound is returned when a game is not found
	ErrGameNotFound = errors.New("game not found")

	// ErrConcurrentModification is returned when a conditional write
	// loses the race against another writer
	ErrConcurrentModification = errors.New("game was modified concurrently")
)

// Config holds configuration for the Redis game repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed game repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// SaveGame persists a game to Redis
func (r *redisRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}

	gameJSON, err := json.Marshal(input.Game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	pipe := r.client.Pipeline()

	gameKey := fmt.Sprintf("%s%s", gameKeyPrefix, input.Game.ID)
	pipe.Set(ctx, gameKey, gameJSON, 0)

	// Index the join code so games can be looked up by it
	if input.Game.Code != "" {
		codeKey := fmt.Sprintf("%s%s", codeKeyPrefix, strings.ToUpper(input.Game.Code))
		pipe.Set(ctx, codeKey, input.Game.ID, 0)
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}

	return nil
}

// GetGame retrieves a game by ID from Redis
func (r *redisRepository) GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	gameKey := fmt.Sprintf("%s%s", gameKeyPrefix, input.GameID)
	gameJSON, err := r.client.Get(ctx, gameKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	var game models.Game
	if err := json.Unmarshal([]byte(gameJSON), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &game, nil
}

// GetGameByCode retrieves a game by join code from Redis
func (r *redisRepository) GetGameByCode(ctx context.Context, input *GetGameByCodeInput) (*models.Game, error) {
	if input == nil || input.Code == "" {
		return nil, errors.New("input and code cannot be empty")
	}

	codeKey := fmt.Sprintf("%s%s", codeKeyPrefix, strings.ToUpper(input.Code))
	gameID, err := r.client.Get(ctx, codeKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game ID for code: %w", err)
	}

	return r.GetGame(ctx, &GetGameInput{
		GameID: gameID,
	})
}

// SavePlayer persists a player to Redis and indexes it under its game,
// scored by turn order so listings come back in cycle order
func (r *redisRepository) SavePlayer(ctx context.Context, input *SavePlayerInput) error {
	if input == nil || input.Player == nil {
		return errors.New("input and player cannot be nil")
	}

	playerJSON, err := json.Marshal(input.Player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	pipe := r.client.Pipeline()

	playerKey := fmt.Sprintf("%s%s", playerKeyPrefix, input.Player.ID)
	pipe.Set(ctx, playerKey, playerJSON, 0)

	playersKey := fmt.Sprintf("%s%s", playersKeyPrefix, input.Player.GameID)
	pipe.ZAdd(ctx, playersKey, redis.Z{
		Score:  float64(input.Player.TurnOrder),
		Member: input.Player.ID,
	})

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

// ListPlayers retrieves all players in a game, ordered by turn order
func (r *redisRepository) ListPlayers(ctx context.Context, input *ListPlayersInput) ([]*models.Player, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	playersKey := fmt.Sprintf("%s%s", playersKeyPrefix, input.GameID)
	playerIDs, err := r.client.ZRange(ctx, playersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player IDs: %w", err)
	}

	if len(playerIDs) == 0 {
		return []*models.Player{}, nil
	}

	pipe := r.client.Pipeline()
	playerCommands := make([]*redis.StringCmd, 0, len(playerIDs))

	for _, playerID := range playerIDs {
		playerKey := fmt.Sprintf("%s%s", playerKeyPrefix, playerID)
		playerCommands = append(playerCommands, pipe.Get(ctx, playerKey))
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	players := make([]*models.Player, 0, len(playerIDs))
	for i, cmd := range playerCommands {
		playerJSON, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				// Player record removed between index read and fetch
				continue
			}
			return nil, fmt.Errorf("failed to get player %s: %w", playerIDs[i], err)
		}

		var player models.Player
		if err := json.Unmarshal([]byte(playerJSON), &player); err != nil {
			return nil, fmt.Errorf("failed to unmarshal player %s: %w", playerIDs[i], err)
		}

		players = append(players, &player)
	}

	return players, nil
}

// ListRecentActions retrieves the newest actions for a game, newest
// first. The log itself is append-only and retained in full.
func (r *redisRepository) ListRecentActions(ctx context.Context, input *ListRecentActionsInput) ([]*models.Action, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	limit := input.Limit
	if limit <= 0 {
		return []*models.Action{}, nil
	}

	actionsKey := fmt.Sprintf("%s%s", actionsKeyPrefix, input.GameID)
	entries, err := r.client.LRange(ctx, actionsKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get actions: %w", err)
	}

	// LRange returns oldest first; reverse so the newest leads
	actions := make([]*models.Action, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		var action models.Action
		if err := json.Unmarshal([]byte(entries[i]), &action); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action: %w", err)
		}
		actions = append(actions, &action)
	}

	return actions, nil
}

// ApplyTransition conditionally writes the records produced by one
// accepted turn. The game key is watched and the stored current-player
// field re-checked inside the transaction, so two racing writers cannot
// both succeed against the same turn.
func (r *redisRepository) ApplyTransition(ctx context.Context, input *ApplyTransitionInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}

	gameKey := fmt.Sprintf("%s%s", gameKeyPrefix, input.Game.ID)

	gameJSON, err := json.Marshal(input.Game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	playerJSONs := make(map[string][]byte, len(input.Players))
	for _, player := range input.Players {
		playerJSON, err := json.Marshal(player)
		if err != nil {
			return fmt.Errorf("failed to marshal player %s: %w", player.ID, err)
		}
		playerJSONs[player.ID] = playerJSON
	}

	var actionJSON []byte
	if input.Action != nil {
		actionJSON, err = json.Marshal(input.Action)
		if err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		storedJSON, err := tx.Get(ctx, gameKey).Result()
		if err != nil {
			if err == redis.Nil {
				return ErrGameNotFound
			}
			return fmt.Errorf("failed to get game: %w", err)
		}

		var stored models.Game
		if err := json.Unmarshal([]byte(storedJSON), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		// Optimistic-concurrency precondition: the turn must not have
		// moved since the caller read its snapshot
		if stored.CurrentPlayerID != input.ExpectedCurrentPlayerID {
			return ErrConcurrentModification
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey, gameJSON, 0)

			for playerID, playerJSON := range playerJSONs {
				playerKey := fmt.Sprintf("%s%s", playerKeyPrefix, playerID)
				pipe.Set(ctx, playerKey, playerJSON, 0)
			}

			if actionJSON != nil {
				actionsKey := fmt.Sprintf("%s%s", actionsKeyPrefix, input.Game.ID)
				pipe.RPush(ctx, actionsKey, actionJSON)
			}

			return nil
		})
		return err
	}, gameKey)

	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return ErrConcurrentModification
		}
		return err
	}

	return nil
}
