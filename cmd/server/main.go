package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/KirkDiggler/pigpen/internal/common/clock"
	"github.com/KirkDiggler/pigpen/internal/common/uuid"
	"github.com/KirkDiggler/pigpen/internal/dice"
	"github.com/KirkDiggler/pigpen/internal/gamecode"
	"github.com/KirkDiggler/pigpen/internal/handlers/httpapi"
	feedRepository "github.com/KirkDiggler/pigpen/internal/repositories/feed"
	gameRepository "github.com/KirkDiggler/pigpen/internal/repositories/game"
	gameService "github.com/KirkDiggler/pigpen/internal/services/game"
	syncService "github.com/KirkDiggler/pigpen/internal/services/sync"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load a .env file if one is present; real environment wins
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.WithError(err).Fatal("Failed to load .env file")
		}
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	// Initialize repositories
	gameRepo, err := gameRepository.NewRedis(&gameRepository.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create game repository")
	}

	feedRepo, err := feedRepository.NewRedis(&feedRepository.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create feed repository")
	}

	// Initialize game service
	gameSvc, err := gameService.New(&gameService.Config{
		TargetScore:   getEnvInt("TARGET_SCORE", 100),
		MinPlayers:    getEnvInt("MIN_PLAYERS", 2),
		MaxPlayers:    getEnvInt("MAX_PLAYERS", 8),
		GameRepo:      gameRepo,
		FeedRepo:      feedRepo,
		DiceRoller:    dice.New(&dice.Config{}),
		Clock:         &clock.DefaultClock{},
		UUIDGenerator: uuid.New(),
		CodeGenerator: gamecode.New(&gamecode.Config{}),
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create game service")
	}

	// Initialize sync service
	syncSvc, err := syncService.New(&syncService.Config{
		GameRepo:     gameRepo,
		FeedRepo:     feedRepo,
		PollInterval: time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 3)) * time.Second,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create sync service")
	}

	// Initialize HTTP handler
	handler, err := httpapi.New(&httpapi.Config{
		GameService: gameSvc,
		SyncService: syncSvc,
		Log:         log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create HTTP handler")
	}

	addr := getEnv("LISTEN_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down server")
	}

	if err := redisClient.Close(); err != nil {
		log.WithError(err).Error("Error closing Redis client")
	}

	log.Info("Server has been shut down")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
