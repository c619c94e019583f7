package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/KirkDiggler/pigpen/internal/services/game"
	"github.com/KirkDiggler/pigpen/internal/services/sync"
	"github.com/sirupsen/logrus"
)

// Handler serves the JSON API and the live game websocket
type Handler struct {
	gameService game.Service
	syncService sync.Service
	log         *logrus.Logger
}

// Config holds the configuration for the HTTP handler
type Config struct {
	// GameService executes game operations
	GameService game.Service

	// SyncService backs the live game stream
	SyncService sync.Service

	// Log is the shared logger; a default logger is used when nil
	Log *logrus.Logger
}

// New creates a new HTTP handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	if cfg.SyncService == nil {
		return nil, errors.New("sync service cannot be nil")
	}

	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Handler{
		gameService: cfg.GameService,
		syncService: cfg.SyncService,
		log:         log,
	}, nil
}

// Routes returns the full route table
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", h.handleCreateGame)
	mux.HandleFunc("POST /api/games/join", h.handleJoinGame)
	mux.HandleFunc("POST /api/games/{id}/start", h.handleStartGame)
	mux.HandleFunc("POST /api/games/{id}/roll", h.handleRollDice)
	mux.HandleFunc("POST /api/games/{id}/hold", h.handleHoldTurn)
	mux.HandleFunc("GET /api/games/{id}", h.handleGetGame)
	mux.HandleFunc("GET /ws/games/{id}", h.handleWatchGame)
	return mux
}

type createGameRequest struct {
	PlayerName string `json:"player_name"`
}

func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.PlayerName) == "" {
		writeError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	output, err := h.gameService.CreateGame(r.Context(), &game.CreateGameInput{
		CreatorName: strings.TrimSpace(req.PlayerName),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"game":   output.Game,
		"player": output.Player,
	})
}

type joinGameRequest struct {
	Code       string `json:"code"`
	PlayerName string `json:"player_name"`
}

func (h *Handler) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinGameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if strings.TrimSpace(req.PlayerName) == "" {
		writeError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	output, err := h.gameService.JoinGame(r.Context(), &game.JoinGameInput{
		Code:       req.Code,
		PlayerName: strings.TrimSpace(req.PlayerName),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game":   output.Game,
		"player": output.Player,
	})
}

func (h *Handler) handleStartGame(w http.ResponseWriter, r *http.Request) {
	output, err := h.gameService.StartGame(r.Context(), &game.StartGameInput{
		GameID: r.PathValue("id"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game": output.Game,
	})
}

type actionRequest struct {
	PlayerID string `json:"player_id"`
}

func (h *Handler) handleRollDice(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	output, err := h.gameService.RollDice(r.Context(), &game.RollDiceInput{
		GameID:   r.PathValue("id"),
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"die":        output.DieValue,
		"turn_score": output.NewTurnScore,
		"bust":       output.Bust,
	})
}

func (h *Handler) handleHoldTurn(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	output, err := h.gameService.HoldTurn(r.Context(), &game.HoldTurnInput{
		GameID:   r.PathValue("id"),
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_score": output.NewTotalScore,
		"game_won":    output.GameWon,
		"winner_id":   output.WinnerID,
	})
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	output, err := h.gameService.GetGameState(r.Context(), &game.GetGameStateInput{
		GameIDOrCode: r.PathValue("id"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"game":    output.Game,
		"players": output.Players,
		"actions": output.Actions,
	})
}
