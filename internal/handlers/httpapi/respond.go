package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/KirkDiggler/pigpen/internal/services/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps service errors onto HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var gameErr game.GameError
	if !errors.As(err, &gameErr) {
		h.log.WithError(err).Error("unexpected service error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch gameErr {
	case game.ErrGameNotFound:
		writeError(w, http.StatusNotFound, gameErr.Error())
	case game.ErrGameNotWaiting,
		game.ErrGameNotActive,
		game.ErrGameNotJoinable,
		game.ErrGameFull,
		game.ErrNotEnoughPlayers,
		game.ErrNotYourTurn,
		game.ErrNoPointsToHold,
		game.ErrConflict:
		writeError(w, http.StatusConflict, gameErr.Error())
	case game.ErrPlayerNotInGame:
		writeError(w, http.StatusForbidden, gameErr.Error())
	default:
		h.log.WithError(err).Error("unmapped service error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
