package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/KirkDiggler/pigpen/internal/models"
	"github.com/KirkDiggler/pigpen/internal/services/sync"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// stateMessage is the payload pushed to watchers on every change
type stateMessage struct {
	Game    *models.Game     `json:"game"`
	Players []*models.Player `json:"players"`
	Actions []*models.Action `json:"actions"`
}

// handleWatchGame streams live game state over a websocket. The
// client receives a full snapshot on connect and again after every
// change the sync session observes.
func (h *Handler) handleWatchGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")

	session, err := h.syncService.Attach(r.Context(), &sync.AttachInput{
		GameID: gameID,
	})
	if err != nil {
		if errors.Is(err, sync.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.WithError(err).WithField("game_id", gameID).Error("failed to attach sync session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer session.Detach()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.WithError(err).WithField("game_id", gameID).Warn("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// The stream is write-only; CloseRead cancels the context when
	// the client goes away
	ctx := conn.CloseRead(r.Context())

	if err := h.writeState(ctx, conn, session); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-session.Updates():
			if err := h.writeState(ctx, conn, session); err != nil {
				h.log.WithError(err).WithField("game_id", gameID).Debug("watcher write failed")
				return
			}
		}
	}
}

func (h *Handler) writeState(ctx context.Context, conn *websocket.Conn, session *sync.Session) error {
	snapshot := session.Snapshot()
	return wsjson.Write(ctx, conn, &stateMessage{
		Game:    snapshot.Game,
		Players: snapshot.Players,
		Actions: snapshot.Actions,
	})
}
