package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/infra"
	"github.com/attaboy/matchday/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// LiveHandler streams game events over a websocket.
type LiveHandler struct {
	games    *service.GameService
	hub      *infra.WSHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewLiveHandler creates a new LiveHandler. An empty origins list, or "*",
// accepts any origin.
func NewLiveHandler(games *service.GameService, hub *infra.WSHub, origins []string, logger *slog.Logger) *LiveHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &LiveHandler{
		games:  games,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Stream handles GET /games/{gameID}/live.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	playerID, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no player in context"))
		return
	}
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	if _, err := h.games.Game(r.Context(), gameID); err != nil {
		RespondError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "game_id", gameID, "error", err)
		return
	}

	sub := infra.NewWSConn(uuid.New().String(), playerID.String(), sendBufferSize)
	room := infra.GameRoom(gameID.String())
	if !h.hub.Join(room, sub) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	h.logger.Info("live subscriber joined", "game_id", gameID, "player_id", playerID, "conn_id", sub.ID)

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, sub, done)

	h.hub.Leave(room, sub.ID)
	h.logger.Info("live subscriber left", "game_id", gameID, "conn_id", sub.ID)
}

// readPump discards client messages and closes done when the peer goes away.
func (h *LiveHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("live read error", "error", err)
			}
			return
		}
	}
}

func (h *LiveHandler) writePump(conn *websocket.Conn, sub *infra.WSConn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case payload, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
