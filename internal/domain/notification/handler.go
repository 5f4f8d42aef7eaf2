package notification

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/middleware"
	"github.com/banquet/banquet-api/internal/pkg/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// clients only send watch/unwatch frames
	maxMessageSize = 4 * 1024
)

// AccessChecker answers hall staff membership questions.
// Satisfied by hall.Service.
type AccessChecker interface {
	RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error
}

// Handler handles the notification WebSocket endpoint
type Handler struct {
	hub      *Hub
	halls    AccessChecker
	upgrader websocket.Upgrader
}

// NewHandler creates notification handler
func NewHandler(hub *Hub, halls AccessChecker, allowedOrigins []string) *Handler {
	return &Handler{
		hub:   hub,
		halls: halls,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// WebSocket handles WS /notifications/ws?hall_id=...
// The connection starts watching the requested hall; further halls can be
// added with {"type":"watch","hall_id":"..."} frames.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	hallID, err := uuid.Parse(r.URL.Query().Get("hall_id"))
	if err != nil {
		response.BadRequest(w, "Invalid hall ID")
		return
	}
	if err := h.halls.RequireAccess(r.Context(), hallID, userID); err != nil {
		response.Forbidden(w, "You are not staff of this hall")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &Connection{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.hub.Register(client)
	h.hub.Watch(hallID, userID)

	go h.wsReader(client)
	go h.wsWriter(client)
}

func (h *Handler) wsReader(client *Connection) {
	defer func() {
		h.hub.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame struct {
			Type   string `json:"type"`
			HallID string `json:"hall_id"`
		}
		if err := client.Conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", client.UserID.String()).Msg("WebSocket read error")
			}
			break
		}

		hallID, err := uuid.Parse(frame.HallID)
		if err != nil {
			continue
		}
		switch frame.Type {
		case "watch":
			if err := h.halls.RequireAccess(context.Background(), hallID, client.UserID); err != nil {
				continue
			}
			h.hub.Watch(hallID, client.UserID)
		case "unwatch":
			h.hub.Unwatch(hallID, client.UserID)
		}
	}
}

func (h *Handler) wsWriter(client *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
