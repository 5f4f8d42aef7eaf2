package notification

import (
	"context"
	"encoding/json"
	"expvar"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/domain/booking"
)

const hallChannelPrefix = "notify:hall:"

var (
	wsConnectionsGauge   = expvar.NewInt("notify_ws_connections")
	wsEventsSentTotal    = expvar.NewInt("notify_ws_events_sent_total")
	wsEventsDroppedTotal = expvar.NewInt("notify_ws_events_dropped_total")
)

// Connection represents a staff WebSocket connection
type Connection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans booking events out to hall staff connections. Redis Pub/Sub
// carries events between server instances; without Redis the hub still
// works for single-instance deployments.
type Hub struct {
	connections map[uuid.UUID]map[*Connection]bool
	// hallID -> userIDs watching the hall on this instance
	hallWatchers map[uuid.UUID]map[uuid.UUID]bool

	redis  *redis.Client
	pubsub *redis.PubSub

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates the notification hub
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections:  make(map[uuid.UUID]map[*Connection]bool),
		hallWatchers: make(map[uuid.UUID]map[uuid.UUID]bool),
		redis:        redisClient,
		register:     make(chan *Connection),
		unregister:   make(chan *Connection),
		ctx:          ctx,
		cancel:       cancel,
	}
	if redisClient != nil {
		h.pubsub = redisClient.PSubscribe(ctx, hallChannelPrefix+"*")
	}
	return h
}

// Run starts the hub (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub != nil {
		go h.runRedisSubscriber()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.connections[conn.UserID] == nil {
				h.connections[conn.UserID] = make(map[*Connection]bool)
			}
			h.connections[conn.UserID][conn] = true
			h.mu.Unlock()
			wsConnectionsGauge.Add(1)
			log.Debug().Str("user_id", conn.UserID.String()).Msg("staff connected to notification feed")

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[conn.UserID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
					wsConnectionsGauge.Add(-1)
				}
				if len(conns) == 0 {
					delete(h.connections, conn.UserID)
					for hallID, users := range h.hallWatchers {
						delete(users, conn.UserID)
						if len(users) == 0 {
							delete(h.hallWatchers, hallID)
						}
					}
				}
			}
			h.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("staff disconnected from notification feed")
		}
	}
}

func (h *Hub) runRedisSubscriber() {
	ch := h.pubsub.Channel()

	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(msg.Channel) <= len(hallChannelPrefix) ||
				msg.Channel[:len(hallChannelPrefix)] != hallChannelPrefix {
				continue
			}
			hallID, err := uuid.Parse(msg.Channel[len(hallChannelPrefix):])
			if err != nil {
				continue
			}
			var event booking.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			h.deliverLocal(hallID, &event)
		}
	}
}

// deliverLocal pushes the event to watchers connected to THIS instance
func (h *Hub) deliverLocal(hallID uuid.UUID, event *booking.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users, ok := h.hallWatchers[hallID]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	for userID := range users {
		for conn := range h.connections[userID] {
			select {
			case conn.Send <- data:
				wsEventsSentTotal.Add(1)
			default:
				wsEventsDroppedTotal.Add(1)
				log.Warn().Str("user_id", userID.String()).Msg("notification send buffer full")
			}
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Watch subscribes the user to a hall's booking events on this instance
func (h *Hub) Watch(hallID, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hallWatchers[hallID] == nil {
		h.hallWatchers[hallID] = make(map[uuid.UUID]bool)
	}
	h.hallWatchers[hallID][userID] = true
}

// Unwatch removes the hall subscription
func (h *Hub) Unwatch(hallID, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hallWatchers[hallID] != nil {
		delete(h.hallWatchers[hallID], userID)
		if len(h.hallWatchers[hallID]) == 0 {
			delete(h.hallWatchers, hallID)
		}
	}
}

// Broadcast delivers a booking event to the hall's watchers on every
// instance. Falls back to local delivery when Redis is down.
func (h *Hub) Broadcast(event *booking.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal booking event")
		return
	}

	if h.redis != nil {
		channel := hallChannelPrefix + event.HallID.String()
		if err := h.redis.Publish(h.ctx, channel, data).Err(); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("redis publish failed")
			h.deliverLocal(event.HallID, event)
		}
		return
	}
	h.deliverLocal(event.HallID, event)
}

// ConnectionCount returns the number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown gracefully shuts down the hub
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
