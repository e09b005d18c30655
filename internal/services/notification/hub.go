package notification

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Dang-Huynh/FoodOrderingService/internal/logger"
	"github.com/Dang-Huynh/FoodOrderingService/internal/models"
)

// Hub pushes order notifications to connected WebSocket clients. A client
// may watch a single restaurant by connecting with ?restaurant_id=N.
type Hub struct {
	clients    map[*websocket.Conn]int64
	writeWait  time.Duration
	broadcast  chan models.OrderPlacedMessage
	register   chan subscription
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger
}

type subscription struct {
	conn         *websocket.Conn
	restaurantID int64
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]int64),
		writeWait:  10 * time.Second,
		broadcast:  make(chan models.OrderPlacedMessage, 64),
		register:   make(chan subscription),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run serves register, unregister and broadcast until ctx is done, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case sub := <-h.register:
			h.mu.Lock()
			h.clients[sub.conn] = sub.restaurantID
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.push(msg)
		}
	}
}

// push writes msg to every matching client outside the lock. Each write has
// a deadline so one stalled client cannot hold up the loop for long.
func (h *Hub) push(msg models.OrderPlacedMessage) {
	h.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(h.clients))
	for conn, rid := range h.clients {
		if rid == 0 || rid == msg.RestaurantID {
			targets = append(targets, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range targets {
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Error("ws_write_failed", "Failed to push notification", msg.RequestID, err, nil)
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}
	}
}

// Broadcast queues msg for delivery. It drops the message when the queue
// is full rather than stall the consumer.
func (h *Hub) Broadcast(msg models.OrderPlacedMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Error("ws_broadcast_dropped", "Notification queue full", msg.RequestID, nil, map[string]interface{}{
			"order_id": msg.OrderID,
		})
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket handles GET /ws
func (h *Hub) HandleWebSocket(c *gin.Context) {
	var rid int64
	if raw := c.Query("restaurant_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid restaurant_id"})
			return
		}
		rid = v
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("ws_upgrade_failed", "Failed to upgrade connection", "", err, nil)
		return
	}

	select {
	case h.register <- subscription{conn: conn, restaurantID: rid}:
		go h.listen(conn)
	case <-h.done:
		conn.Close()
	}
}

// listen drains the client until it disconnects. Clients only receive.
func (h *Hub) listen(conn *websocket.Conn) {
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
