package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/logging"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
)

const (
	writeWait = 5 * time.Second
	sendQueue = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans committed order events out to connected admin dashboards.
// Notify only queues frames; each client has its own writer goroutine, so a
// stalled dashboard never holds up the request that committed the order.
type Hub struct {
	mu      sync.Mutex
	clients map[*feedClient]struct{}
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*feedClient]struct{})}
}

// FeedMessage is one frame on the admin order feed.
type FeedMessage struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

// Notify queues the event for every client. A client whose queue is full is
// dropped.
func (h *Hub) Notify(eventType string, order *models.Order) {
	data, err := json.Marshal(FeedMessage{Type: eventType, Order: order})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for fc := range h.clients {
		select {
		case fc.send <- data:
		default:
			delete(h.clients, fc)
			close(fc.send)
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(fc *feedClient) {
	h.mu.Lock()
	h.clients[fc] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(fc *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[fc]; ok {
		delete(h.clients, fc)
		close(fc.send)
	}
	h.mu.Unlock()
}

// writePump drains the client's queue onto the socket. The connection is
// closed when the queue is closed or a write fails, which also ends the
// handler's read loop.
func (fc *feedClient) writePump() {
	defer fc.conn.Close()
	for data := range fc.send {
		fc.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := fc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	fc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	fc.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// GET /admin/orders/ws
func OrderWebSocketHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := middleware.RequireRole(c, models.RoleAdmin)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logging.Log(logging.Fields{UserID: user.ID, Step: "order_feed", Status: "error", Error: err.Error()})
			return
		}
		fc := &feedClient{conn: conn, send: make(chan []byte, sendQueue)}
		hub.add(fc)
		defer hub.remove(fc)
		go fc.writePump()

		// Incoming frames are ignored; reading detects the close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
