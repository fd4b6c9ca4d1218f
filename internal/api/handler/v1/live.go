package v1

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ubcma/membership-portal-api/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production!
	},
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// LiveFeedHandler streams confirmed registrations to connected admin
// dashboards over a websocket.
type LiveFeedHandler struct {
	users CurrentUserProvider

	clients      map[*feedClient]bool
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *feedClient
	unregister   chan *feedClient
}

func NewLiveFeedHandler(users CurrentUserProvider) *LiveFeedHandler {
	return &LiveFeedHandler{
		users:      users,
		clients:    make(map[*feedClient]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
	}
}

// Run owns the client set. It runs on its own goroutine for the life of
// the server.
func (h *LiveFeedHandler) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = true
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()
		case message := <-h.broadcast:
			h.clientsMutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

// PublishRegistration fans a confirmed registration out to every
// connected dashboard. It never blocks the checkout request.
func (h *LiveFeedHandler) PublishRegistration(reg domain.Registration) {
	payload, err := json.Marshal(gin.H{
		"type":         "registration.created",
		"registration": reg,
	})
	if err != nil {
		zap.L().Error("marshal registration event", zap.Error(err))

		return
	}

	select {
	case h.broadcast <- payload:
	default:
		zap.L().Warn("live feed broadcast dropped")
	}
}

// HandleLiveFeed godoc
// @Summary      Establish a WebSocket connection for the live registration feed (admin)
// @Tags         admin
// @Produce      json
// @Success      101 {string} string "Switching Protocols to WebSocket"
// @Failure      401 {object} response.Err
// @Failure      403 {object} response.Err
// @Router       /admin/registrations/live [get]
// @Security     ApiKeyAuth
func (h *LiveFeedHandler) HandleLiveFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Info("websocket upgrade failed", zap.Error(err))

		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *feedClient) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}

	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump drains the connection so pings and close frames are
// processed. The feed is one-way; inbound messages are discarded.
func (c *feedClient) readPump(h *LiveFeedHandler) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Info("live feed read error", zap.Error(err))
			}

			break
		}
	}
}
