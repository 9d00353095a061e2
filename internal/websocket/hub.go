package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
	"github.com/noah-isme/banco-questoes-web/pkg/middleware/session"
	"github.com/noah-isme/banco-questoes-web/pkg/response"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ConnectionObserver tracks the number of open connections.
type ConnectionObserver interface {
	NotificationConnections(delta int)
}

// OriginChecker accepts or rejects the upgrade request.
type OriginChecker func(r *http.Request) bool

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans search events out to every open browser tab of a session.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string][]*client
	upgrader websocket.Upgrader
	observer ConnectionObserver
	logger   *zap.Logger
}

// NewHub constructs a hub. checkOrigin nil accepts every origin.
func NewHub(checkOrigin OriginChecker, observer ConnectionObserver, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients: make(map[string][]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		observer: observer,
		logger:   logger,
	}
}

// Handle upgrades the request and registers the connection under the
// caller's session id.
func (h *Hub) Handle(c *gin.Context) {
	sessionID := session.Value(c)
	if sessionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrSessionMissing, "session cookie required"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	cl := &client{conn: conn}
	h.register(sessionID, cl)

	go h.keepAlive(sessionID, cl)
	go h.readLoop(sessionID, cl)
}

// Publish sends event to every connection of the session. Connections that
// fail to accept the write are dropped.
func (h *Hub) Publish(sessionID string, event models.SearchEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal search event", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := append([]*client(nil), h.clients[sessionID]...)
	h.mu.RUnlock()

	for _, cl := range targets {
		if err := cl.write(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", zap.String("session_id", sessionID), zap.Error(err))
			h.unregister(sessionID, cl)
		}
	}
}

// Connections returns the number of open connections for a session.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[string][]*client)
	h.mu.Unlock()

	for _, list := range all {
		for _, cl := range list {
			_ = cl.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"))
			_ = cl.conn.Close()
			h.track(-1)
		}
	}
}

func (h *Hub) readLoop(sessionID string, cl *client) {
	defer h.unregister(sessionID, cl)

	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) keepAlive(sessionID string, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if !h.registered(sessionID, cl) {
			return
		}
		if err := cl.write(websocket.PingMessage, nil); err != nil {
			h.unregister(sessionID, cl)
			return
		}
	}
}

func (h *Hub) register(sessionID string, cl *client) {
	h.mu.Lock()
	h.clients[sessionID] = append(h.clients[sessionID], cl)
	total := len(h.clients[sessionID])
	h.mu.Unlock()

	h.track(1)
	h.logger.Debug("websocket connected", zap.String("session_id", sessionID), zap.Int("connections", total))
}

func (h *Hub) unregister(sessionID string, cl *client) {
	h.mu.Lock()
	list := h.clients[sessionID]
	found := false
	for i, existing := range list {
		if existing == cl {
			list = append(list[:i:i], list[i+1:]...)
			found = true
			break
		}
	}
	if len(list) == 0 {
		delete(h.clients, sessionID)
	} else {
		h.clients[sessionID] = list
	}
	h.mu.Unlock()

	if !found {
		return
	}
	_ = cl.conn.Close()
	h.track(-1)
	h.logger.Debug("websocket disconnected", zap.String("session_id", sessionID))
}

func (h *Hub) registered(sessionID string, cl *client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, existing := range h.clients[sessionID] {
		if existing == cl {
			return true
		}
	}
	return false
}

func (h *Hub) track(delta int) {
	if h.observer != nil {
		h.observer.NotificationConnections(delta)
	}
}
