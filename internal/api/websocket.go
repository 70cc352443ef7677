package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"flagstat/internal/session"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("[WS] connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection, its source IP, and the session
// it is subscribed to.
type wsClient struct {
	conn      *websocket.Conn
	ip        string
	sessionID string
}

// wsMessage is a payload addressed to one session's subscribers.
type wsMessage struct {
	sessionID string
	payload   []byte
}

// WebSocketHub fans live scoreboard snapshots out to subscribers. Each
// connection watches exactly one session.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan wsMessage
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	// Connection limiting per IP
	wsLimiter *WebSocketRateLimiter
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan wsMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
	}
}

// Run starts the hub
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()

			count := h.ClientCount()
			log.Printf("[WS] client connected from %s watching session %s (%d total)", client.ip, client.sessionID, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

			count := h.ClientCount()
			log.Printf("[WS] client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case msg := <-h.broadcast:
			var dead []*websocket.Conn
			h.mu.RLock()
			for conn, client := range h.clients {
				if client.sessionID != msg.sessionID {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg.payload); err != nil {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()

			if len(dead) > 0 {
				h.mu.Lock()
				for _, conn := range dead {
					if client, ok := h.clients[conn]; ok {
						h.wsLimiter.Release(client.ip)
						delete(h.clients, conn)
						conn.Close()
					}
				}
				h.mu.Unlock()
			}
			IncrementWSMessages()
		}
	}
}

// BroadcastSnapshot pushes a session snapshot to that session's subscribers.
func (h *WebSocketHub) BroadcastSnapshot(snap session.Snapshot) {
	msg := map[string]interface{}{
		"event": "session:state",
		"data":  snap,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- wsMessage{sessionID: snap.ID, payload: jsonBytes}:
	default:
		// Channel full, skip (backpressure)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// watchedSessions returns the distinct session ids with at least one subscriber.
func (h *WebSocketHub) watchedSessions() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	watched := make(map[string]bool, len(h.clients))
	for _, client := range h.clients {
		watched[client.sessionID] = true
	}
	return watched
}

// StartBroadcastLoop pushes a snapshot of every watched session once a
// second. The game clock only ticks once a second, so a 1 Hz cadence keeps
// scoreboard displays current without flooding slow clients. Action-driven
// updates arrive sooner through BroadcastSnapshot.
func (h *WebSocketHub) StartBroadcastLoop(manager ManagerInterface) {
	ticker := time.NewTicker(time.Second)

	go func() {
		for range ticker.C {
			watched := h.watchedSessions()
			if len(watched) == 0 {
				continue
			}

			for _, snap := range manager.Snapshots() {
				if watched[snap.ID] {
					h.BroadcastSnapshot(snap)
				}
			}
		}
	}()
}

// HandleWebSocket upgrades GET /ws/{sessionID} requests into scoreboard
// subscriptions, with connection limits per IP and in total.
func (h *WebSocketHub) HandleWebSocket(manager ManagerInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		s, err := manager.Get(sessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		ip := GetClientIP(r)

		if h.ClientCount() >= MaxWSConnectionsTotal {
			log.Printf("[WS] connection rejected: total limit reached")
			RecordConnectionRejected("ws_total_limit")
			http.Error(w, "Too many connections", http.StatusServiceUnavailable)
			return
		}

		if !h.wsLimiter.Allow(ip) {
			log.Printf("[WS] connection rejected from %s: per-IP limit reached", ip)
			RecordConnectionRejected("ws_ip_limit")
			http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WS] upgrade error: %v", err)
			h.wsLimiter.Release(ip)
			return
		}

		client := &wsClient{conn: conn, ip: ip, sessionID: sessionID}
		h.register <- client

		// Send the current state immediately so the scoreboard is never
		// blank while waiting for the next tick.
		if initial, err := json.Marshal(map[string]interface{}{
			"event": "session:state",
			"data":  s.Snapshot(),
		}); err == nil {
			conn.WriteMessage(websocket.TextMessage, initial)
		}

		// Drain reads so pings and close frames are processed. Clients
		// do not send commands over this socket.
		go func() {
			defer func() {
				h.unregister <- conn
			}()

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}
