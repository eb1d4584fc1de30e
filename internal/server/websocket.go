package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// The embedded players post progress from third-party origins, so the
// upgrader accepts any origin. The payloads themselves are treated as
// untrusted and go through the progress decoder.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is an outbound message to a connected page.
type Event struct {
	Type      string      `json:"type"` // refresh, toast, status
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient represents one connected WebSocket client.
type wsClient struct {
	conn   *websocket.Conn
	send   chan Event
	server *Server
	logger *slog.Logger

	mu     sync.Mutex // guards closed and the close of send
	closed bool
}

// handleWebSocket upgrades the connection and starts the read/write
// pumps. Inbound text frames are the untrusted player progress
// channel; outbound events tell pages to refresh their
// continue-watching view or show a toast.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan Event, 256),
		server: s,
		logger: s.logger,
	}

	s.logger.Info("WebSocket client connected", "remote_addr", r.RemoteAddr)
	s.registerWSClient(client)

	go client.writePump()
	go client.readPump()

	client.sendEvent(Event{
		Type:    "status",
		Message: "connected",
	})
}

func (s *Server) registerWSClient(client *wsClient) {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	s.wsClients[client] = struct{}{}
}

func (s *Server) unregisterWSClient(client *wsClient) {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	delete(s.wsClients, client)
}

// writePump sends queued events and keeps the connection alive with
// pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.server.unregisterWSClient(c)
		c.logger.Debug("WebSocket write pump stopped")
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Error("WebSocket write error", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error("WebSocket ping error", "error", err)
				return
			}
		}
	}
}

// readPump feeds inbound text frames into the progress listener.
// Malformed frames are tolerated; the channel is best-effort.
func (c *wsClient) readPump() {
	defer func() {
		c.conn.Close()
		c.shutdown()
		c.logger.Debug("WebSocket read pump stopped")
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", "error", err)
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			c.server.listener.HandleMessage(message)
		case websocket.BinaryMessage:
			c.logger.Warn("Binary messages not supported")
		}

		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// sendEvent queues an event for this client, dropping it when the
// client is too slow to drain its channel. Once the client has shut
// down the event is discarded; the send never races the channel close.
func (c *wsClient) sendEvent(event Event) {
	event.Timestamp = time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- event:
	default:
		c.logger.Warn("Dropping WebSocket event - client channel full", "type", event.Type)
	}
}

// shutdown unregisters the client and closes its send channel. The
// unregister happens first so a concurrent Broadcast either completes
// before the close or finds the closed flag set. Safe to call twice.
func (c *wsClient) shutdown() {
	c.server.unregisterWSClient(c)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Broadcast sends an event to every connected client.
func (s *Server) Broadcast(event Event) {
	s.wsMutex.RLock()
	clients := make([]*wsClient, 0, len(s.wsClients))
	for client := range s.wsClients {
		clients = append(clients, client)
	}
	s.wsMutex.RUnlock()

	s.logger.Debug("Broadcasting event",
		"type", event.Type,
		"client_count", len(clients))

	for _, client := range clients {
		client.sendEvent(event)
	}
}

// broadcastRefresh tells every page to re-fetch the continue-watching
// view. Fired when a player reports a terminal "ended" event and
// after a state import.
func (s *Server) broadcastRefresh() {
	s.Broadcast(Event{
		Type:    "refresh",
		Message: "continue-watching changed",
	})
}
