package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"econ-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub owns the client set until Stop is called.
func (s *DashboardServer) runHub() {
	for {
		select {
		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client] = struct{}{}
			s.clientsMu.Unlock()
			client.trySend(models.MEvent{Type: models.EventConnected, Timestamp: time.Now().Unix()})

		case client := <-s.unregister:
			s.drop(client)

		case msg := <-s.reply:
			s.clientsMu.RLock()
			_, ok := s.clients[msg.client]
			s.clientsMu.RUnlock()
			if ok && !msg.client.trySend(msg.event) {
				s.drop(msg.client)
			}

		case event := <-s.broadcast:
			s.clientsMu.RLock()
			var slow []*Client
			for client := range s.clients {
				if !client.wants(event) {
					continue
				}
				if !client.trySend(event) {
					// Client too slow, disconnect to keep the hub moving
					slow = append(slow, client)
				}
			}
			s.clientsMu.RUnlock()
			for _, client := range slow {
				s.drop(client)
			}

		case <-s.done:
			s.clientsMu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) drop(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
}

// -----------------------------------------------------------------------------
// Event Broadcaster Implementation
// -----------------------------------------------------------------------------

// Broadcast queues an event for every subscribed client. Events are dropped
// when the queue is full or the server is stopped.
func (s *DashboardServer) Broadcast(event models.MEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.broadcast <- event:
	default:
		s.Logger.Warning("Event queue full, dropping %s for %s", event.Type, event.SeriesID)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MEvent, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage applies a subscribe or ping command. A malformed
// message disconnects the client.
func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	now := time.Now().Unix()
	switch cmd.Command {
	case "subscribe":
		client.subscribe(cmd.Indicators)
		s.replyTo(client, models.MEvent{Type: models.EventSubscribed, Timestamp: now})
	case "ping":
		s.replyTo(client, models.MEvent{Type: models.EventPong, Timestamp: now})
	default:
		s.Logger.Debug("Ignoring client command %q", cmd.Command)
	}
}

// -----------------------------------------------------------------------------

type directMessage struct {
	client *Client
	event  models.MEvent
}

func (s *DashboardServer) replyTo(client *Client, event models.MEvent) {
	select {
	case s.reply <- directMessage{client: client, event: event}:
	case <-s.done:
	}
}
