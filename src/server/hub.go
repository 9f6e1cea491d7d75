package server

import (
	"net/http"

	"imbalance-screener/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. The clients map is shared with the
// health handler, so every mutation happens under stateMutex.
func (s *WebServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			return

		case client := <-s.register:
			s.stateMutex.Lock()
			s.clients[client] = struct{}{}
			// Latest snapshot on connect so the page renders without
			// waiting for the next tick.
			latest := s.latestState
			s.stateMutex.Unlock()
			if latest != nil {
				client.send <- latest
			}

		case client := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.stateMutex.Unlock()

		case snapshot := <-s.broadcast:
			s.stateMutex.Lock()
			s.latestState = snapshot
			for client := range s.clients {
				select {
				case client.send <- snapshot:
				default:
					// Client too slow, disconnect to keep the Hub moving
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.stateMutex.Unlock()

			s.recentTicks.Push(snapshot)
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a scan snapshot for state update and fan-out. After Stop
// the snapshot is dropped instead of blocking the caller.
func (s *WebServer) Broadcast(snapshot *models.MScanSnapshot) {
	if snapshot == nil {
		return
	}
	select {
	case s.broadcast <- snapshot:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

// dropClient hands a disconnected client back to the Hub. After Stop nobody
// drains the unregister channel, so the send must not block.
func (s *WebServer) dropClient(client *Client) {
	select {
	case s.unregister <- client:
	case <-s.done:
	}
}

// -----------------------------------------------------------------------------

// RecentTicks exposes the in-memory ring of recent snapshots.
func (s *WebServer) RecentTicks(limit int) []*models.MScanSnapshot {
	return s.recentTicks.Recent(limit)
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

func (s *WebServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MScanSnapshot, 64),
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
