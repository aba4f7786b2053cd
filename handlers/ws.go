package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"taskquest/models"
)

// WSHub pushes task change events to connected WebSocket clients.
// Wire BroadcastTaskEvent with store.Subscribe.
type WSHub struct {
	connections map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[*websocket.Conn]bool)}
}

func (h *WSHub) BroadcastTaskEvent(ev models.TaskEvent) {
	message, err := json.Marshal(map[string]any{
		"event":      "task_updated",
		"task_id":    ev.TaskID,
		"old_status": ev.OldStatus,
		"new_status": ev.NewStatus,
		"timestamp":  ev.Timestamp,
	})
	if err != nil {
		log.Printf("Failed to marshal task event: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(h.connections, conn)
			conn.Close()
		}
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.RateLimiter != nil && !h.RateLimiter.Allow(r.RemoteAddr) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}
	if userID(r.Context()) == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Adjust for production (e.g., check specific origins)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.WSHub.mutex.Lock()
	h.WSHub.connections[conn] = true
	h.WSHub.mutex.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.mutex.Lock()
			delete(h.WSHub.connections, conn)
			h.WSHub.mutex.Unlock()
			conn.Close()
			return
		}
	}
}
