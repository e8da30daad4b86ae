package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nfvsec/nmtd/internal/core/domain"
	"github.com/nfvsec/nmtd/internal/core/ports"
	"github.com/nfvsec/nmtd/internal/core/services/scheduler"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Operator clients connect from the side-car's own origin or from
		// tooling without an Origin header.
		return true
	},
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager fans activity events and schedule snapshots out to connected
// operator clients. It implements ports.EventNotifier.
type WSManager struct {
	Clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	snapshot func() []scheduler.ScheduledMutation
}

func NewWSManager(snapshot func() []scheduler.ScheduledMutation) *WSManager {
	return &WSManager{
		Clients:  make(map[*websocket.Conn]struct{}),
		snapshot: snapshot,
	}
}

var _ ports.EventNotifier = (*WSManager)(nil)

func (m *WSManager) Start(ctx context.Context) {
	go m.broadcastSchedules(ctx)
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = struct{}{}
	m.mu.Unlock()

	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.Clients, conn)
			m.mu.Unlock()
			log.Printf("WebSocket disconnected: %s", r.RemoteAddr)
		}()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

// Notify broadcasts one activity event. It never blocks the caller.
func (m *WSManager) Notify(event domain.Event) {
	go m.broadcastMessage(WSMessage{Type: "event", Payload: event})
}

func (m *WSManager) broadcastSchedules(ctx context.Context) {
	if m.snapshot == nil {
		return
	}
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.broadcastMessage(WSMessage{Type: "schedules", Payload: m.snapshot()})
		}
	}
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}
