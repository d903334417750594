package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// EventType defines the type of WebSocket message
type EventType string

// Host events
const (
	EvtPlayerJoined      EventType = "playerJoined"
	EvtPlayerLeft        EventType = "playerLeft"
	EvtExtraUsed         EventType = "extraUsed"
	EvtLeaderboardUpdate EventType = "leaderboardUpdate"
)

// Player events
const (
	EvtQuestion       EventType = "question"
	EvtRoundStarted   EventType = "roundStarted"
	EvtClueRevealed   EventType = "clueRevealed"
	EvtQuizComplete   EventType = "quizComplete"
	EvtGlobalExtra    EventType = "globalExtraUsed"
	EvtErrorOccurred  EventType = "error"
	EvtSessionExpired EventType = "sessionExpired"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for rooms. It implements
// engine.Notifier: delivery is best-effort, and a stale or missing
// connection means the message is dropped, never an error.
type Hub struct {
	// Room -> connections
	hostConns   map[string]*Connection
	playerConns map[string]map[string]*Connection // roomID -> playerID -> conn

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a WebSocket connection. SocketID is the
// opaque transport handle stored on the player roster entry.
type Connection struct {
	RoomID   string
	PlayerID string // Empty for host connections
	SocketID string
	IsHost   bool
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	RoomID   string
	ToHost   bool
	ToPlayer string // Empty means all players, specific ID means one player
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		hostConns:   make(map[string]*Connection),
		playerConns: make(map[string]map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				h.hostConns[conn.RoomID] = conn
				log.Printf("Host connected to room %s", conn.RoomID)
			} else {
				if h.playerConns[conn.RoomID] == nil {
					h.playerConns[conn.RoomID] = make(map[string]*Connection)
				}
				h.playerConns[conn.RoomID][conn.PlayerID] = conn
				log.Printf("Player %s connected to room %s", conn.PlayerID, conn.RoomID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.RoomID]; ok && existing == conn {
					delete(h.hostConns, conn.RoomID)
					close(conn.Send)
					log.Printf("Host disconnected from room %s", conn.RoomID)
				}
			} else {
				if players, ok := h.playerConns[conn.RoomID]; ok {
					if existing, ok := players[conn.PlayerID]; ok && existing == conn {
						delete(players, conn.PlayerID)
						close(conn.Send)
						log.Printf("Player %s disconnected from room %s", conn.PlayerID, conn.RoomID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToHost {
				if conn, ok := h.hostConns[msg.RoomID]; ok {
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
					}
				}
			} else if msg.ToPlayer != "" {
				// Send to specific player
				if players, ok := h.playerConns[msg.RoomID]; ok {
					if conn, ok := players[msg.ToPlayer]; ok {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			} else {
				// Broadcast to all players
				if players, ok := h.playerConns[msg.RoomID]; ok {
					for _, conn := range players {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToHost sends a message to the room host (implements engine.Notifier)
func (h *Hub) BroadcastToHost(roomID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomID: roomID,
		ToHost: true,
		Message: &Message{
			Type:    EventType(event),
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends a message to a specific player (implements engine.Notifier)
func (h *Hub) BroadcastToPlayer(roomID, playerID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomID:   roomID,
		ToPlayer: playerID,
		Message: &Message{
			Type:    EventType(event),
			Payload: data,
		},
	}
}

// BroadcastToAllPlayers sends a message to all players in a room (implements engine.Notifier)
func (h *Hub) BroadcastToAllPlayers(roomID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		RoomID:   roomID,
		ToPlayer: "", // Empty means all
		Message: &Message{
			Type:    EventType(event),
			Payload: data,
		},
	}
}
