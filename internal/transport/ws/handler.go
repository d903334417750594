package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quizfund/internal/engine"
	"quizfund/internal/model"
	"quizfund/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections. Both endpoints sit behind the
// REST auth middleware, which accepts the query-param token a browser
// upgrade request carries and puts the identity on the context. A
// player connection doubles as a session heartbeat: connecting marks
// the session playing and refreshes the transport handle; disconnecting
// marks it disconnected, which starts the reconnection window.
type Handler struct {
	hub       *Hub
	lifecycle *engine.Lifecycle
	sessions  *engine.Sessions
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, lifecycle *engine.Lifecycle, sessions *engine.Sessions) *Handler {
	return &Handler{
		hub:       hub,
		lifecycle: lifecycle,
		sessions:  sessions,
	}
}

// HostWS handles GET /v1/ws/rooms/{id}/host
func (h *Handler) HostWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	hostID := middleware.GetHostID(r.Context())

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomID:   roomID,
		SocketID: uuid.New().String(),
		IsHost:   true,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)
	h.lifecycle.UpdateHostSocket(roomID, conn.SocketID)

	log.Printf("Host %s connected to room %s via WebSocket", hostID, roomID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// PlayerWS handles GET /v1/ws/rooms/{id}/player
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomID(r.Context()) != roomID {
		http.Error(w, "token not valid for this room", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		RoomID:   roomID,
		PlayerID: playerID,
		SocketID: uuid.New().String(),
		IsHost:   false,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)
	h.lifecycle.UpdatePlayerSocket(roomID, playerID, conn.SocketID)

	playing := model.SessionPlaying
	inPlay := true
	h.sessions.UpsertSession(roomID, playerID, model.SessionUpdate{
		Status:      &playing,
		InPlayRoute: &inPlay,
		SocketID:    &conn.SocketID,
	})

	log.Printf("Player %s connected to room %s via WebSocket", playerID, roomID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
		if !conn.IsHost {
			disconnected := model.SessionDisconnected
			inPlay := false
			h.sessions.UpsertSession(conn.RoomID, conn.PlayerID, model.SessionUpdate{
				Status:      &disconnected,
				InPlayRoute: &inPlay,
			})
		}
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// Inbound frames only keep the connection alive; game actions
		// arrive over REST.
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
