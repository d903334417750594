package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"quizfund/internal/engine"
	"quizfund/internal/model"
	"quizfund/internal/repository"
	"quizfund/internal/service"
	"quizfund/internal/store"
	"quizfund/internal/transport/rest/middleware"
)

// RoomHandler handles live room lifecycle and join endpoints
type RoomHandler struct {
	lifecycle *engine.Lifecycle
	sessions  *engine.Sessions
	store     *store.RoomStore
	authSvc   *service.AuthService
	reconSvc  *service.ReconciliationService
	schedRepo repository.ScheduledRoomRepo
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(
	lifecycle *engine.Lifecycle,
	sessions *engine.Sessions,
	roomStore *store.RoomStore,
	authSvc *service.AuthService,
	reconSvc *service.ReconciliationService,
	schedRepo repository.ScheduledRoomRepo,
) *RoomHandler {
	return &RoomHandler{
		lifecycle: lifecycle,
		sessions:  sessions,
		store:     roomStore,
		authSvc:   authSvc,
		reconSvc:  reconSvc,
		schedRepo: schedRepo,
	}
}

type createRoomRequest struct {
	RoomID          string           `json:"roomId"`
	ScheduledRoomID string           `json:"scheduledRoomId,omitempty"`
	Config          model.RoomConfig `json:"config"`
	Caps            model.RoomCaps   `json:"caps"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RoomID == "" {
		req.RoomID = "room_" + uuid.New().String()[:8]
	}

	// Launching a scheduled room pulls its stored config.
	if req.ScheduledRoomID != "" {
		sched, err := h.schedRepo.GetByID(r.Context(), req.ScheduledRoomID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load scheduled room")
			return
		}
		if sched == nil {
			writeError(w, http.StatusNotFound, "scheduled room not found")
			return
		}
		req.Config = sched.Config
	}

	if !h.lifecycle.CreateRoom(req.RoomID, hostID, req.Config, req.Caps) {
		writeError(w, http.StatusConflict, "room already active or config invalid")
		return
	}

	if req.ScheduledRoomID != "" {
		if err := h.schedRepo.SetStatus(r.Context(), req.ScheduledRoomID, model.ScheduledLaunched); err != nil {
			// Room is live either way; the schedule record catches up later.
			log.Printf("room %s: failed to mark scheduled room %s launched: %v", req.RoomID, req.ScheduledRoomID, err)
		}
	}

	room, _ := h.store.Get(req.RoomID)
	if room != nil {
		h.reconSvc.MirrorState(r.Context(), room)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"roomId": req.RoomID})
}

// List handles GET /v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.lifecycle.ListRooms())
}

// Get handles GET /v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	// Marshal under the room lock so concurrent mutation never races
	// the encoder.
	var body []byte
	ok := h.store.WithRoom(roomID, func(room *model.Room) {
		body, _ = json.Marshal(room)
	})
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Delete handles DELETE /v1/rooms/{id}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	if !h.lifecycle.RemoveRoom(roomID) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	h.reconSvc.DropMirrors(r.Context(), roomID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Status handles GET /v1/rooms/{id}/status (public). Served from the
// Redis mirror, so it works even on a node that does not own the room.
func (h *RoomHandler) Status(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	meta, err := h.reconSvc.RoomState(r.Context(), roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read room state")
		return
	}
	if meta == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

type joinRoomRequest struct {
	PlayerID      string          `json:"playerId,omitempty"`
	Name          string          `json:"name"`
	Extras        []model.ExtraID `json:"extras,omitempty"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Paid          bool            `json:"paid"`
}

type joinRoomResponse struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
	Token    string `json:"token"`
}

// Join handles POST /v1/rooms/{id}/join (public)
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if _, ok := h.store.Get(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	// A player with a live in-play session cannot join again; within
	// the reconnection window the existing seat is still theirs.
	if req.PlayerID != "" && h.sessions.IsActive(roomID, req.PlayerID) {
		writeError(w, http.StatusConflict, "player already has an active session")
		return
	}

	playerID := req.PlayerID
	if playerID == "" {
		playerID = "p_" + uuid.New().String()[:8]
	}

	accepted := h.lifecycle.UpsertPlayer(roomID, model.Player{
		ID:            playerID,
		Name:          req.Name,
		Extras:        req.Extras,
		PaymentMethod: req.PaymentMethod,
		Paid:          req.Paid,
	})
	if !accepted {
		writeError(w, http.StatusConflict, "room is full")
		return
	}

	token, err := h.authSvc.GeneratePlayerToken(roomID, playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	playing := model.SessionPlaying
	inPlay := true
	h.sessions.UpsertSession(roomID, playerID, model.SessionUpdate{
		Status:      &playing,
		InPlayRoute: &inPlay,
	})

	if room, ok := h.store.Get(roomID); ok {
		h.reconSvc.MirrorState(r.Context(), room)
	}

	writeJSON(w, http.StatusOK, joinRoomResponse{
		PlayerID: playerID,
		RoomID:   roomID,
		Token:    token,
	})
}
