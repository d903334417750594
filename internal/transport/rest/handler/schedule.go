package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"quizfund/internal/model"
	"quizfund/internal/repository"
	"quizfund/internal/transport/rest/middleware"
)

// ScheduleHandler handles scheduled fundraising event CRUD
type ScheduleHandler struct {
	schedRepo repository.ScheduledRoomRepo
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedRepo repository.ScheduledRoomRepo) *ScheduleHandler {
	return &ScheduleHandler{schedRepo: schedRepo}
}

type createScheduleRequest struct {
	Title       string           `json:"title"`
	CharityName string           `json:"charityName"`
	ScheduledAt time.Time        `json:"scheduledAt"`
	Config      model.RoomConfig `json:"config"`
}

// Create handles POST /v1/schedule
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Config.RoundDefinitions) == 0 {
		writeError(w, http.StatusBadRequest, "config must include at least one round")
		return
	}

	room := &model.ScheduledRoom{
		HostID:      hostID,
		Title:       req.Title,
		CharityName: req.CharityName,
		ScheduledAt: req.ScheduledAt,
		Config:      req.Config,
	}
	if err := h.schedRepo.Create(r.Context(), room); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create scheduled room")
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// List handles GET /v1/schedule (the calling host's events)
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	rooms, err := h.schedRepo.ListByHost(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list scheduled rooms")
		return
	}
	if rooms == nil {
		rooms = []*model.ScheduledRoom{}
	}

	writeJSON(w, http.StatusOK, rooms)
}

// Upcoming handles GET /v1/schedule/upcoming (public listing)
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.schedRepo.ListUpcoming(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list upcoming rooms")
		return
	}
	if rooms == nil {
		rooms = []*model.ScheduledRoom{}
	}

	writeJSON(w, http.StatusOK, rooms)
}

// Get handles GET /v1/schedule/{scheduleId}
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["scheduleId"]

	room, err := h.schedRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scheduled room")
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "scheduled room not found")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Cancel handles POST /v1/schedule/{scheduleId}/cancel
func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["scheduleId"]

	room, err := h.schedRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scheduled room")
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "scheduled room not found")
		return
	}
	if room.HostID != middleware.GetHostID(r.Context()) {
		writeError(w, http.StatusForbidden, "scheduled room belongs to another host")
		return
	}

	if err := h.schedRepo.SetStatus(r.Context(), id, model.ScheduledCancelled); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cancel scheduled room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Delete handles DELETE /v1/schedule/{scheduleId}
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["scheduleId"]

	room, err := h.schedRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scheduled room")
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "scheduled room not found")
		return
	}
	if room.HostID != middleware.GetHostID(r.Context()) {
		writeError(w, http.StatusForbidden, "scheduled room belongs to another host")
		return
	}

	if err := h.schedRepo.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete scheduled room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
