package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"quizfund/internal/engine"
	"quizfund/internal/model"
	"quizfund/internal/service"
	"quizfund/internal/store"
	"quizfund/internal/transport/rest/middleware"
)

// GameHandler handles in-quiz host and player actions: question and
// round advancement, answers, extras, liveness and finalization.
type GameHandler struct {
	lifecycle *engine.Lifecycle
	extras    *engine.Extras
	sessions  *engine.Sessions
	finalizer *engine.Finalizer
	reconSvc  *service.ReconciliationService
	store     *store.RoomStore
	notifier  engine.Notifier
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	lifecycle *engine.Lifecycle,
	extras *engine.Extras,
	sessions *engine.Sessions,
	finalizer *engine.Finalizer,
	reconSvc *service.ReconciliationService,
	roomStore *store.RoomStore,
	notifier engine.Notifier,
) *GameHandler {
	return &GameHandler{
		lifecycle: lifecycle,
		extras:    extras,
		sessions:  sessions,
		finalizer: finalizer,
		reconSvc:  reconSvc,
		store:     roomStore,
		notifier:  notifier,
	}
}

// AssignQuestions handles POST /v1/rooms/{id}/questions/assign
func (h *GameHandler) AssignQuestions(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	if _, ok := h.store.Get(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	questions := h.lifecycle.AssignQuestions(roomID)
	if len(questions) == 0 {
		writeError(w, http.StatusConflict, "no unused questions available for this round")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(questions),
		"questions": questions,
	})
}

// NextQuestion handles POST /v1/rooms/{id}/questions/next
func (h *GameHandler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	if _, ok := h.store.Get(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	question := h.lifecycle.AdvanceQuestion(roomID)
	if question == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"endOfRound": true,
		})
		return
	}

	if room, ok := h.store.Get(roomID); ok {
		h.reconSvc.MirrorState(r.Context(), room)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"endOfRound": h.lifecycle.IsEndOfRound(roomID),
		"question":   question,
	})
}

// NextRound handles POST /v1/rooms/{id}/rounds/next
func (h *GameHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	if _, ok := h.store.Get(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	if !h.lifecycle.StartNextRound(roomID) {
		writeError(w, http.StatusConflict, "no further round in the plan")
		return
	}
	h.extras.ResetRoundExtrasTracking(roomID)

	if room, ok := h.store.Get(roomID); ok {
		h.reconSvc.MirrorState(r.Context(), room)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "roundStarted"})
}

type submitAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
}

// SubmitAnswer handles POST /v1/rooms/{id}/answers (player)
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomID(r.Context()) != roomID {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return
	}

	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionID == "" {
		writeError(w, http.StatusBadRequest, "questionId is required")
		return
	}

	if !h.lifecycle.SubmitAnswer(roomID, playerID, req.QuestionID, req.Answer, req.Correct, req.Points) {
		writeError(w, http.StatusConflict, "answer already recorded or player unknown")
		return
	}

	score := 0
	h.store.WithRoom(roomID, func(room *model.Room) {
		if state, ok := room.PlayerData[playerID]; ok {
			score = state.Score
		}
	})
	h.reconSvc.SyncScore(r.Context(), roomID, playerID, score)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accepted": true,
		"score":    score,
	})
}

type useExtraRequest struct {
	ExtraID        model.ExtraID `json:"extraId"`
	TargetPlayerID string        `json:"targetPlayerId,omitempty"`
}

// UseExtra handles POST /v1/rooms/{id}/extras (player)
func (h *GameHandler) UseExtra(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomID(r.Context()) != roomID {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return
	}

	var req useExtraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.extras.HandleExtra(roomID, playerID, req.ExtraID, req.TargetPlayerID)
	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}

	// Point-moving extras change two scores; resync both mirrors.
	h.syncScores(r, roomID, playerID, req.TargetPlayerID)

	writeJSON(w, http.StatusOK, result)
}

func (h *GameHandler) syncScores(r *http.Request, roomID string, playerIDs ...string) {
	for _, id := range playerIDs {
		if id == "" {
			continue
		}
		score := -1
		found := false
		h.store.WithRoom(roomID, func(room *model.Room) {
			if state, ok := room.PlayerData[id]; ok {
				score = state.Score
				found = true
			}
		})
		if found {
			h.reconSvc.SyncScore(r.Context(), roomID, id, score)
		}
	}
}

// Leaderboard handles GET /v1/rooms/{id}/leaderboard. Live standings
// come straight from the authoritative store; once the room is frozen
// the stored snapshot is served instead.
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	var (
		entries  []model.FinalLeaderboardEntry
		frozen   bool
		roomSeen bool
	)
	h.store.WithRoom(roomID, func(room *model.Room) {
		roomSeen = true
		if room.CompletedAt != nil {
			frozen = true
			entries = room.Config.Reconciliation.FinalLeaderboard
			return
		}
		entries = make([]model.FinalLeaderboardEntry, 0, len(room.Players))
		for _, p := range room.Players {
			entry := model.FinalLeaderboardEntry{ID: p.ID, Name: p.Name}
			if state, ok := room.PlayerData[p.ID]; ok {
				entry.Score = state.Score
				entry.CumulativeNegativePoints = state.CumulativeNegativePoints
				entry.PointsRestored = state.PointsRestored
			}
			entries = append(entries, entry)
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Score > entries[j].Score
		})
	})
	if !roomSeen {
		// The room may have been torn down after completion; the frozen
		// mirror outlives it.
		snapshot, err := h.reconSvc.FrozenSnapshot(r.Context(), roomID)
		if err != nil || snapshot == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		frozen = true
		entries = snapshot
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frozen":      frozen,
		"leaderboard": entries,
	})
}

// LiveLeaderboard handles GET /v1/rooms/{id}/leaderboard/live, served
// from the Redis ZSET mirror.
func (h *GameHandler) LiveLeaderboard(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	entries, err := h.reconSvc.LiveTop(r.Context(), roomID, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read live leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

// Rank handles GET /v1/rooms/{id}/rank (player): the caller's live rank
// from the mirror, -1 when no score is recorded yet.
func (h *GameHandler) Rank(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomID(r.Context()) != roomID {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return
	}

	rank, err := h.reconSvc.PlayerRank(r.Context(), roomID, playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read rank")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"rank": rank})
}

// Complete handles POST /v1/rooms/{id}/complete. Freezing is
// idempotent: re-running returns the stored snapshot and re-upserts the
// same reconciliation record.
func (h *GameHandler) Complete(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	entries := h.finalizer.Freeze(roomID)
	if entries == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	room, ok := h.store.Get(roomID)
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	record, err := h.reconSvc.Finalize(r.Context(), room, entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to persist reconciliation record")
		return
	}

	if h.notifier != nil {
		h.notifier.BroadcastToAllPlayers(roomID, "quizComplete", map[string]interface{}{
			"leaderboard": entries,
		})
	}

	writeJSON(w, http.StatusOK, record)
}

// ListReconciliations handles GET /v1/reconciliation: every settled
// quiz for the calling host, newest first.
func (h *GameHandler) ListReconciliations(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())

	records, err := h.reconSvc.ListRecords(r.Context(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reconciliation records")
		return
	}
	if records == nil {
		records = []*model.ReconciliationRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

// Reconciliation handles GET /v1/rooms/{id}/reconciliation
func (h *GameHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	record, err := h.reconSvc.GetRecord(r.Context(), roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load reconciliation record")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "no reconciliation record for room")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Heartbeat handles POST /v1/rooms/{id}/session/heartbeat (player).
// Keeps the session inside the reconnection window between WebSocket
// reconnects.
func (h *GameHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]
	playerID := middleware.GetPlayerID(r.Context())

	if middleware.GetRoomID(r.Context()) != roomID {
		writeError(w, http.StatusForbidden, "token not valid for this room")
		return
	}

	playing := model.SessionPlaying
	inPlay := true
	if !h.sessions.UpsertSession(roomID, playerID, model.SessionUpdate{
		Status:      &playing,
		InPlayRoute: &inPlay,
	}) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SweepSessions handles POST /v1/rooms/{id}/sessions/sweep (host)
func (h *GameHandler) SweepSessions(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	if _, ok := h.store.Get(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	purged := h.sessions.SweepExpired(roomID)
	writeJSON(w, http.StatusOK, map[string]int{"purged": purged})
}
