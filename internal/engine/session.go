package engine

import (
	"time"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

// ReconnectWindow is how long a disconnected session survives before
// the sweep purges it. Within the window the player may rejoin and
// keep their paid seat.
const ReconnectWindow = 45 * time.Second

// Sessions tracks per-player liveness independently of game logic.
// The clock is injected so expiry behavior is testable.
type Sessions struct {
	store *store.RoomStore
	now   func() time.Time
}

func NewSessions(s *store.RoomStore) *Sessions {
	return &Sessions{store: s, now: time.Now}
}

// UpsertSession merges the non-nil fields of update into the player's
// session record, creating it if needed, and stamps LastActive.
func (t *Sessions) UpsertSession(roomID, playerID string, update model.SessionUpdate) bool {
	return t.store.WithRoom(roomID, func(room *model.Room) {
		session, ok := room.PlayerSessions[playerID]
		if !ok {
			session = &model.PlayerSession{Status: model.SessionPlaying}
			room.PlayerSessions[playerID] = session
		}
		if update.Status != nil {
			session.Status = *update.Status
		}
		if update.InPlayRoute != nil {
			session.InPlayRoute = *update.InPlayRoute
		}
		if update.SocketID != nil {
			session.SocketID = *update.SocketID
		}
		session.LastActive = t.now()
	})
}

// IsActive reports whether the player has a live in-play session
// within the reconnection window. Used to suppress duplicate joins.
func (t *Sessions) IsActive(roomID, playerID string) bool {
	active := false
	t.store.WithRoom(roomID, func(room *model.Room) {
		session, ok := room.PlayerSessions[playerID]
		if !ok {
			return
		}
		active = session.Status == model.SessionPlaying &&
			session.InPlayRoute &&
			t.now().Sub(session.LastActive) < ReconnectWindow
	})
	return active
}

// SweepExpired purges sessions that disconnected longer ago than the
// reconnection window. Stale sessions that are not marked disconnected
// are left alone: they may still reconnect. Returns the purge count.
func (t *Sessions) SweepExpired(roomID string) int {
	purged := 0
	t.store.WithRoom(roomID, func(room *model.Room) {
		for playerID, session := range room.PlayerSessions {
			if session.Status == model.SessionDisconnected &&
				t.now().Sub(session.LastActive) > ReconnectWindow {
				delete(room.PlayerSessions, playerID)
				purged++
			}
		}
	})
	return purged
}
