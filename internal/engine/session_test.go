package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

// sessionsAt returns a Sessions engine with a controllable clock.
func sessionsAt(s *store.RoomStore, start time.Time) (*Sessions, *time.Time) {
	now := start
	sess := NewSessions(s)
	sess.now = func() time.Time { return now }
	return sess, &now
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func statusPtr(v model.SessionStatus) *model.SessionStatus { return &v }

func TestUpsertSessionCreatesAndMerges(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	sess, _ := sessionsAt(s, time.Now())

	require.True(t, sess.UpsertSession("r1", "p1", model.SessionUpdate{
		Status:      statusPtr(model.SessionPlaying),
		InPlayRoute: boolPtr(true),
		SocketID:    strPtr("sock-1"),
	}))

	// A partial update only touches the supplied fields.
	require.True(t, sess.UpsertSession("r1", "p1", model.SessionUpdate{
		SocketID: strPtr("sock-2"),
	}))

	room, _ := s.Get("r1")
	record := room.PlayerSessions["p1"]
	require.NotNil(t, record)
	assert.Equal(t, model.SessionPlaying, record.Status)
	assert.True(t, record.InPlayRoute)
	assert.Equal(t, "sock-2", record.SocketID)
}

func TestUpsertSessionUnknownRoom(t *testing.T) {
	s := store.New()
	sess, _ := sessionsAt(s, time.Now())

	assert.False(t, sess.UpsertSession("missing", "p1", model.SessionUpdate{}))
}

func TestIsActiveWithinWindow(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	sess, now := sessionsAt(s, time.Now())

	sess.UpsertSession("r1", "p1", model.SessionUpdate{
		Status:      statusPtr(model.SessionPlaying),
		InPlayRoute: boolPtr(true),
	})

	assert.True(t, sess.IsActive("r1", "p1"))

	*now = now.Add(10 * time.Second)
	assert.True(t, sess.IsActive("r1", "p1"))

	*now = now.Add(40 * time.Second) // 50s total, past the window
	assert.False(t, sess.IsActive("r1", "p1"))
}

func TestIsActiveRequiresInPlayRoute(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	sess, _ := sessionsAt(s, time.Now())

	sess.UpsertSession("r1", "p1", model.SessionUpdate{
		Status:      statusPtr(model.SessionPlaying),
		InPlayRoute: boolPtr(false),
	})

	assert.False(t, sess.IsActive("r1", "p1"))
	assert.False(t, sess.IsActive("r1", "ghost"))
}

func TestSweepExpired(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2", "p3")
	sess, now := sessionsAt(s, time.Now())

	// p1 disconnects, p2 keeps playing, p3 disconnects later.
	sess.UpsertSession("r1", "p1", model.SessionUpdate{Status: statusPtr(model.SessionDisconnected)})
	sess.UpsertSession("r1", "p2", model.SessionUpdate{Status: statusPtr(model.SessionPlaying)})

	*now = now.Add(36 * time.Second)
	sess.UpsertSession("r1", "p3", model.SessionUpdate{Status: statusPtr(model.SessionDisconnected)})

	// 46s after p1 disconnected: only p1 has exceeded the window.
	*now = now.Add(10 * time.Second)
	assert.Equal(t, 1, sess.SweepExpired("r1"))

	room, _ := s.Get("r1")
	assert.NotContains(t, room.PlayerSessions, "p1")
	assert.Contains(t, room.PlayerSessions, "p2")
	assert.Contains(t, room.PlayerSessions, "p3")
}

func TestSweepExpiredSparesStalePlayingSessions(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	sess, now := sessionsAt(s, time.Now())

	sess.UpsertSession("r1", "p1", model.SessionUpdate{Status: statusPtr(model.SessionPlaying)})

	// Old but never marked disconnected: the sweep leaves it alone.
	*now = now.Add(10 * time.Minute)
	assert.Equal(t, 0, sess.SweepExpired("r1"))
}

func TestDisconnectThenReconnectWithinWindow(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	sess, now := sessionsAt(s, time.Now())

	sess.UpsertSession("r1", "p1", model.SessionUpdate{
		Status:      statusPtr(model.SessionPlaying),
		InPlayRoute: boolPtr(true),
	})
	sess.UpsertSession("r1", "p1", model.SessionUpdate{
		Status:      statusPtr(model.SessionDisconnected),
		InPlayRoute: boolPtr(false),
	})

	// Reconnect 30s later, before the sweep fires.
	*now = now.Add(30 * time.Second)
	sess.UpsertSession("r1", "p1", model.SessionUpdate{
		Status:      statusPtr(model.SessionPlaying),
		InPlayRoute: boolPtr(true),
		SocketID:    strPtr("sock-new"),
	})

	assert.True(t, sess.IsActive("r1", "p1"))
	assert.Equal(t, 0, sess.SweepExpired("r1"))
}
