package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

func TestFreezeSortsDescendingWithStableTies(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2", "p3", "p4")
	setScore(s, "r1", "p1", 10)
	setScore(s, "r1", "p2", 30)
	setScore(s, "r1", "p3", 30)
	setScore(s, "r1", "p4", 5)

	entries := NewFinalizer(s).Freeze("r1")
	require.Len(t, entries, 4)

	assert.Equal(t, []int{30, 30, 10, 5}, []int{entries[0].Score, entries[1].Score, entries[2].Score, entries[3].Score})
	// Tied players keep roster order.
	assert.Equal(t, "p2", entries[0].ID)
	assert.Equal(t, "p3", entries[1].ID)
}

func TestFreezeMarksRoomComplete(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")

	NewFinalizer(s).Freeze("r1")

	room, _ := s.Get("r1")
	require.NotNil(t, room.CompletedAt)
	assert.Equal(t, model.PhaseComplete, room.CurrentPhase)
	assert.Len(t, room.Config.Reconciliation.FinalLeaderboard, 1)
}

func TestFreezeIsIdempotent(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	setScore(s, "r1", "p1", 100)

	f := NewFinalizer(s)
	first := f.Freeze("r1")

	var completedAt time.Time
	s.WithRoom("r1", func(room *model.Room) {
		completedAt = *room.CompletedAt
	})

	// Late score mutations must not leak into a re-freeze.
	setScore(s, "r1", "p2", 999)

	second := f.Freeze("r1")
	assert.Equal(t, first, second)

	s.WithRoom("r1", func(room *model.Room) {
		assert.Equal(t, completedAt, *room.CompletedAt)
	})
}

func TestFreezeUnknownRoom(t *testing.T) {
	s := store.New()
	assert.Nil(t, NewFinalizer(s).Freeze("missing"))
}

func TestFreezeCarriesAuditCounters(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	s.WithRoom("r1", func(room *model.Room) {
		state := room.PlayerData["p1"]
		state.Score = 80
		state.CumulativeNegativePoints = 120
		state.PointsRestored = 50
	})

	entries := NewFinalizer(s).Freeze("r1")
	require.Len(t, entries, 1)
	assert.Equal(t, 80, entries[0].Score)
	assert.Equal(t, 120, entries[0].CumulativeNegativePoints)
	assert.Equal(t, 50, entries[0].PointsRestored)
}

func TestIsComplete(t *testing.T) {
	s := store.New()
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")

	f := NewFinalizer(s)
	assert.False(t, f.IsComplete("r1"))

	f.Freeze("r1")
	assert.True(t, f.IsComplete("r1"))
	assert.False(t, f.IsComplete("missing"))
}
