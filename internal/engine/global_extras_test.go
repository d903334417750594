package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

func newGlobalEngine(t *testing.T) (*GlobalExtras, *store.RoomStore, *fakeNotifier) {
	t.Helper()
	s := store.New()
	notifier := &fakeNotifier{}
	return NewGlobalExtras(s, notifier), s, notifier
}

func setScore(s *store.RoomStore, roomID, playerID string, score int) {
	s.WithRoom(roomID, func(room *model.Room) {
		room.PlayerData[playerID].Score = score
	})
}

func TestRobPointsTransfersScore(t *testing.T) {
	g, s, notifier := newGlobalEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	grantExtra(s, "r1", "p1", model.ExtraRobPoints)
	setScore(s, "r1", "p2", 250)

	res := g.Handle("r1", "p1", model.ExtraRobPoints, "p2")
	require.True(t, res.Success)

	room, _ := s.Get("r1")
	assert.Equal(t, 100, room.PlayerData["p1"].Score)
	assert.Equal(t, 150, room.PlayerData["p2"].Score)
	// The victim's loss is audited for a later restore.
	assert.Equal(t, 100, room.PlayerData["p2"].CumulativeNegativePoints)
	assert.True(t, notifier.has("all:globalExtraUsed"))
}

func TestGlobalExtraNotAllowedByCaps(t *testing.T) {
	g, s, _ := newGlobalEngine(t)
	room := newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	room.Caps.ExtrasAllowed = []model.ExtraID{model.ExtraRestorePoints}
	grantExtra(s, "r1", "p1", model.ExtraRobPoints)
	setScore(s, "r1", "p2", 250)

	res := g.Handle("r1", "p1", model.ExtraRobPoints, "p2")
	assert.False(t, res.Success)
	assert.Equal(t, "Extra not allowed in this room", res.Error)

	room, _ = s.Get("r1")
	assert.Equal(t, 250, room.PlayerData["p2"].Score)
	assert.False(t, room.PlayerData["p1"].UsedExtras[model.ExtraRobPoints])
}

func TestRobPointsValidation(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		targetScore int
		wantErr     string
	}{
		{name: "self rob", target: "p1", wantErr: "Cannot rob yourself"},
		{name: "empty target", target: "", wantErr: "Cannot rob yourself"},
		{name: "unknown target", target: "ghost", wantErr: "Target player not found"},
		{name: "insufficient points", target: "p2", targetScore: 50, wantErr: "Target has insufficient points to rob"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, s, _ := newGlobalEngine(t)
			newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
			grantExtra(s, "r1", "p1", model.ExtraRobPoints)
			setScore(s, "r1", "p2", tc.targetScore)

			res := g.Handle("r1", "p1", model.ExtraRobPoints, tc.target)
			require.False(t, res.Success)
			assert.Equal(t, tc.wantErr, res.Error)

			// Failed attempts leave the extra available.
			room, _ := s.Get("r1")
			assert.False(t, room.PlayerData["p1"].UsedExtras[model.ExtraRobPoints])
		})
	}
}

func TestRestorePointsRefundsAuditedLosses(t *testing.T) {
	g, s, _ := newGlobalEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	grantExtra(s, "r1", "p1", model.ExtraRestorePoints)
	s.WithRoom("r1", func(room *model.Room) {
		state := room.PlayerData["p1"]
		state.Score = 40
		state.CumulativeNegativePoints = 170
		state.PointsRestored = 20
	})

	res := g.Handle("r1", "p1", model.ExtraRestorePoints, "")
	require.True(t, res.Success)

	room, _ := s.Get("r1")
	state := room.PlayerData["p1"]
	assert.Equal(t, 190, state.Score)
	assert.Equal(t, 170, state.PointsRestored)
}

func TestRestorePointsNothingToRestore(t *testing.T) {
	g, s, _ := newGlobalEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	grantExtra(s, "r1", "p1", model.ExtraRestorePoints)

	res := g.Handle("r1", "p1", model.ExtraRestorePoints, "")
	require.False(t, res.Success)
	assert.Equal(t, "No points to restore", res.Error)

	room, _ := s.Get("r1")
	assert.False(t, room.PlayerData["p1"].UsedExtras[model.ExtraRestorePoints])
}

func TestGlobalExtraPerRoundCap(t *testing.T) {
	g, s, _ := newGlobalEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2", "p3")
	grantExtra(s, "r1", "p1", model.ExtraRobPoints)
	grantExtra(s, "r1", "p2", model.ExtraRobPoints)
	setScore(s, "r1", "p3", 500)

	require.True(t, g.Handle("r1", "p1", model.ExtraRobPoints, "p3").Success)

	// Second rob in the same round hits the room-wide cap.
	res := g.Handle("r1", "p2", model.ExtraRobPoints, "p3")
	require.False(t, res.Success)
	assert.Equal(t, "Extra already used this round", res.Error)

	// A new round reopens the cap for the player who has not consumed
	// their own quiz-wide use.
	g.ResetForNewRound("r1")
	assert.True(t, g.Handle("r1", "p2", model.ExtraRobPoints, "p3").Success)
}

func TestGlobalExtraQuizWideSingleUse(t *testing.T) {
	g, s, _ := newGlobalEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	grantExtra(s, "r1", "p1", model.ExtraRobPoints)
	setScore(s, "r1", "p2", 500)

	require.True(t, g.Handle("r1", "p1", model.ExtraRobPoints, "p2").Success)
	g.ResetForNewRound("r1")

	res := g.Handle("r1", "p1", model.ExtraRobPoints, "p2")
	require.False(t, res.Success)
	assert.Equal(t, "Extra already used", res.Error)
}

func TestGlobalExtraNotPurchased(t *testing.T) {
	g, s, _ := newGlobalEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")

	res := g.Handle("r1", "p1", model.ExtraRobPoints, "p2")
	require.False(t, res.Success)
	assert.Equal(t, "Extra not purchased", res.Error)
}
