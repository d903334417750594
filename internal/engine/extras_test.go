package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

func newExtrasEngine(t *testing.T) (*Extras, *store.RoomStore, *fakeNotifier) {
	t.Helper()
	s := store.New()
	notifier := &fakeNotifier{}
	global := NewGlobalExtras(s, notifier)
	return NewExtras(s, global, NewFreezer(), notifier), s, notifier
}

func grantExtra(s *store.RoomStore, roomID, playerID string, extra model.ExtraID) {
	s.WithRoom(roomID, func(room *model.Room) {
		room.PlayerData[playerID].Purchases[extra] = true
	})
}

func TestHandleExtraUnknownRoom(t *testing.T) {
	e, _, _ := newExtrasEngine(t)

	res := e.HandleExtra("missing", "p1", model.ExtraBuyHint, "")
	assert.False(t, res.Success)
	assert.Equal(t, "Room not found", res.Error)
}

func TestHandleExtraUnknownExtra(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")

	res := e.HandleExtra("r1", "p1", "timeTravel", "")
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown extra", res.Error)
}

func TestHandleExtraNotAllowedByCaps(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	room := newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	room.Caps.ExtrasAllowed = []model.ExtraID{model.ExtraBuyHint}
	grantExtra(s, "r1", "p1", model.ExtraBuyHint)
	grantExtra(s, "r1", "p1", model.ExtraRobPoints)
	s.WithRoom("r1", func(room *model.Room) {
		room.Questions = questionSet("q1")
		room.CurrentQuestionIndex = 0
		room.PlayerData["p2"].Score = 300
	})

	// Purchased or not, an extra outside the allow list never fires —
	// including global-scope ones.
	res := e.HandleExtra("r1", "p1", model.ExtraRobPoints, "p2")
	assert.False(t, res.Success)
	assert.Equal(t, "Extra not allowed in this room", res.Error)

	room, _ = s.Get("r1")
	assert.Equal(t, 300, room.PlayerData["p2"].Score)
	assert.False(t, room.PlayerData["p1"].UsedExtras[model.ExtraRobPoints])

	// Allowed extras stay usable.
	assert.True(t, e.HandleExtra("r1", "p1", model.ExtraBuyHint, "").Success)
}

func TestHandleExtraNotPurchased(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")

	res := e.HandleExtra("r1", "p1", model.ExtraBuyHint, "")
	assert.False(t, res.Success)
	assert.Equal(t, "Extra not purchased", res.Error)
}

func TestHandleExtraSingleUseAcrossRounds(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	grantExtra(s, "r1", "p1", model.ExtraBuyHint)
	s.WithRoom("r1", func(room *model.Room) {
		room.Questions = questionSet("q1", "q2")
		room.CurrentQuestionIndex = 0
	})

	require.True(t, e.HandleExtra("r1", "p1", model.ExtraBuyHint, "").Success)

	// The per-round reset must not revive quiz-wide consumption.
	require.True(t, e.ResetRoundExtrasTracking("r1"))

	res := e.HandleExtra("r1", "p1", model.ExtraBuyHint, "")
	assert.False(t, res.Success)
	assert.Equal(t, "Extra already used", res.Error)
}

func TestHandleExtraFrozenPlayerBlocked(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	grantExtra(s, "r1", "p1", model.ExtraBuyHint)
	s.WithRoom("r1", func(room *model.Room) {
		room.PlayerData["p1"].FrozenNextQuestion = true
	})

	res := e.HandleExtra("r1", "p1", model.ExtraBuyHint, "")
	assert.False(t, res.Success)
	assert.Equal(t, "You are frozen and cannot use an extra right now", res.Error)
}

func TestHandleExtraRollbackOnFailure(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	grantExtra(s, "r1", "p1", model.ExtraBuyHint)
	// No current question, so the hint effect fails after reservation.

	res := e.HandleExtra("r1", "p1", model.ExtraBuyHint, "")
	require.False(t, res.Success)
	assert.Equal(t, "No clue available for this question", res.Error)

	room, _ := s.Get("r1")
	state := room.PlayerData["p1"]
	assert.False(t, state.UsedExtras[model.ExtraBuyHint])
	assert.False(t, state.UsedExtrasThisRound[model.ExtraBuyHint])

	// The failed attempt consumed nothing; a retry with a live question
	// succeeds.
	s.WithRoom("r1", func(room *model.Room) {
		room.Questions = questionSet("q1")
		room.CurrentQuestionIndex = 0
	})
	assert.True(t, e.HandleExtra("r1", "p1", model.ExtraBuyHint, "").Success)
}

func TestBuyHintRevealsClue(t *testing.T) {
	e, s, notifier := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	grantExtra(s, "r1", "p1", model.ExtraBuyHint)
	s.WithRoom("r1", func(room *model.Room) {
		room.Questions = questionSet("q1")
		room.CurrentQuestionIndex = 0
	})

	res := e.HandleExtra("r1", "p1", model.ExtraBuyHint, "")
	require.True(t, res.Success)

	// Clue goes to the buyer only; the host gets the usage event.
	assert.True(t, notifier.has("player/p1:clueRevealed"))
	assert.True(t, notifier.has("host:extraUsed"))
	assert.False(t, notifier.has("player/p2:clueRevealed"))
}

func TestBuyHintRequiresConnection(t *testing.T) {
	e, s, _ := newExtrasEngine(t)
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")
	grantExtra(s, "r1", "p1", model.ExtraBuyHint)
	s.WithRoom("r1", func(room *model.Room) {
		room.Questions = questionSet("q1")
		room.CurrentQuestionIndex = 0
		room.FindPlayer("p1").SocketID = ""
	})

	res := e.HandleExtra("r1", "p1", model.ExtraBuyHint, "")
	assert.False(t, res.Success)
	assert.Equal(t, "No active connection for player", res.Error)
}

func TestHandleExtraDelegatesGlobalScope(t *testing.T) {
	s := store.New()
	fake := &fakeGlobalHandler{result: model.ExtraFail("canned")}
	e := NewExtras(s, fake, NewFreezer(), &fakeNotifier{})
	newTestRoom(s, "r1", twoRoundPlan(2), "p1")

	res := e.HandleExtra("r1", "p1", model.ExtraRobPoints, "p2")

	// Result passes through untouched and round-scope validation never
	// runs (the extra was not even purchased).
	assert.Equal(t, 1, fake.calls)
	assert.False(t, res.Success)
	assert.Equal(t, "canned", res.Error)
}

func TestResetRoundExtrasTracking(t *testing.T) {
	s := store.New()
	fake := &fakeGlobalHandler{result: model.ExtraOK()}
	e := NewExtras(s, fake, NewFreezer(), &fakeNotifier{})
	newTestRoom(s, "r1", twoRoundPlan(2), "p1", "p2")
	s.WithRoom("r1", func(room *model.Room) {
		state := room.PlayerData["p1"]
		state.UsedExtrasThisRound[model.ExtraBuyHint] = true
		state.UsedExtras[model.ExtraBuyHint] = true
		room.PlayerData["p2"].FrozenNextQuestion = true
		room.PlayerData["p2"].FrozenForQuestionIndex = 3
	})

	require.True(t, e.ResetRoundExtrasTracking("r1"))

	room, _ := s.Get("r1")
	assert.Empty(t, room.PlayerData["p1"].UsedExtrasThisRound)
	assert.True(t, room.PlayerData["p1"].UsedExtras[model.ExtraBuyHint])
	assert.False(t, room.PlayerData["p2"].FrozenNextQuestion)
	assert.Equal(t, -1, room.PlayerData["p2"].FrozenForQuestionIndex)
	assert.Equal(t, 1, fake.resets)
}

func TestResetRoundExtrasTrackingUnknownRoom(t *testing.T) {
	e, _, _ := newExtrasEngine(t)
	assert.False(t, e.ResetRoundExtrasTracking("missing"))
}
