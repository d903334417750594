package engine

import "quizfund/internal/model"

// Freezer implements FreezeController. A freeze lands on the question
// after the one currently being served and expires once the room
// advances past it; expiry is evaluated lazily on question advance,
// never by timers. Both methods run with the room lock held.
type Freezer struct{}

func NewFreezer() *Freezer {
	return &Freezer{}
}

func (f *Freezer) SetFreeze(room *model.Room, actingPlayerID, targetPlayerID string) model.ExtraResult {
	if targetPlayerID == "" || targetPlayerID == actingPlayerID {
		return model.ExtraFail("Cannot freeze yourself")
	}
	target, ok := room.PlayerData[targetPlayerID]
	if !ok {
		return model.ExtraFail("Target player not found")
	}
	if target.FrozenNextQuestion {
		return model.ExtraFail("Player is already frozen")
	}

	target.FrozenNextQuestion = true
	target.FrozenForQuestionIndex = room.CurrentQuestionIndex + 1
	return model.ExtraOK()
}

// ClearExpired lifts every freeze whose target question has passed.
// A freeze for index i stays in force while i is the current question
// and clears when the room moves beyond it.
func (f *Freezer) ClearExpired(room *model.Room, currentQuestionIndex int) {
	for _, state := range room.PlayerData {
		if state.FrozenNextQuestion && currentQuestionIndex > state.FrozenForQuestionIndex {
			state.FrozenNextQuestion = false
			state.FrozenForQuestionIndex = -1
		}
	}
}
