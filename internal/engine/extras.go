package engine

import (
	"log"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

// Extras validates and executes a player's use of a fundraising extra.
//
// Per (player, extra) the state machine is
// unpurchased -> purchased -> used, where "used" is terminal for the
// whole quiz. A parallel per-round flag exists purely for display and
// is reset every round; it never feeds the enforcement check.
type Extras struct {
	store    *store.RoomStore
	global   GlobalExtrasHandler
	freezer  FreezeController
	notifier Notifier
}

func NewExtras(s *store.RoomStore, global GlobalExtrasHandler, freezer FreezeController, notifier Notifier) *Extras {
	return &Extras{
		store:    s,
		global:   global,
		freezer:  freezer,
		notifier: notifier,
	}
}

// usageReservation is the optimistic commit over a player's usage
// flags: both are set before the effect runs, and rollback restores
// them if the effect fails, so the flags are true iff the effect
// ultimately succeeded.
type usageReservation struct {
	state *model.PlayerRuntimeState
	extra model.ExtraID
}

func reserveUsage(state *model.PlayerRuntimeState, extra model.ExtraID) *usageReservation {
	state.UsedExtras[extra] = true
	state.UsedExtrasThisRound[extra] = true
	return &usageReservation{state: state, extra: extra}
}

func (r *usageReservation) rollback() {
	r.state.UsedExtras[r.extra] = false
	r.state.UsedExtrasThisRound[r.extra] = false
}

// HandleExtra routes and executes one extra invocation.
//
// Global-scope extras are delegated entirely to the global handler and
// its result returned unchanged. Round-scoped extras are validated
// (allowed by caps, frozen, purchased, not yet used quiz-wide) and
// executed under the room lock with rollback on failure.
func (e *Extras) HandleExtra(roomID, playerID string, extraID model.ExtraID, targetPlayerID string) model.ExtraResult {
	// Caps are immutable after creation, so reading them outside the
	// room lock is safe.
	room, ok := e.store.Get(roomID)
	if !ok {
		return model.ExtraFail("Room not found")
	}

	def, known := model.LookupExtra(extraID)
	if !known {
		return model.ExtraFail("Unknown extra")
	}
	if !room.Caps.AllowsExtra(extraID) {
		return model.ExtraFail("Extra not allowed in this room")
	}
	if def.Global {
		return e.global.Handle(roomID, playerID, extraID, targetPlayerID)
	}

	result := model.ExtraFail("Room not found")
	e.store.WithRoom(roomID, func(room *model.Room) {
		state, ok := room.PlayerData[playerID]
		if !ok {
			result = model.ExtraFail("Player data not found")
			return
		}
		if state.FrozenNextQuestion {
			result = model.ExtraFail("You are frozen and cannot use an extra right now")
			return
		}
		if !state.Purchases[extraID] {
			result = model.ExtraFail("Extra not purchased")
			return
		}
		if state.UsedExtras[extraID] {
			result = model.ExtraFail("Extra already used")
			return
		}

		res := reserveUsage(state, extraID)
		result = e.execute(room, playerID, extraID, targetPlayerID)
		if !result.Success {
			res.rollback()
		}
	})

	if result.Success && e.notifier != nil {
		e.notifier.BroadcastToHost(roomID, "extraUsed", map[string]string{
			"playerId": playerID,
			"extraId":  string(extraID),
		})
	}
	return result
}

// execute runs a round-scoped extra's effect. Called with the room
// lock held.
func (e *Extras) execute(room *model.Room, playerID string, extraID model.ExtraID, targetPlayerID string) model.ExtraResult {
	switch extraID {
	case model.ExtraBuyHint:
		return e.executeBuyHint(room, playerID)
	case model.ExtraFreezeOutTeam:
		return e.freezer.SetFreeze(room, playerID, targetPlayerID)
	default:
		return model.ExtraFail("Unknown extra")
	}
}

// executeBuyHint reveals the current question's clue privately to the
// acting player.
func (e *Extras) executeBuyHint(room *model.Room, playerID string) model.ExtraResult {
	question := room.CurrentQuestion()
	if question == nil || question.Clue == "" {
		return model.ExtraFail("No clue available for this question")
	}

	player := room.FindPlayer(playerID)
	if player == nil || player.SocketID == "" {
		return model.ExtraFail("No active connection for player")
	}

	if e.notifier != nil {
		e.notifier.BroadcastToPlayer(room.ID, playerID, "clueRevealed", map[string]string{
			"questionId": question.ID,
			"clue":       question.Clue,
		})
	}
	return model.ExtraOK()
}

// ResetRoundExtrasTracking zeroes every player's per-round usage map
// and freeze state at round start, then lets the global handler reset
// its own per-round bookkeeping. Quiz-wide usage flags are untouched.
func (e *Extras) ResetRoundExtrasTracking(roomID string) bool {
	ok := e.store.WithRoom(roomID, func(room *model.Room) {
		for _, state := range room.PlayerData {
			state.UsedExtrasThisRound = map[model.ExtraID]bool{}
			state.FrozenNextQuestion = false
			state.FrozenForQuestionIndex = -1
		}
	})
	if !ok {
		log.Printf("room %s: reset extras tracking on unknown room", roomID)
		return false
	}
	e.global.ResetForNewRound(roomID)
	return true
}
