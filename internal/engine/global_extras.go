package engine

import (
	"quizfund/internal/model"
	"quizfund/internal/store"
)

const (
	// robAmount is the flat number of points transferred by robPoints.
	// Point values for answers come from round-type config, but the
	// rob transfer is a fixed product-wide figure.
	robAmount = 100

	// globalExtraPerRoundLimit caps how often each global extra can
	// fire in one round across the whole room.
	globalExtraPerRoundLimit = 1
)

// GlobalExtras implements GlobalExtrasHandler: rob-points and
// restore-points, whose effects are symmetric across two players and
// therefore validated here rather than in the round-scoped path.
type GlobalExtras struct {
	store    *store.RoomStore
	notifier Notifier
}

func NewGlobalExtras(s *store.RoomStore, notifier Notifier) *GlobalExtras {
	return &GlobalExtras{store: s, notifier: notifier}
}

func (g *GlobalExtras) Handle(roomID, playerID string, extraID model.ExtraID, targetPlayerID string) model.ExtraResult {
	result := model.ExtraFail("Room not found")
	g.store.WithRoom(roomID, func(room *model.Room) {
		if !room.Caps.AllowsExtra(extraID) {
			result = model.ExtraFail("Extra not allowed in this room")
			return
		}
		state, ok := room.PlayerData[playerID]
		if !ok {
			result = model.ExtraFail("Player data not found")
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
		if room.GlobalExtrasUsedThisRound[extraID] >= globalExtraPerRoundLimit {
			result = model.ExtraFail("Extra already used this round")
			return
		}

		res := reserveUsage(state, extraID)
		switch extraID {
		case model.ExtraRobPoints:
			result = g.executeRob(room, playerID, state, targetPlayerID)
		case model.ExtraRestorePoints:
			result = g.executeRestore(room, playerID, state)
		default:
			result = model.ExtraFail("Unknown extra")
		}
		if !result.Success {
			res.rollback()
			return
		}
		room.GlobalExtrasUsedThisRound[extraID]++
	})

	if result.Success && g.notifier != nil {
		g.notifier.BroadcastToAllPlayers(roomID, "globalExtraUsed", map[string]string{
			"playerId": playerID,
			"extraId":  string(extraID),
		})
	}
	return result
}

// executeRob transfers a flat amount from the target to the acting
// player. The loss is tracked on the victim's audit counter so a
// later restore can undo it.
func (g *GlobalExtras) executeRob(room *model.Room, playerID string, state *model.PlayerRuntimeState, targetPlayerID string) model.ExtraResult {
	if targetPlayerID == "" || targetPlayerID == playerID {
		return model.ExtraFail("Cannot rob yourself")
	}
	target, ok := room.PlayerData[targetPlayerID]
	if !ok {
		return model.ExtraFail("Target player not found")
	}
	if target.Score < robAmount {
		return model.ExtraFail("Target has insufficient points to rob")
	}

	target.Score -= robAmount
	target.CumulativeNegativePoints += robAmount
	state.Score += robAmount
	return model.ExtraOK()
}

// executeRestore refunds every audited point loss not yet restored.
func (g *GlobalExtras) executeRestore(_ *model.Room, _ string, state *model.PlayerRuntimeState) model.ExtraResult {
	restorable := state.CumulativeNegativePoints - state.PointsRestored
	if restorable <= 0 {
		return model.ExtraFail("No points to restore")
	}

	state.Score += restorable
	state.PointsRestored += restorable
	return model.ExtraOK()
}

// ResetForNewRound clears the room's per-round global-extra counters.
func (g *GlobalExtras) ResetForNewRound(roomID string) {
	g.store.WithRoom(roomID, func(room *model.Room) {
		room.GlobalExtrasUsedThisRound = map[model.ExtraID]int{}
	})
}
