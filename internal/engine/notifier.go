package engine

import "quizfund/internal/model"

// Notifier is the outbound transport surface consumed by the engine.
// Implementations must tolerate stale or missing connections by
// dropping the message rather than failing; the engine never checks
// delivery. The ws hub implements this interface.
type Notifier interface {
	BroadcastToHost(roomID string, event string, payload interface{})
	BroadcastToPlayer(roomID, playerID string, event string, payload interface{})
	BroadcastToAllPlayers(roomID string, event string, payload interface{})
}

// GlobalExtrasHandler owns the semantics of extras whose effect spans
// players across the whole quiz (rob/restore). It performs its own
// room locking; the extras engine delegates and returns its result
// unchanged.
type GlobalExtrasHandler interface {
	Handle(roomID, playerID string, extraID model.ExtraID, targetPlayerID string) model.ExtraResult
	ResetForNewRound(roomID string)
}

// FreezeController owns freeze-effect bookkeeping, including the
// expiry-question-index computation. Both methods are invoked with the
// room lock already held by the caller.
type FreezeController interface {
	SetFreeze(room *model.Room, actingPlayerID, targetPlayerID string) model.ExtraResult
	ClearExpired(room *model.Room, currentQuestionIndex int)
}
