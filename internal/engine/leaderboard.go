package engine

import (
	"log"
	"sort"
	"time"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

// Finalizer computes and freezes the final standings exactly once per
// room. The frozen snapshot is the immutable source of truth for prize
// and payment reconciliation.
type Finalizer struct {
	store *store.RoomStore
}

func NewFinalizer(s *store.RoomStore) *Finalizer {
	return &Finalizer{store: s}
}

// Freeze builds one entry per roster player from the authoritative
// PlayerData score (never recomputed from raw answers), sorts
// descending by score with ties kept in roster order, and writes the
// result into the reconciliation sub-record. Finalization is one-way:
// a second call returns the stored snapshot untouched. Returns nil
// for an unknown room.
func (f *Finalizer) Freeze(roomID string) []model.FinalLeaderboardEntry {
	var entries []model.FinalLeaderboardEntry
	ok := f.store.WithRoom(roomID, func(room *model.Room) {
		if room.CompletedAt != nil {
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

		now := time.Now()
		room.Config.Reconciliation.FinalLeaderboard = entries
		room.CompletedAt = &now
		room.CurrentPhase = model.PhaseComplete
	})
	if !ok {
		log.Printf("room %s: freeze leaderboard on unknown room", roomID)
		return nil
	}
	return entries
}

// IsComplete reports whether the room has been finalized.
func (f *Finalizer) IsComplete(roomID string) bool {
	complete := false
	f.store.WithRoom(roomID, func(room *model.Room) {
		complete = room.CompletedAt != nil
	})
	return complete
}
