package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizfund/internal/cache"
	"quizfund/internal/model"
	"quizfund/internal/repository"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// platformFeeBPS is the platform's cut of entry fees, in basis points.
const platformFeeBPS = 250

// ReconciliationService persists the post-quiz settlement: the frozen
// leaderboard, the money ledger and the fee split. Percentage splits
// apply to entry fees only; extras purchases go to charity in full on
// top of the entry-fee remainder.
type ReconciliationService struct {
	recRepo   repository.ReconciliationRepo
	lbCache   cache.LeaderboardCache
	roomState cache.RoomStateCache
}

func NewReconciliationService(
	recRepo repository.ReconciliationRepo,
	lbCache cache.LeaderboardCache,
	roomState cache.RoomStateCache,
) *ReconciliationService {
	return &ReconciliationService{
		recRepo:   recRepo,
		lbCache:   lbCache,
		roomState: roomState,
	}
}

type feeSplit struct {
	Gross        int64
	PlatformFee  int64
	HostFee      int64
	PrizePool    int64
	CharityTotal int64
}

// calculateBPS applies a basis-point fraction to an amount.
func calculateBPS(amount, bps int64) int64 {
	return amount * bps / 10000
}

// computeFeeSplit splits gross takings between platform, host, prize
// pool and charity. Charity receives the entry-fee remainder plus all
// extras revenue.
func computeFeeSplit(entryTotal, extrasTotal, hostFeeBPS, prizePoolBPS int64) feeSplit {
	platformFee := calculateBPS(entryTotal, platformFeeBPS)
	hostFee := calculateBPS(entryTotal, hostFeeBPS)
	prizePool := calculateBPS(entryTotal, prizePoolBPS)

	charity := entryTotal - platformFee - hostFee - prizePool
	if charity < 0 {
		charity = 0
	}
	charity += extrasTotal

	return feeSplit{
		Gross:        entryTotal + extrasTotal,
		PlatformFee:  platformFee,
		HostFee:      hostFee,
		PrizePool:    prizePool,
		CharityTotal: charity,
	}
}

// ledgerTotals sums the ledger by item type.
func ledgerTotals(ledger []model.LedgerEntry) (entryTotal, extrasTotal int64) {
	for _, e := range ledger {
		switch e.ItemType {
		case "entry":
			entryTotal += e.Amount
		case "extra":
			extrasTotal += e.Amount
		}
	}
	return entryTotal, extrasTotal
}

// Finalize builds and upserts the reconciliation record for a room
// whose leaderboard has just been frozen, mirrors the frozen snapshot
// to Redis and marks the room state mirror complete. Safe to re-run:
// the record is keyed by room id and replaced wholesale.
func (s *ReconciliationService) Finalize(ctx context.Context, room *model.Room, entries []model.FinalLeaderboardEntry) (*model.ReconciliationRecord, error) {
	if room.CompletedAt == nil {
		return nil, fmt.Errorf("room %s is not finalized", room.ID)
	}

	entryTotal, extrasTotal := ledgerTotals(room.Config.Reconciliation.Ledger)
	split := computeFeeSplit(entryTotal, extrasTotal, room.Config.HostFeeBPS, room.Config.PrizePoolBPS)

	awards := room.Config.Reconciliation.PrizeAwards
	if len(awards) == 0 && len(entries) > 0 && split.PrizePool > 0 {
		awards = []model.PrizeAward{{
			PlayerID:    entries[0].ID,
			Place:       1,
			Description: "Prize pool winner",
			Amount:      split.PrizePool,
		}}
	}

	record := &model.ReconciliationRecord{
		RoomID:           room.ID,
		HostID:           room.HostID,
		CompletedAt:      *room.CompletedAt,
		FinalLeaderboard: entries,
		Ledger:           room.Config.Reconciliation.Ledger,
		PrizeAwards:      awards,
		GrossTakings:     split.Gross,
		PlatformFee:      split.PlatformFee,
		HostFee:          split.HostFee,
		PrizePool:        split.PrizePool,
		CharityTotal:     split.CharityTotal,
	}

	if err := s.recRepo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save reconciliation record: %w", err)
	}

	if err := s.lbCache.SetFrozen(ctx, room.ID, entries); err != nil {
		log.Printf("room %s: failed to mirror frozen leaderboard: %v", room.ID, err)
	}
	s.MirrorState(ctx, room)

	return record, nil
}

// GetRecord fetches a stored reconciliation record.
func (s *ReconciliationService) GetRecord(ctx context.Context, roomID string) (*model.ReconciliationRecord, error) {
	return s.recRepo.GetByRoomID(ctx, roomID)
}

// ListRecords fetches every reconciliation record for a host, newest
// first.
func (s *ReconciliationService) ListRecords(ctx context.Context, hostID string) ([]*model.ReconciliationRecord, error) {
	return s.recRepo.ListByHost(ctx, hostID)
}

// LiveTop reads the top live standings from the Redis mirror.
func (s *ReconciliationService) LiveTop(ctx context.Context, roomID string, limit int) ([]cache.LiveEntry, error) {
	return s.lbCache.GetTop(ctx, roomID, limit)
}

// PlayerRank returns a player's 1-indexed live rank, or -1 when the
// player has no mirrored score.
func (s *ReconciliationService) PlayerRank(ctx context.Context, roomID, playerID string) (int64, error) {
	return s.lbCache.GetRank(ctx, roomID, playerID)
}

// FrozenSnapshot reads the mirrored final leaderboard. Nil when the
// room was never frozen.
func (s *ReconciliationService) FrozenSnapshot(ctx context.Context, roomID string) ([]model.FinalLeaderboardEntry, error) {
	return s.lbCache.GetFrozen(ctx, roomID)
}

// RoomState reads the mirrored room projection. Nil when no mirror
// exists.
func (s *ReconciliationService) RoomState(ctx context.Context, roomID string) (*cache.RoomStateMeta, error) {
	return s.roomState.GetState(ctx, roomID)
}

// DropMirrors removes a room's live mirrors after teardown. The frozen
// snapshot is kept for reconciliation. Failures are logged only.
func (s *ReconciliationService) DropMirrors(ctx context.Context, roomID string) {
	if err := s.lbCache.Clear(ctx, roomID); err != nil {
		log.Printf("room %s: failed to clear leaderboard mirror: %v", roomID, err)
	}
	if err := s.roomState.Delete(ctx, roomID); err != nil {
		log.Printf("room %s: failed to drop room state mirror: %v", roomID, err)
	}
}

// MirrorState pushes the room's lightweight projection to Redis.
// Mirror failures are logged, never surfaced: the in-memory store is
// authoritative.
func (s *ReconciliationService) MirrorState(ctx context.Context, room *model.Room) {
	err := s.roomState.SetState(ctx, &cache.RoomStateMeta{
		RoomID:      room.ID,
		HostID:      room.HostID,
		Phase:       room.CurrentPhase,
		Round:       room.CurrentRound,
		PlayerCount: len(room.Players),
		UpdatedAt:   timeNow(),
	})
	if err != nil {
		log.Printf("room %s: failed to mirror room state: %v", room.ID, err)
	}
}

// SyncScore pushes one player's live score to the leaderboard mirror.
func (s *ReconciliationService) SyncScore(ctx context.Context, roomID, playerID string, score int) {
	if err := s.lbCache.UpdateScore(ctx, roomID, playerID, score); err != nil {
		log.Printf("room %s: failed to sync score for %s: %v", roomID, playerID, err)
	}
}
