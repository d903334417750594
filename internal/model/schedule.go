package model

import "time"

type ScheduledRoomStatus string

const (
	ScheduledPending   ScheduledRoomStatus = "pending"
	ScheduledLaunched  ScheduledRoomStatus = "launched"
	ScheduledCancelled ScheduledRoomStatus = "cancelled"
)

// ScheduledRoom is a fundraising event planned ahead of time and
// persisted in MongoDB. Launching one creates the live in-memory room
// from its config.
type ScheduledRoom struct {
	ID          string              `json:"id" bson:"_id,omitempty"`
	HostID      string              `json:"hostId" bson:"hostId"`
	Title       string              `json:"title" bson:"title"`
	CharityName string              `json:"charityName" bson:"charityName"`
	ScheduledAt time.Time           `json:"scheduledAt" bson:"scheduledAt"`
	Config      RoomConfig          `json:"config" bson:"config"`
	Status      ScheduledRoomStatus `json:"status" bson:"status"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ReconciliationRecord is the immutable post-quiz snapshot persisted
// for prize and payment reconciliation.
type ReconciliationRecord struct {
	RoomID           string                  `json:"roomId" bson:"roomId"`
	HostID           string                  `json:"hostId" bson:"hostId"`
	CompletedAt      time.Time               `json:"completedAt" bson:"completedAt"`
	FinalLeaderboard []FinalLeaderboardEntry `json:"finalLeaderboard" bson:"finalLeaderboard"`
	Ledger           []LedgerEntry           `json:"ledger" bson:"ledger"`
	PrizeAwards      []PrizeAward            `json:"prizeAwards" bson:"prizeAwards"`

	// Fee split of gross takings, all in the smallest currency unit.
	GrossTakings int64 `json:"grossTakings" bson:"grossTakings"`
	PlatformFee  int64 `json:"platformFee" bson:"platformFee"`
	HostFee      int64 `json:"hostFee" bson:"hostFee"`
	PrizePool    int64 `json:"prizePool" bson:"prizePool"`
	CharityTotal int64 `json:"charityTotal" bson:"charityTotal"`
}
