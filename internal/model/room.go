package model

import "time"

type RoomPhase string

const (
	PhaseWaiting  RoomPhase = "waiting"
	PhaseQuestion RoomPhase = "question"
	PhaseReview   RoomPhase = "review"
	PhaseComplete RoomPhase = "complete"
)

// RoundDefinition describes one round of the quiz plan.
type RoundDefinition struct {
	RoundType          string `json:"roundType" bson:"roundType"` // e.g. "generalTrivia", "wipeout"
	QuestionsPerRound  int    `json:"questionsPerRound" bson:"questionsPerRound"`
	TimePerQuestionSec int    `json:"timePerQuestionSec" bson:"timePerQuestionSec"`
	Category           string `json:"category,omitempty" bson:"category,omitempty"`
	Difficulty         string `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	PrizeDescription   string `json:"prizeDescription,omitempty" bson:"prizeDescription,omitempty"`
}

// LedgerEntry records a single money movement for reconciliation.
type LedgerEntry struct {
	PlayerID string    `json:"playerId" bson:"playerId"`
	ItemType string    `json:"itemType" bson:"itemType"` // "entry" or "extra"
	ItemID   string    `json:"itemId" bson:"itemId"`
	Amount   int64     `json:"amount" bson:"amount"`
	Method   string    `json:"method" bson:"method"`
	At       time.Time `json:"at" bson:"at"`
}

// PrizeAward is a prize assigned to a player at finalization.
type PrizeAward struct {
	PlayerID    string `json:"playerId" bson:"playerId"`
	Place       int    `json:"place" bson:"place"`
	Description string `json:"description" bson:"description"`
	Amount      int64  `json:"amount" bson:"amount"`
}

// Reconciliation is the mutable sub-record shared with the reporting
// subsystem. FinalLeaderboard is written exactly once, at finalization.
type Reconciliation struct {
	Ledger           []LedgerEntry           `json:"ledger" bson:"ledger"`
	PrizeAwards      []PrizeAward            `json:"prizeAwards" bson:"prizeAwards"`
	Approvals        map[string]bool         `json:"approvals" bson:"approvals"`
	FinalLeaderboard []FinalLeaderboardEntry `json:"finalLeaderboard,omitempty" bson:"finalLeaderboard,omitempty"`
}

// RoomConfig is the round plan, immutable after creation except for
// the Reconciliation sub-record.
type RoomConfig struct {
	RoundDefinitions []RoundDefinition `json:"roundDefinitions" bson:"roundDefinitions"`
	EntryFee         int64             `json:"entryFee" bson:"entryFee"`
	HostFeeBPS       int64             `json:"hostFeeBps" bson:"hostFeeBps"`
	PrizePoolBPS     int64             `json:"prizePoolBps" bson:"prizePoolBps"`
	CharityName      string            `json:"charityName,omitempty" bson:"charityName,omitempty"`
	Reconciliation   Reconciliation    `json:"reconciliation" bson:"reconciliation"`
}

// RoomCaps limits what a room may contain. Zero values and empty
// lists mean unrestricted.
type RoomCaps struct {
	MaxPlayers        int       `json:"maxPlayers"`
	MaxRounds         int       `json:"maxRounds"`
	RoundTypesAllowed []string  `json:"roundTypesAllowed"`
	ExtrasAllowed     []ExtraID `json:"extrasAllowed"`
}

// AllowsRoundType reports whether the round type may appear in this
// room's plan.
func (c RoomCaps) AllowsRoundType(roundType string) bool {
	if len(c.RoundTypesAllowed) == 0 {
		return true
	}
	for _, t := range c.RoundTypesAllowed {
		if t == roundType {
			return true
		}
	}
	return false
}

// AllowsExtra reports whether the extra may be used in this room.
func (c RoomCaps) AllowsExtra(id ExtraID) bool {
	if len(c.ExtrasAllowed) == 0 {
		return true
	}
	for _, allowed := range c.ExtrasAllowed {
		if allowed == id {
			return true
		}
	}
	return false
}

// Room is the authoritative in-memory aggregate for one live quiz
// event. All mutation must go through the store's per-room lock.
type Room struct {
	ID           string `json:"id"`
	HostID       string `json:"hostId"`
	HostSocketID string `json:"hostSocketId"`

	Config RoomConfig `json:"config"`
	Caps   RoomCaps   `json:"caps"`

	CurrentRound         int       `json:"currentRound"`         // 1-based
	CurrentQuestionIndex int       `json:"currentQuestionIndex"` // -1 before the first question
	CurrentPhase         RoomPhase `json:"currentPhase"`

	// Questions holds the current round only; UsedQuestionIDs spans
	// the whole quiz and only ever grows.
	Questions       []Question          `json:"questions"`
	UsedQuestionIDs map[string]struct{} `json:"-"`
	TieBreakers     []TieBreaker        `json:"-"`

	Players        []*Player                      `json:"players"`
	PlayerData     map[string]*PlayerRuntimeState `json:"playerData"`
	Admins         []*Admin                       `json:"admins"`
	PlayerSessions map[string]*PlayerSession      `json:"-"`

	// GlobalExtrasUsedThisRound counts uses of global-scope extras in
	// the current round, keyed by extra id.
	GlobalExtrasUsedThisRound map[ExtraID]int `json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CurrentQuestion returns the question at the current index, or nil
// when the index is out of range.
func (r *Room) CurrentQuestion() *Question {
	if r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex >= len(r.Questions) {
		return nil
	}
	return &r.Questions[r.CurrentQuestionIndex]
}

// FindPlayer returns the roster entry for id, or nil.
func (r *Room) FindPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
