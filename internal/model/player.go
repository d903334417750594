package model

import "time"

// Player is a participant roster entry.
type Player struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SocketID      string    `json:"socketId"`
	Extras        []ExtraID `json:"extras"` // purchased extra ids
	PaymentMethod string    `json:"paymentMethod"`
	Paid          bool      `json:"paid"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// Admin is a non-playing room moderator.
type Admin struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SocketID string `json:"socketId"`
}

// AnswerRecord is one submitted answer, keyed by question id in
// PlayerRuntimeState.Answers.
type AnswerRecord struct {
	Answer      string    `json:"answer"`
	Correct     bool      `json:"correct"`
	PointsDelta int       `json:"pointsDelta"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PlayerRuntimeState is the per-player game state inside a room.
//
// UsedExtras is scoped to the whole quiz: once an extra is used it is
// consumed forever. UsedExtrasThisRound is a display/limit mirror that
// resets every round and never feeds the enforcement check.
type PlayerRuntimeState struct {
	Status  string                  `json:"status"`
	Score   int                     `json:"score"`
	Answers map[string]AnswerRecord `json:"answers"`

	Purchases           map[ExtraID]bool `json:"purchases"`
	UsedExtras          map[ExtraID]bool `json:"usedExtras"`
	UsedExtrasThisRound map[ExtraID]bool `json:"usedExtrasThisRound"`

	FrozenNextQuestion     bool `json:"frozenNextQuestion"`
	FrozenForQuestionIndex int  `json:"frozenForQuestionIndex"`

	// Audit counters, only ever incremented except by explicit restore.
	CumulativeNegativePoints int `json:"cumulativeNegativePoints"`
	PointsRestored           int `json:"pointsRestored"`
}

// NewPlayerRuntimeState returns a zeroed runtime state with all maps
// initialized.
func NewPlayerRuntimeState() *PlayerRuntimeState {
	return &PlayerRuntimeState{
		Status:                 "active",
		Answers:                map[string]AnswerRecord{},
		Purchases:              map[ExtraID]bool{},
		UsedExtras:             map[ExtraID]bool{},
		UsedExtrasThisRound:    map[ExtraID]bool{},
		FrozenForQuestionIndex: -1,
	}
}
