package model

// ExtraID identifies a purchasable fundraising extra.
type ExtraID string

const (
	ExtraBuyHint       ExtraID = "buyHint"
	ExtraFreezeOutTeam ExtraID = "freezeOutTeam"
	ExtraRobPoints     ExtraID = "robPoints"
	ExtraRestorePoints ExtraID = "restorePoints"
)

// ExtraDefinition is the static metadata for one extra. Global extras
// affect players across the whole quiz and are dispatched to the
// global extras handler; round-scoped extras apply only to round types
// listed in ApplicableTo.
type ExtraDefinition struct {
	ID           ExtraID  `json:"id"`
	Label        string   `json:"label"`
	Global       bool     `json:"global"`
	ApplicableTo []string `json:"applicableTo,omitempty"` // round type ids, ignored when Global
	MaxPerTeam   int      `json:"maxPerTeam"`             // quiz-wide usage limit
	Price        int64    `json:"price"`
}

// ExtraDefinitions is the read-only lookup table of every known extra.
var ExtraDefinitions = map[ExtraID]ExtraDefinition{
	ExtraBuyHint: {
		ID:           ExtraBuyHint,
		Label:        "Buy Hint",
		ApplicableTo: []string{"generalTrivia", "wipeout"},
		MaxPerTeam:   1,
		Price:        200,
	},
	ExtraFreezeOutTeam: {
		ID:           ExtraFreezeOutTeam,
		Label:        "Freeze Out Team",
		ApplicableTo: []string{"generalTrivia", "wipeout"},
		MaxPerTeam:   1,
		Price:        300,
	},
	ExtraRobPoints: {
		ID:         ExtraRobPoints,
		Label:      "Rob Points",
		Global:     true,
		MaxPerTeam: 1,
		Price:      500,
	},
	ExtraRestorePoints: {
		ID:         ExtraRestorePoints,
		Label:      "Restore Points",
		Global:     true,
		MaxPerTeam: 1,
		Price:      400,
	},
}

// LookupExtra returns the definition for id.
func LookupExtra(id ExtraID) (ExtraDefinition, bool) {
	def, ok := ExtraDefinitions[id]
	return def, ok
}

// ExtraResult is the caller-facing outcome of an extra invocation.
// Expected failures are reported here, never as errors.
type ExtraResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func ExtraOK() ExtraResult {
	return ExtraResult{Success: true}
}

func ExtraFail(reason string) ExtraResult {
	return ExtraResult{Success: false, Error: reason}
}
