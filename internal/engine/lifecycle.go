package engine

import (
	"log"
	"time"

	"quizfund/internal/model"
	"quizfund/internal/questionbank"
	"quizfund/internal/store"
)

// RoomSummary is the listing projection of a live room.
type RoomSummary struct {
	ID          string          `json:"id"`
	HostID      string          `json:"hostId"`
	Phase       model.RoomPhase `json:"phase"`
	Round       int             `json:"round"`
	PlayerCount int             `json:"playerCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Lifecycle orchestrates room creation, round and question advancement
// and termination. Every operation is total over state: an unknown
// room id yields false/nil, never a panic, so transport handlers keep
// serving other rooms.
type Lifecycle struct {
	store    *store.RoomStore
	bank     *questionbank.Bank
	freezer  FreezeController
	notifier Notifier
}

func NewLifecycle(s *store.RoomStore, bank *questionbank.Bank, freezer FreezeController, notifier Notifier) *Lifecycle {
	return &Lifecycle{
		store:    s,
		bank:     bank,
		freezer:  freezer,
		notifier: notifier,
	}
}

// CreateRoom initializes a room for roomID. A stale existing room (no
// players, still waiting) is silently replaced; an active one makes
// the call fail. Fails when the round plan is empty or violates the
// room's caps. The tie-breaker pool is loaded eagerly so a later tie
// never hits the filesystem mid-quiz.
func (l *Lifecycle) CreateRoom(roomID, hostID string, cfg model.RoomConfig, caps model.RoomCaps) bool {
	if len(cfg.RoundDefinitions) == 0 {
		log.Printf("room %s: create rejected, no round definitions", roomID)
		return false
	}
	if caps.MaxRounds > 0 && len(cfg.RoundDefinitions) > caps.MaxRounds {
		log.Printf("room %s: create rejected, plan has %d rounds, cap is %d", roomID, len(cfg.RoundDefinitions), caps.MaxRounds)
		return false
	}
	for _, def := range cfg.RoundDefinitions {
		if !caps.AllowsRoundType(def.RoundType) {
			log.Printf("room %s: create rejected, round type %q not allowed", roomID, def.RoundType)
			return false
		}
	}

	if existing, ok := l.store.Get(roomID); ok {
		if len(existing.Players) > 0 || existing.CurrentPhase != model.PhaseWaiting {
			log.Printf("room %s: create rejected, room already active", roomID)
			return false
		}
	}

	if cfg.Reconciliation.Approvals == nil {
		cfg.Reconciliation.Approvals = map[string]bool{}
	}

	room := &model.Room{
		ID:                        roomID,
		HostID:                    hostID,
		Config:                    cfg,
		Caps:                      caps,
		CurrentRound:              1,
		CurrentQuestionIndex:      -1,
		CurrentPhase:              model.PhaseWaiting,
		Questions:                 []model.Question{},
		UsedQuestionIDs:           map[string]struct{}{},
		TieBreakers:               l.bank.LoadTieBreakerPool(),
		Players:                   []*model.Player{},
		PlayerData:                map[string]*model.PlayerRuntimeState{},
		Admins:                    []*model.Admin{},
		PlayerSessions:            map[string]*model.PlayerSession{},
		GlobalExtrasUsedThisRound: map[model.ExtraID]int{},
		CreatedAt:                 time.Now(),
	}
	l.store.Put(room)
	return true
}

// questionBroadcast is the player-facing projection of a question. The
// clue stays out: it is only ever revealed privately through the
// buyHint extra.
type questionBroadcast struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// AdvanceQuestion serves the next question of the current round, or
// nil when the round is exhausted (leaving phase untouched). Freeze
// expiry is evaluated here, lazily, because the domain only needs it
// at the moment a new question is served.
func (l *Lifecycle) AdvanceQuestion(roomID string) *model.Question {
	var question *model.Question
	ok := l.store.WithRoom(roomID, func(room *model.Room) {
		if room.CurrentQuestionIndex+1 >= len(room.Questions) {
			return
		}
		room.CurrentQuestionIndex++
		room.CurrentPhase = model.PhaseQuestion
		if l.freezer != nil {
			l.freezer.ClearExpired(room, room.CurrentQuestionIndex)
		}
		q := room.Questions[room.CurrentQuestionIndex]
		question = &q
	})
	if !ok {
		log.Printf("room %s: advance question on unknown room", roomID)
		return nil
	}
	if question != nil && l.notifier != nil {
		l.notifier.BroadcastToAllPlayers(roomID, "question", questionBroadcast{
			ID:         question.ID,
			Text:       question.Text,
			Category:   question.Category,
			Difficulty: question.Difficulty,
		})
	}
	return question
}

// IsEndOfRound reports whether the current index points at the last
// loaded question.
func (l *Lifecycle) IsEndOfRound(roomID string) bool {
	end := false
	l.store.WithRoom(roomID, func(room *model.Room) {
		end = len(room.Questions) > 0 && room.CurrentQuestionIndex == len(room.Questions)-1
	})
	return end
}

// StartNextRound advances to the next round of the plan, clearing the
// round question list but never UsedQuestionIDs: cross-round dedup
// must survive every reset.
func (l *Lifecycle) StartNextRound(roomID string) bool {
	advanced := false
	ok := l.store.WithRoom(roomID, func(room *model.Room) {
		if room.CurrentPhase == model.PhaseComplete {
			return
		}
		if room.CurrentRound >= len(room.Config.RoundDefinitions) {
			return
		}
		room.CurrentRound++
		room.CurrentQuestionIndex = -1
		room.CurrentPhase = model.PhaseWaiting
		room.Questions = []model.Question{}
		advanced = true
	})
	if !ok {
		return false
	}
	if advanced && l.notifier != nil {
		l.notifier.BroadcastToAllPlayers(roomID, "roundStarted", map[string]interface{}{"round": l.currentRound(roomID)})
	}
	return advanced
}

func (l *Lifecycle) currentRound(roomID string) int {
	n := 0
	l.store.WithRoom(roomID, func(room *model.Room) { n = room.CurrentRound })
	return n
}

// SetQuestionsForRound replaces the round's question list and marks
// every supplied id as globally used. The union is idempotent.
func (l *Lifecycle) SetQuestionsForRound(roomID string, questions []model.Question) bool {
	return l.store.WithRoom(roomID, func(room *model.Room) {
		room.Questions = questions
		for _, q := range questions {
			room.UsedQuestionIDs[q.ID] = struct{}{}
		}
	})
}

// AssignQuestions selects questions for the current round definition —
// excluding everything the room has already consumed — and installs
// them. Returns the assigned questions; an empty slice signals
// insufficient content, which the caller decides how to handle.
func (l *Lifecycle) AssignQuestions(roomID string) []model.Question {
	var (
		exclude map[string]struct{}
		def     model.RoundDefinition
		found   bool
	)
	ok := l.store.WithRoom(roomID, func(room *model.Room) {
		if room.CurrentRound < 1 || room.CurrentRound > len(room.Config.RoundDefinitions) {
			return
		}
		def = room.Config.RoundDefinitions[room.CurrentRound-1]
		exclude = make(map[string]struct{}, len(room.UsedQuestionIDs))
		for id := range room.UsedQuestionIDs {
			exclude[id] = struct{}{}
		}
		found = true
	})
	if !ok || !found {
		return nil
	}

	questions := l.bank.Select(exclude, def.Category, def.Difficulty, def.QuestionsPerRound)
	if len(questions) == 0 {
		log.Printf("room %s: no questions available for round (type=%s)", roomID, def.RoundType)
		return []model.Question{}
	}
	l.SetQuestionsForRound(roomID, questions)
	return questions
}

// UpsertPlayer adds a player to the roster or refreshes an existing
// entry. New players are rejected once the cap is hit. Purchased
// extras are mirrored into the runtime purchase map and recorded on
// the reconciliation ledger.
func (l *Lifecycle) UpsertPlayer(roomID string, p model.Player) bool {
	accepted := false
	l.store.WithRoom(roomID, func(room *model.Room) {
		existing := room.FindPlayer(p.ID)
		if existing == nil {
			if room.Caps.MaxPlayers > 0 && len(room.Players) >= room.Caps.MaxPlayers {
				log.Printf("room %s: join rejected for %s, room full", roomID, p.ID)
				return
			}
			if p.JoinedAt.IsZero() {
				p.JoinedAt = time.Now()
			}
			added := p
			room.Players = append(room.Players, &added)
			room.PlayerData[p.ID] = model.NewPlayerRuntimeState()
			existing = &added

			if room.Config.EntryFee > 0 {
				room.Config.Reconciliation.Ledger = append(room.Config.Reconciliation.Ledger, model.LedgerEntry{
					PlayerID: p.ID,
					ItemType: "entry",
					ItemID:   "entryFee",
					Amount:   room.Config.EntryFee,
					Method:   p.PaymentMethod,
					At:       time.Now(),
				})
			}
		} else {
			existing.Name = p.Name
			existing.SocketID = p.SocketID
			existing.PaymentMethod = p.PaymentMethod
			existing.Paid = p.Paid
			existing.Extras = p.Extras
		}

		state := room.PlayerData[p.ID]
		for _, extra := range p.Extras {
			if def, known := model.LookupExtra(extra); known {
				if !state.Purchases[extra] {
					state.Purchases[extra] = true
					room.Config.Reconciliation.Ledger = append(room.Config.Reconciliation.Ledger, model.LedgerEntry{
						PlayerID: p.ID,
						ItemType: "extra",
						ItemID:   string(def.ID),
						Amount:   def.Price,
						Method:   p.PaymentMethod,
						At:       time.Now(),
					})
				}
			}
		}
		accepted = true
	})
	if accepted && l.notifier != nil {
		l.notifier.BroadcastToHost(roomID, "playerJoined", map[string]string{"playerId": p.ID, "name": p.Name})
	}
	return accepted
}

// UpsertAdmin adds or refreshes an admin entry.
func (l *Lifecycle) UpsertAdmin(roomID string, a model.Admin) bool {
	return l.store.WithRoom(roomID, func(room *model.Room) {
		for _, existing := range room.Admins {
			if existing.ID == a.ID {
				existing.Name = a.Name
				existing.SocketID = a.SocketID
				return
			}
		}
		added := a
		room.Admins = append(room.Admins, &added)
	})
}

// UpdatePlayerSocket refreshes a player's transport handle after a
// reconnect.
func (l *Lifecycle) UpdatePlayerSocket(roomID, playerID, socketID string) bool {
	updated := false
	l.store.WithRoom(roomID, func(room *model.Room) {
		if p := room.FindPlayer(playerID); p != nil {
			p.SocketID = socketID
			updated = true
		}
	})
	return updated
}

// UpdateHostSocket refreshes the host's transport handle.
func (l *Lifecycle) UpdateHostSocket(roomID, socketID string) bool {
	return l.store.WithRoom(roomID, func(room *model.Room) {
		room.HostSocketID = socketID
	})
}

// SubmitAnswer records an answer for the current question and applies
// the supplied score delta. Negative deltas feed the cumulative
// negative-points audit counter consumed by the restore extra.
func (l *Lifecycle) SubmitAnswer(roomID, playerID, questionID, answer string, correct bool, points int) bool {
	recorded := false
	l.store.WithRoom(roomID, func(room *model.Room) {
		state, ok := room.PlayerData[playerID]
		if !ok {
			return
		}
		if _, dup := state.Answers[questionID]; dup {
			return
		}
		state.Answers[questionID] = model.AnswerRecord{
			Answer:      answer,
			Correct:     correct,
			PointsDelta: points,
			SubmittedAt: time.Now(),
		}
		state.Score += points
		if points < 0 {
			state.CumulativeNegativePoints += -points
		}
		recorded = true
	})
	return recorded
}

// RemoveRoom drops a room from the store.
func (l *Lifecycle) RemoveRoom(roomID string) bool {
	return l.store.Delete(roomID)
}

// ListRooms returns a summary for every live room.
func (l *Lifecycle) ListRooms() []RoomSummary {
	ids := l.store.IDs()
	summaries := make([]RoomSummary, 0, len(ids))
	for _, id := range ids {
		l.store.WithRoom(id, func(room *model.Room) {
			summaries = append(summaries, RoomSummary{
				ID:          room.ID,
				HostID:      room.HostID,
				Phase:       room.CurrentPhase,
				Round:       room.CurrentRound,
				PlayerCount: len(room.Players),
				CreatedAt:   room.CreatedAt,
			})
		})
	}
	return summaries
}
