package engine

import (
	"fmt"
	"sync"
	"time"

	"quizfund/internal/model"
	"quizfund/internal/store"
)

// fakeNotifier records broadcast events and their payloads for
// assertions. Payloads are keyed by the same "kind:event" entry as the
// event list, keeping the latest payload per entry.
type fakeNotifier struct {
	mu       sync.Mutex
	events   []string
	payloads map[string]interface{}
}

func (n *fakeNotifier) record(kind, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.payloads == nil {
		n.payloads = map[string]interface{}{}
	}
	n.events = append(n.events, kind+":"+event)
	n.payloads[kind+":"+event] = payload
}

func (n *fakeNotifier) BroadcastToHost(roomID string, event string, payload interface{}) {
	n.record("host", event, payload)
}

func (n *fakeNotifier) BroadcastToPlayer(roomID, playerID string, event string, payload interface{}) {
	n.record("player/"+playerID, event, payload)
}

func (n *fakeNotifier) BroadcastToAllPlayers(roomID string, event string, payload interface{}) {
	n.record("all", event, payload)
}

func (n *fakeNotifier) has(entry string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == entry {
			return true
		}
	}
	return false
}

func (n *fakeNotifier) payload(entry string) interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.payloads[entry]
}

// fakeGlobalHandler is a canned GlobalExtrasHandler for routing tests.
type fakeGlobalHandler struct {
	result model.ExtraResult
	calls  int
	resets int
}

func (f *fakeGlobalHandler) Handle(roomID, playerID string, extraID model.ExtraID, targetPlayerID string) model.ExtraResult {
	f.calls++
	return f.result
}

func (f *fakeGlobalHandler) ResetForNewRound(roomID string) {
	f.resets++
}

// newTestRoom builds a fully initialized room with the given roster and
// installs it in the store.
func newTestRoom(s *store.RoomStore, id string, rounds []model.RoundDefinition, playerIDs ...string) *model.Room {
	room := &model.Room{
		ID:                   id,
		HostID:               "host_test",
		CurrentRound:         1,
		CurrentQuestionIndex: -1,
		CurrentPhase:         model.PhaseWaiting,
		Config: model.RoomConfig{
			RoundDefinitions: rounds,
			Reconciliation:   model.Reconciliation{Approvals: map[string]bool{}},
		},
		Questions:                 []model.Question{},
		UsedQuestionIDs:           map[string]struct{}{},
		Players:                   []*model.Player{},
		PlayerData:                map[string]*model.PlayerRuntimeState{},
		Admins:                    []*model.Admin{},
		PlayerSessions:            map[string]*model.PlayerSession{},
		GlobalExtrasUsedThisRound: map[model.ExtraID]int{},
		CreatedAt:                 time.Now(),
	}
	for i, pid := range playerIDs {
		room.Players = append(room.Players, &model.Player{
			ID:       pid,
			Name:     fmt.Sprintf("Player %d", i+1),
			SocketID: "sock-" + pid,
		})
		room.PlayerData[pid] = model.NewPlayerRuntimeState()
	}
	s.Put(room)
	return room
}

func twoRoundPlan(perRound int) []model.RoundDefinition {
	return []model.RoundDefinition{
		{RoundType: "generalTrivia", QuestionsPerRound: perRound, TimePerQuestionSec: 30},
		{RoundType: "wipeout", QuestionsPerRound: perRound, TimePerQuestionSec: 30},
	}
}

func questionSet(ids ...string) []model.Question {
	qs := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		qs = append(qs, model.Question{ID: id, Text: "Question " + id, Clue: "Clue " + id})
	}
	return qs
}
