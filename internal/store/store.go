package store

import (
	"sync"

	"quizfund/internal/model"
)

// RoomStore is the keyed collection of live room aggregates. The store
// is volatile: rooms live for the process lifetime only.
//
// A global RWMutex guards the map; each entry carries its own mutex so
// that all mutation of one room is serialized while independent rooms
// proceed concurrently. Callers outside tests must go through WithRoom.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	room *model.Room
}

func New() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*entry),
	}
}

// Put inserts or replaces a room.
func (s *RoomStore) Put(room *model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = &entry{room: room}
}

// Get returns the live aggregate for id. The returned pointer shares
// state with the store; mutate it only via WithRoom.
func (s *RoomStore) Get(id string) (*model.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	return e.room, true
}

// WithRoom runs fn with the room's lock held. Returns false without
// calling fn when the room does not exist.
func (s *RoomStore) WithRoom(id string, fn func(room *model.Room)) bool {
	s.mu.RLock()
	e, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.room)
	return true
}

// Delete removes a room. Returns false when absent.
func (s *RoomStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return false
	}
	delete(s.rooms, id)
	return true
}

// IDs returns the ids of every stored room.
func (s *RoomStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Len reports the number of stored rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
