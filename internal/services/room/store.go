package room

import (
	"sync"

	"github.com/quizroom/quizroom-go/internal/model"
)

// Store is the thread-safe registry of live rooms. Rooms are never
// removed: they live for the life of the process.
type Store struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]*liveRoom
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		rooms: make(map[model.RoomCode]*liveRoom),
	}
}

// add registers the room under its code. It returns false if the code is
// already taken; the caller generates a new code and retries.
func (s *Store) add(r *liveRoom) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[r.state.Code]; ok {
		return false
	}
	s.rooms[r.state.Code] = r
	return true
}

// get returns the live room for the code
func (s *Store) get(code model.RoomCode) (*liveRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

// Exists reports whether a room with the code is registered
func (s *Store) Exists(code model.RoomCode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok
}

// Len returns the number of live rooms
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// liveRoom pairs room state with the mutex serializing access to it.
// Every read or write of the state, including the racing end-of-game
// paths, happens while holding mu; the registry lock above is never held
// at the same time.
type liveRoom struct {
	mu    sync.Mutex
	state *model.Room
}

// snapshot returns a deep copy of the room state for lock-free reading
func (r *liveRoom) snapshot() *model.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}
