package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StateStore hands out single-use OAuth state values
type StateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]time.Time
	now    func() time.Time
}

// NewStateStore creates a store whose states expire after ttl
func NewStateStore(ttl time.Duration) *StateStore {
	return &StateStore{ttl: ttl, states: make(map[string]time.Time), now: time.Now}
}

// New registers and returns a fresh state value
func (s *StateStore) New() string {
	state := uuid.NewString()

	s.mu.Lock()
	s.states[state] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return state
}

// Consume reports whether state was issued and is unexpired. A state can be consumed once.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)
	return s.now().Before(expires)
}

// PurgeExpired drops expired states and returns how many were removed
func (s *StateStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for state, expires := range s.states {
		if !now.Before(expires) {
			delete(s.states, state)
			removed++
		}
	}
	return removed
}

// Len returns the number of outstanding states
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
