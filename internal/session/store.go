package session

import (
	"sync"
	"time"
)

// Store is the in-memory session registry. Writers mutate sessions through
// Update so every change happens under the lock; readers get snapshots.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new session in the crawling state and returns it.
func (st *Store) Create(testID, baseURL string) *Session {
	s := &Session{
		TestID:    testID,
		BaseURL:   baseURL,
		Status:    StatusCrawling,
		StartTime: time.Now(),
	}
	st.mu.Lock()
	st.sessions[testID] = s
	st.mu.Unlock()
	return s.Clone()
}

// Get returns a snapshot of the session, or false if it does not exist.
func (st *Store) Get(testID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[testID]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Update applies fn to the session under the write lock. It returns false
// if the session does not exist.
func (st *Store) Update(testID string, fn func(*Session)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[testID]
	if !ok {
		return false
	}
	fn(s)
	return true
}

// Len reports the number of stored sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
