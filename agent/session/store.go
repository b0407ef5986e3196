package session

import "sync"

// DefaultMaxHistoryTurns bounds each mode's history buffer. Insertion beyond
// the bound silently drops the oldest turns, keeping a sliding context window.
const DefaultMaxHistoryTurns = 40

// Store is the in-memory session map. One coarse mutex serializes every
// session mutation; it is held only for in-memory work, never across external
// calls. A multi-process deployment replaces this with a shared store keeping
// the same atomicity-per-user contract.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	maxHistory int
}

type StoreOption func(*Store)

func WithMaxHistoryTurns(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	store := &Store{
		sessions:   make(map[string]*Session),
		maxHistory: DefaultMaxHistoryTurns,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// GetOrCreate returns the user's session, creating a default one on first
// access. Repeated calls return the same instance.
func (st *Store) GetOrCreate(userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[userID]
	if !ok {
		sess = newSession(st, userID)
		st.sessions[userID] = sess
	}
	return sess
}

// ResetSession replaces the user's session with a fresh default, discarding
// all history and pending state.
func (st *Store) ResetSession(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[userID] = newSession(st, userID)
}

// InvalidateCachedProfile clears the memoized profile so the next message
// re-fetches it. Called after a persona edit. No-op when the user has no
// session.
func (st *Store) InvalidateCachedProfile(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if sess, ok := st.sessions[userID]; ok {
		sess.cachedProfile = nil
	}
}
