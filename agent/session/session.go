// Package session holds volatile per-user conversational state: the active
// mode, two mode-isolated history buffers, the pending confirmation slots, and
// a memoized profile. State lives for the process lifetime only; it is
// reconstructible from the durable message archive.
package session

import (
	contractx "github.com/avamind/ava-core/agent/contract"
)

// PendingCalendarAdd parks a fully resolved calendar action while waiting for
// the user to confirm a conflict. It is executed verbatim on confirmation,
// never re-derived from text.
type PendingCalendarAdd struct {
	UserID   string
	Title    string
	Window   contractx.TimeWindow
	Timezone string
}

// Session is one user's conversational state. All access goes through the
// owning store's lock; obtain instances via Store.GetOrCreate.
type Session struct {
	store  *Store
	userID string

	mode               contractx.Mode
	history            map[contractx.Mode][]contractx.Turn
	pendingSwitch      *contractx.Mode
	pendingCalendarAdd *PendingCalendarAdd
	cachedProfile      *contractx.Profile
}

func newSession(store *Store, userID string) *Session {
	return &Session{
		store:  store,
		userID: userID,
		mode:   contractx.ModeSecretary,
		history: map[contractx.Mode][]contractx.Turn{
			contractx.ModeSecretary: {},
			contractx.ModeIntimate:  {},
		},
	}
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) Mode() contractx.Mode {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.mode
}

// HistorySnapshot returns a copy of one mode's history. Callers may hold the
// snapshot across external calls without blocking other messages.
func (s *Session) HistorySnapshot(mode contractx.Mode) []contractx.Turn {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return append([]contractx.Turn(nil), s.history[mode]...)
}

// AppendTurn appends to one mode's history and trims the oldest turns beyond
// the retention bound. The other mode's buffer is never touched.
func (s *Session) AppendTurn(mode contractx.Mode, turn contractx.Turn) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	buf := append(s.history[mode], turn)
	if excess := len(buf) - s.store.maxHistory; excess > 0 {
		buf = buf[excess:]
	}
	s.history[mode] = buf
}

// SwitchMode sets the mode and clears any pending mode switch. Histories and
// the pending calendar slot are left untouched.
func (s *Session) SwitchMode(mode contractx.Mode) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.mode = mode
	s.pendingSwitch = nil
}

func (s *Session) PendingSwitch() (contractx.Mode, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.pendingSwitch == nil {
		return "", false
	}
	return *s.pendingSwitch, true
}

func (s *Session) SetPendingSwitch(target contractx.Mode) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.pendingSwitch = &target
}

func (s *Session) ClearPendingSwitch() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.pendingSwitch = nil
}

func (s *Session) PendingCalendarAdd() (PendingCalendarAdd, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.pendingCalendarAdd == nil {
		return PendingCalendarAdd{}, false
	}
	return *s.pendingCalendarAdd, true
}

func (s *Session) SetPendingCalendarAdd(pending PendingCalendarAdd) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.pendingCalendarAdd = &pending
}

func (s *Session) ClearPendingCalendarAdd() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.pendingCalendarAdd = nil
}

// CachedProfile returns the memoized profile, if one has been cached this
// session. The cache survives mode switches and message handling.
func (s *Session) CachedProfile() (contractx.Profile, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if s.cachedProfile == nil {
		return contractx.Profile{}, false
	}
	return *s.cachedProfile, true
}

func (s *Session) CacheProfile(profile contractx.Profile) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.cachedProfile = &profile
}
