package session

import (
	"strings"
	"sync"
	"time"

	"github.com/lumikid/tutor-backend/internal/common"
)

// Store is the owned map of live sessions. The store mutex guards the map
// and the liveness timestamps; each session's own mutex guards its
// conversational state. Readers racing a sweep observe a clean not-found.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	startedAt time.Time
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		startedAt: time.Now(),
	}
}

// Create registers a new session. The grade is validated against the fixed
// enumeration (default on mismatch), the name is trimmed and defaulted, and
// the conversation log is seeded with one system turn built from the profile.
func (st *Store) Create(name, grade string, subjects []string, systemPrompt string) (*Session, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	now := time.Now()
	sess := &Session{
		ID:          id,
		StudentName: name,
		Grade:       NormalizeGrade(grade),
		Subjects:    subjects,
		Topics:      make(map[string]struct{}),
		CreatedAt:   now,
		LastActive:  now,
	}
	sess.AppendTurn(RoleSystem, systemPrompt)

	st.mu.Lock()
	st.sessions[id] = sess
	st.mu.Unlock()
	return sess, nil
}

// Get looks a session up without mutating it.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	return sess, ok
}

// Touch refreshes last-activity. It must run before any other processing on
// a request referencing the session, so a long provider round trip cannot
// cause a spurious expiry mid-turn.
func (st *Store) Touch(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	if !ok {
		return false
	}
	sess.LastActive = time.Now()
	return true
}

// Delete removes a session. Removal is atomic with respect to its key.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Sweep evicts every session idle longer than ttl and reports how many were
// removed. It is idempotent: a second sweep with no elapsed time removes
// nothing further.
func (st *Store) Sweep(now time.Time, ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, sess := range st.sessions {
		if now.Sub(sess.LastActive) > ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Uptime reports how long the store has been serving.
func (st *Store) Uptime() time.Duration {
	return time.Since(st.startedAt)
}
