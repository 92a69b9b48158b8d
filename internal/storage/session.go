package storage

import (
	"errors"
	"sync"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

// ErrSessionNotFound is returned for events that reference a session that no
// longer exists, e.g. a stale callback arriving after /start wiped the state.
var ErrSessionNotFound = errors.New("quiz session not found")

// SessionStore provides in-memory storage for active quiz sessions keyed by
// user id. It is injected into the quiz service so session lifetime is owned
// in one place instead of package-level state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*entities.QuizSession
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*entities.QuizSession),
	}
}

// Put stores the session for its user, replacing any previous one.
func (s *SessionStore) Put(session *entities.QuizSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
}

// Get retrieves the active session for a user.
func (s *SessionStore) Get(userID int64) (*entities.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session for a user. Deleting an absent session is a no-op.
func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
