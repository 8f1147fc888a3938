package webui

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	"imagestudio/core"
	"imagestudio/studio"
)

// ErrSessionNotFound is returned when a token is unknown or its session has
// been evicted.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps cookie tokens to studio sessions. Sessions expire after
// ttl of inactivity; every successful Get extends the lifetime. Eviction
// discards the session's history.
type SessionStore struct {
	cache      *cache.Cache
	ttl        time.Duration
	newSession func() *studio.Session
}

// NewSessionStore creates a store whose sessions are built by newSession.
// Expired sessions are purged every cleanupInterval.
func NewSessionStore(ttl, cleanupInterval time.Duration, newSession func() *studio.Session) *SessionStore {
	return &SessionStore{
		cache:      cache.New(ttl, cleanupInterval),
		ttl:        ttl,
		newSession: newSession,
	}
}

// Create stores a fresh session under a new random token.
func (s *SessionStore) Create() (string, *studio.Session, error) {
	for {
		token, err := core.GenerateSessionID()
		if err != nil {
			return "", nil, err
		}
		sess := s.newSession()
		if err := s.cache.Add(token, sess, cache.DefaultExpiration); err == nil {
			return token, sess, nil
		}
	}
}

// Get returns the session for token and resets its expiry.
func (s *SessionStore) Get(token string) (*studio.Session, error) {
	v, ok := s.cache.Get(token)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*studio.Session)
	s.cache.Set(token, sess, cache.DefaultExpiration)
	return sess, nil
}

// Delete removes a session. Deleting an unknown token is a no-op.
func (s *SessionStore) Delete(token string) {
	s.cache.Delete(token)
}

// Count returns the number of stored sessions, including expired ones not
// yet purged.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

// Cleanup purges expired sessions immediately.
func (s *SessionStore) Cleanup() {
	s.cache.DeleteExpired()
}

// OnEvicted registers fn to run whenever a session is removed by expiry or
// Delete.
func (s *SessionStore) OnEvicted(fn func(token string, sess *studio.Session)) {
	s.cache.OnEvicted(func(token string, v interface{}) {
		if sess, ok := v.(*studio.Session); ok {
			fn(token, sess)
		}
	})
}

// TTL returns the inactivity timeout.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}
