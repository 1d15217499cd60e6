package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"audit-log-search/internal/notify"
	"audit-log-search/internal/search"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many console sessions")
)

// Session is a server-held search session of the console.
type Session struct {
	ID         string
	Controller *search.Controller
	Errors     *notify.Recorder
	lastSeen   time.Time
}

type SessionStore interface {
	CreateSession(ctx context.Context, build func(n search.Notifier) *search.Controller) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	EvictIdle(now time.Time) int
}

type inMemorySessionStore struct {
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
	mu       sync.RWMutex
}

func NewInMemorySessionStore(ttl time.Duration, max int) SessionStore {
	return &inMemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

func (s *inMemorySessionStore) CreateSession(ctx context.Context, build func(n search.Notifier) *search.Controller) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictLocked(now)
	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, ErrTooManySessions
	}
	recorder := &notify.Recorder{}
	session := &Session{
		ID:         uuid.NewString(),
		Controller: build(recorder),
		Errors:     recorder,
		lastSeen:   now,
	}
	s.sessions[session.ID] = session
	log.Debug().Str("session", session.ID).Int("open", len(s.sessions)).Msg("Console session created")
	return session, nil
}

func (s *inMemorySessionStore) GetSession(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.lastSeen = s.now()
	return session, nil
}

func (s *inMemorySessionStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// EvictIdle drops sessions not touched within the TTL.
func (s *inMemorySessionStore) EvictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(now)
}

func (s *inMemorySessionStore) evictLocked(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	evicted := 0
	for id, session := range s.sessions {
		if now.Sub(session.lastSeen) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Info().Int("evicted", evicted).Int("open", len(s.sessions)).Msg("Evicted idle console sessions")
	}
	return evicted
}
