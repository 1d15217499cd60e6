package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/internal/search"
)

func newController(n search.Notifier) *search.Controller {
	return search.NewController(search.ServiceFunc(nil), search.WithNotifier(n))
}

func TestSessionLifecycle(t *testing.T) {
	s := NewInMemorySessionStore(time.Minute, 0)
	ctx := context.Background()

	session, err := s.CreateSession(ctx, newController)
	require.NoError(t, err)
	_, err = uuid.Parse(session.ID)
	assert.NoError(t, err)
	assert.NotNil(t, session.Controller)
	assert.NotNil(t, session.Errors)

	got, err := s.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	require.NoError(t, s.DeleteSession(ctx, session.ID))
	_, err = s.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, s.DeleteSession(ctx, session.ID), ErrSessionNotFound)
}

func TestSessionEviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemorySessionStore(10*time.Minute, 2).(*inMemorySessionStore)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	old, err := s.CreateSession(ctx, newController)
	require.NoError(t, err)
	now = now.Add(8 * time.Minute)
	recent, err := s.CreateSession(ctx, newController)
	require.NoError(t, err)

	_, err = s.CreateSession(ctx, newController)
	assert.ErrorIs(t, err, ErrTooManySessions)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, s.EvictIdle(now))
	_, err = s.GetSession(ctx, old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.GetSession(ctx, recent.ID)
	assert.NoError(t, err)
}
