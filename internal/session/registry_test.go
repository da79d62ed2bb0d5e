package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryOwnership проверяет, что чужая сессия недоступна.
func TestRegistryOwnership(t *testing.T) {
	registry := NewRegistry(time.Hour, nil)
	s := newTestSession(t, newBackend())
	registry.Add(s)

	got, err := registry.Get(s.ID, "user-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = registry.Get(s.ID, "user-2")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = registry.Get(uuid.New(), "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, registry.Delete(s.ID, "user-2"), ErrForbidden)
	require.NoError(t, registry.Delete(s.ID, "user-1"))
	assert.Equal(t, 0, registry.Len())
}

// TestRegistrySweep проверяет закрытие простаивающих сессий.
func TestRegistrySweep(t *testing.T) {
	registry := NewRegistry(30*time.Minute, nil)
	registry.clock = func() time.Time { return testNow.Add(time.Hour) }

	stale := newTestSession(t, newBackend())
	registry.Add(stale)

	fresh := New("user-1", newBackend(), Options{Clock: func() time.Time { return testNow.Add(50 * time.Minute) }})
	t.Cleanup(fresh.Close)
	registry.Add(fresh)

	assert.Equal(t, 1, registry.Sweep())
	assert.Equal(t, 1, registry.Len())

	_, err := stale.Fire()
	assert.ErrorIs(t, err, ErrClosed)

	assert.Len(t, registry.ForOwner("user-1"), 1)
	assert.Empty(t, registry.ForOwner("user-2"))
}

// TestCloseHookRunsOnce проверяет, что хук закрытия вызывается один раз при удалении и повторном закрытии.
func TestCloseHookRunsOnce(t *testing.T) {
	registry := NewRegistry(time.Hour, nil)
	closed := 0
	s := New("user-1", newBackend(), Options{
		Clock:   func() time.Time { return testNow },
		OnClose: func(*Session) { closed++ },
	})
	registry.Add(s)

	require.NoError(t, registry.Delete(s.ID, "user-1"))
	s.Close()

	assert.Equal(t, 1, closed)
}
