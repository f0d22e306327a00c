package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sarisari/backoffice/pkg/config"
	redisclient "github.com/sarisari/backoffice/pkg/redis"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	val, ok := m.data[key]
	if !ok {
		return "", redisclient.Nil
	}
	return val, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	token, err := manager.Generate(ctx, "access-123")
	require.NoError(t, err)
	require.Equal(t, token, store.data["sess:access-123"])

	_, _, err = manager.Rotate(ctx, "access-123", "wrong")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	newAccessID, newToken, err := manager.Rotate(ctx, "access-123", token)
	require.NoError(t, err)
	require.NotContains(t, store.data, "sess:access-123")
	require.Equal(t, newToken, store.data["sess:"+newAccessID])

	_, _, err = manager.Rotate(ctx, "access-123", token)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerHasSessionAndRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	_, err := manager.Generate(ctx, "a1")
	require.NoError(t, err)

	ok, err := manager.HasSession(ctx, "a1")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, manager.Revoke(ctx, "a1"))
	ok, err = manager.HasSession(ctx, "a1")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = manager.HasSession(ctx, " ")
	require.Error(t, err)
}

func TestManagerSurfacesStoreErrors(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("redis down")
	manager := newTestManager(store)

	_, err := manager.HasSession(context.Background(), "a1")
	require.EqualError(t, err, "redis down")
}

func TestNewManagerValidatesTTL(t *testing.T) {
	client := &redisclient.Client{}
	_, err := NewManager(client, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 30})
	require.Error(t, err)

	_, err = NewManager(nil, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 120})
	require.Error(t, err)

	m, err := NewManager(client, config.JWTConfig{ExpirationMinutes: 60, RefreshTokenTTLMinutes: 120})
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, m.ttl)
}
