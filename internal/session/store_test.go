package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginTokenLogout(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	id, err := store.Login(ctx, "bearer-token-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	token, err := store.Token(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bearer-token-1", token)

	require.NoError(t, store.Logout(ctx, id))

	_, err = store.Token(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTokenUnknownID(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Token(context.Background(), "no-such-session")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLogoutUnknownIDIsNoop(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Logout(context.Background(), "no-such-session"))
}

func TestSessionsSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store, err := Open(dbPath)
	require.NoError(t, err)
	id, err := store.Login(ctx, "durable-token")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopen simulates an app restart; the partner stays logged in.
	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	token, err := reopened.Token(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "durable-token", token)
}

func TestEachLoginGetsDistinctSession(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first, err := store.Login(ctx, "tok-a")
	require.NoError(t, err)
	second, err := store.Login(ctx, "tok-b")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	tokenA, err := store.Token(ctx, first)
	require.NoError(t, err)
	tokenB, err := store.Token(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "tok-a", tokenA)
	assert.Equal(t, "tok-b", tokenB)
}
