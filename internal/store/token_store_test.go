package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"restchat/internal/domain"
	"restchat/internal/store"
)

func TestTokenStore_SaveLoadClear(t *testing.T) {
	home := t.TempDir()
	var s domain.TokenStore = store.NewTokenFileStore(home)

	_, ok, err := s.LoadToken()
	require.NoError(t, err)
	require.False(t, ok, "fresh store must report no token")

	rec := domain.TokenRecord{
		AccessToken: "tok-123",
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveToken(rec))

	got, ok, err := s.LoadToken()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec.AccessToken, got.AccessToken)
	require.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, s.ClearToken())
	_, ok, err = s.LoadToken()
	require.NoError(t, err)
	require.False(t, ok)

	// Clearing an already-clear store is fine.
	require.NoError(t, s.ClearToken())
}

func TestTokenStore_SurvivesNewInstance(t *testing.T) {
	home := t.TempDir()

	require.NoError(t, store.NewTokenFileStore(home).SaveToken(domain.TokenRecord{AccessToken: "tok"}))

	got, ok, err := store.NewTokenFileStore(home).LoadToken()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok", got.AccessToken)
}
