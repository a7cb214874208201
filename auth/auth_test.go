package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaybot/store"
)

func newTestManager(t *testing.T) (*Manager, store.Store) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.OpenJSON(filepath.Join(dir, "groups.json"), filepath.Join(dir, "password.json"))
	require.NoError(t, err)
	return NewManager(s), s
}

func TestLoginWithDefaultPassword(t *testing.T) {
	m, _ := newTestManager(t)

	ok, err := m.Login(1, store.DefaultPassword)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.LoggedIn(1))
}

func TestLoginWrongPasswordLeavesStateUnchanged(t *testing.T) {
	m, s := newTestManager(t)

	ok, err := m.Login(1, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.LoggedIn(1))

	pw, err := s.Password()
	require.NoError(t, err)
	assert.Equal(t, store.DefaultPassword, pw)
}

func TestChangePasswordKeepsExistingSessions(t *testing.T) {
	m, s := newTestManager(t)

	ok, err := m.Login(1, store.DefaultPassword)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.ChangePassword("hunter2"))
	assert.True(t, m.LoggedIn(1), "session should survive a password change")

	pw, err := s.Password()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	ok, err = m.Login(2, store.DefaultPassword)
	require.NoError(t, err)
	assert.False(t, ok, "old password should stop working")

	ok, err = m.Login(2, "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
}
