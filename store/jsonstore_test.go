package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) Store {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenJSON(filepath.Join(dir, "groups.json"), filepath.Join(dir, "password.json"))
	require.NoError(t, err)
	return s
}

func TestOpenJSONFreshStart(t *testing.T) {
	s := openTempStore(t)

	groups, err := s.Groups()
	require.NoError(t, err)
	assert.Empty(t, groups)

	pw, err := s.Password()
	require.NoError(t, err)
	assert.Equal(t, DefaultPassword, pw)
}

func TestAddGroupPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	groupsPath := filepath.Join(dir, "groups.json")
	passwordPath := filepath.Join(dir, "password.json")

	s, err := OpenJSON(groupsPath, passwordPath)
	require.NoError(t, err)
	require.NoError(t, s.AddGroup(-1001234567890, "Ops Team"))
	require.NoError(t, s.AddGroup(-1009876543210, "Dev Channel"))

	reopened, err := OpenJSON(groupsPath, passwordPath)
	require.NoError(t, err)
	groups, err := reopened.Groups()
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{
		-1001234567890: "Ops Team",
		-1009876543210: "Dev Channel",
	}, groups)
}

func TestAddGroupOverwritesExistingChat(t *testing.T) {
	s := openTempStore(t)
	require.NoError(t, s.AddGroup(-100, "Old Title"))
	require.NoError(t, s.AddGroup(-100, "New Title"))

	groups, err := s.Groups()
	require.NoError(t, err)
	assert.Equal(t, "New Title", groups[-100])
	assert.Len(t, groups, 1)
}

func TestSetPasswordPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	groupsPath := filepath.Join(dir, "groups.json")
	passwordPath := filepath.Join(dir, "password.json")

	s, err := OpenJSON(groupsPath, passwordPath)
	require.NoError(t, err)
	require.NoError(t, s.SetPassword("hunter2"))

	reopened, err := OpenJSON(groupsPath, passwordPath)
	require.NoError(t, err)
	pw, err := reopened.Password()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestCorruptFilesFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	groupsPath := filepath.Join(dir, "groups.json")
	passwordPath := filepath.Join(dir, "password.json")
	require.NoError(t, os.WriteFile(groupsPath, []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(passwordPath, []byte("]["), 0o644))

	s, err := OpenJSON(groupsPath, passwordPath)
	require.NoError(t, err)

	groups, err := s.Groups()
	require.NoError(t, err)
	assert.Empty(t, groups)

	pw, err := s.Password()
	require.NoError(t, err)
	assert.Equal(t, DefaultPassword, pw)
}

func TestGroupsReturnsCopy(t *testing.T) {
	s := openTempStore(t)
	require.NoError(t, s.AddGroup(-100, "Ops"))

	groups, err := s.Groups()
	require.NoError(t, err)
	groups[-100] = "mutated"

	again, err := s.Groups()
	require.NoError(t, err)
	assert.Equal(t, "Ops", again[-100])
}
