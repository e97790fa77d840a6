//go:build linux
// +build linux

package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStorageRoundtrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SaveCredentials("http://localhost:3003", "header.payload.sig"))

	creds, err := LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3003", creds.URL)
	assert.Equal(t, "header.payload.sig", creds.Token)

	token, err := LoadStoredToken()
	require.NoError(t, err)
	assert.Equal(t, "header.payload.sig", token)

	url, err := LoadStoredURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3003", url)
}

func TestCredentialFilePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, SaveCredentials("http://localhost:3003", "tok"))

	info, err := os.Stat(filepath.Join(home, configDir, configFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadCredentialsNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = LoadStoredToken()
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = LoadStoredURL()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SaveCredentials("http://localhost:3003", "tok"))
	require.NoError(t, DeleteCredentials())

	_, err := LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is idempotent
	assert.NoError(t, DeleteCredentials())
}
