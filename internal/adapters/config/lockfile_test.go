package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/spool/internal/adapters/config"
	"go.trai.ch/spool/internal/core/domain"
)

func TestLockfile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.LockFileName)

	lock, err := config.ReadLockfile(path)
	require.NoError(t, err)
	assert.Empty(t, lock.Remotes)

	lock.Pin("https://cdn.example.com/b.js", "sha384-bbb")
	lock.Pin("https://cdn.example.com/a.js", "sha384-aaa")
	require.NoError(t, config.WriteLockfile(path, lock))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `version: 1
remotes:
    https://cdn.example.com/a.js:
        integrity: sha384-aaa
    https://cdn.example.com/b.js:
        integrity: sha384-bbb
`, string(data))

	again, err := config.ReadLockfile(path)
	require.NoError(t, err)
	got, ok := again.Integrity("https://cdn.example.com/a.js")
	assert.True(t, ok)
	assert.Equal(t, "sha384-aaa", got)
}

func TestLockfile_NewerVersion(t *testing.T) {
	path := createFile(t, t.TempDir(), domain.LockFileName, "version: 99\n")

	_, err := config.ReadLockfile(path)
	assert.ErrorIs(t, err, domain.ErrLockfileFailed)
}

func TestLockfile_Corrupt(t *testing.T) {
	path := createFile(t, t.TempDir(), domain.LockFileName, "remotes: [")

	_, err := config.ReadLockfile(path)
	assert.ErrorIs(t, err, domain.ErrLockfileFailed)
}
