package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"codeberg.org/mutker/pulsemon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), pidFile)

	require.NoError(t, write(path, os.Getpid()))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(b))

	require.NoError(t, remove(path))
	assert.NoFileExists(t, path)
	assert.NoError(t, remove(path), "removing a missing file is not an error")
}

func TestWriteAlreadyRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), pidFile)

	// The test process is alive, so a second writer must back off.
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600))

	err := write(path, os.Getpid()+1)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrAlreadyRunning))
}

func TestWriteStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), pidFile)

	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o600))
	require.NoError(t, write(path, 4242))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "4242", string(b))
}
