package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", ".janitor.pid")

	p, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path())

	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, p.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Releasing twice is harmless.
	assert.NoError(t, p.Release())
}

func TestAcquire_ReacquireBySameProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".janitor.pid")

	_, err := Acquire(path)
	require.NoError(t, err)
	_, err = Acquire(path)
	assert.NoError(t, err)
}

func TestAcquire_LiveOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".janitor.pid")
	// The parent of the test binary is alive for the duration of the test.
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o600))

	_, err := Acquire(path)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquire_StaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".janitor.pid")
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0o600))

	p, err := Acquire(path)
	require.NoError(t, err)
	defer p.Release()

	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRelease_KeepsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".janitor.pid")
	p, err := Acquire(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("12345\n"), 0o600))
	require.NoError(t, p.Release())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRead_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".janitor.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o600))

	_, err := Read(path)
	assert.Error(t, err)
}

func TestIsRunning(t *testing.T) {
	assert.True(t, IsRunning(os.Getpid()))
	assert.False(t, IsRunning(0))
	assert.False(t, IsRunning(-1))
}
