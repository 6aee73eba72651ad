package pid_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/pid"
)

func TestWriteAndRemove(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	require.NoError(t, pid.Write())

	// A live holder (this process) blocks a second session.
	err := pid.Write()
	require.Error(t, err)
	assert.Equal(t, errors.ErrAlreadyRunning, errors.CodeOf(err))

	require.NoError(t, pid.Remove())
	require.NoError(t, pid.Write(), "Removable after the holder is gone")
	require.NoError(t, pid.Remove())
}

func TestWriteReclaimsStaleFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)

	// No process should ever have this PID.
	stale := filepath.Join(os.TempDir(), "cmg-10m-thermal.pid")
	require.NoError(t, os.WriteFile(stale, []byte("4194304"), 0o600))

	require.NoError(t, pid.Write(), "Stale PID files are reclaimed")
	require.NoError(t, pid.Remove())
}

func TestRemoveMissingFileIsNoop(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	require.NoError(t, pid.Remove())
}
