//go:build linux || darwin || freebsd

package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regpatch/internal/format"
)

func TestAcquireRelease(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "regulation.bin")

	l, err := Acquire(archive)
	require.NoError(t, err)
	assert.Equal(t, archive+".lock", l.Path())

	_, err = os.Stat(l.Path())
	require.NoError(t, err, "lock file exists while held")

	require.NoError(t, l.Release())
	_, err = os.Stat(l.Path())
	assert.True(t, os.IsNotExist(err), "lock file removed on release")

	assert.NoError(t, l.Release(), "second release is a no-op")
}

func TestAcquire_Contended(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "regulation.bin")

	first, err := Acquire(archive)
	require.NoError(t, err)
	defer first.Release()

	// A second descriptor in the same process conflicts just like another process would.
	_, err = Acquire(archive)
	require.Error(t, err)
	assert.ErrorIs(t, err, format.ErrLocked)

	require.NoError(t, first.Release())

	again, err := Acquire(archive)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquire_UnwritableDir(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "missing", "regulation.bin")
	_, err := Acquire(archive)
	assert.ErrorIs(t, err, format.ErrIO)
}
