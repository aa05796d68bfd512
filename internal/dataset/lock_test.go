package dataset_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bidslite/internal/dataset"
	"bidslite/internal/faults"
)

func TestAcquireLockIsExclusive(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bids")
	first, err := dataset.AcquireLock(out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, dataset.LockFileName), first.Path())
	assert.FileExists(t, first.Path())

	_, err = dataset.AcquireLock(out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, faults.ErrLocked))

	require.NoError(t, first.Release())
	assert.NoFileExists(t, first.Path())

	second, err := dataset.AcquireLock(out)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestReleaseNilLock(t *testing.T) {
	var l *dataset.Lock
	assert.NoError(t, l.Release())
}
