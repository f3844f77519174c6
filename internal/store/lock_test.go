package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireLock(dir)
	require.NoError(t, err)

	_, err = AcquireLock(dir)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	again, err := AcquireLock(dir)
	require.NoError(t, err)
	assert.Equal(t, first.Path(), again.Path())
	require.NoError(t, again.Release())
}

func TestChangesetEmpty(t *testing.T) {
	var nilSet *Changeset
	assert.True(t, nilSet.Empty())
	assert.True(t, (&Changeset{Counter: 4}).Empty())
	assert.False(t, (&Changeset{DeleteConflicts: []string{"1"}}).Empty())
}
