package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedRequestsCoalesce(t *testing.T) {
	var q Queue
	r1 := q.EnqueueShared()
	r2 := q.EnqueueShared()
	r3 := q.EnqueueShared()
	assert.Same(t, r1, r2)
	assert.Same(t, r1, r3)
	assert.Equal(t, 3, q.Head().Readers)
	assert.True(t, q.IsGranted(r1))
}

func TestExclusiveRequestsNeverCoalesce(t *testing.T) {
	var q Queue
	r1 := q.EnqueueExclusive()
	r2 := q.EnqueueExclusive()
	assert.NotSame(t, r1, r2)
	assert.True(t, q.IsGranted(r1))
	assert.False(t, q.IsGranted(r2))
}

func TestSharedAfterExclusiveStartsNewEntry(t *testing.T) {
	var q Queue
	q.EnqueueExclusive()
	r2 := q.EnqueueShared()
	assert.False(t, q.IsGranted(r2))
	require.NoError(t, q.ReleaseExclusive())
	assert.True(t, q.IsGranted(r2))
}

func TestExclusiveAfterSharedStartsNewEntry(t *testing.T) {
	var q Queue
	r1 := q.EnqueueShared()
	r2 := q.EnqueueExclusive()
	assert.True(t, q.IsGranted(r1))
	assert.False(t, q.IsGranted(r2))
	require.NoError(t, q.ReleaseShared())
	assert.True(t, q.IsGranted(r2))
}

func TestReleaseSharedDecrementsUntilEmpty(t *testing.T) {
	var q Queue
	q.EnqueueShared()
	q.EnqueueShared()
	require.NoError(t, q.ReleaseShared())
	assert.False(t, q.Empty())
	require.NoError(t, q.ReleaseShared())
	assert.True(t, q.Empty())
}

func TestReleaseExclusiveOnSharedHeadIsIllegalState(t *testing.T) {
	var q Queue
	q.EnqueueShared()
	assert.ErrorIs(t, q.ReleaseExclusive(), ErrIllegalState)
}

func TestReleaseSharedOnExclusiveHeadIsIllegalState(t *testing.T) {
	var q Queue
	q.EnqueueExclusive()
	assert.ErrorIs(t, q.ReleaseShared(), ErrIllegalState)
}

func TestReleaseOnEmptyQueueIsIllegalState(t *testing.T) {
	var q Queue
	assert.ErrorIs(t, q.ReleaseExclusive(), ErrIllegalState)
	assert.ErrorIs(t, q.ReleaseShared(), ErrIllegalState)
}

func TestFIFOOrderingAcrossWriterBurst(t *testing.T) {
	var q Queue
	w1 := q.EnqueueExclusive()
	w2 := q.EnqueueExclusive()
	w3 := q.EnqueueExclusive()
	assert.True(t, q.IsGranted(w1))
	require.NoError(t, q.ReleaseExclusive())
	assert.True(t, q.IsGranted(w2))
	require.NoError(t, q.ReleaseExclusive())
	assert.True(t, q.IsGranted(w3))
	require.NoError(t, q.ReleaseExclusive())
	assert.True(t, q.Empty())
}
