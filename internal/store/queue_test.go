package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionQueue_FIFO(t *testing.T) {
	q := newActionQueue[string]()
	for _, a := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(pending[string]{action: a, origin: OriginExternal}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.action)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestActionQueue_CloseRejectsEnqueue(t *testing.T) {
	q := newActionQueue[string]()
	q.Enqueue(pending[string]{action: "kept"})
	q.Close()

	assert.False(t, q.Enqueue(pending[string]{action: "late"}))
	got, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "kept", got.action)
}

func TestQuota(t *testing.T) {
	q := newQuota(2)
	require.NoError(t, q.Check("root"))
	require.NoError(t, q.Check("root"))

	err := q.Check("root")
	require.Error(t, err)
	assert.True(t, IsStepsExceededError(err))
	assert.Contains(t, err.Error(), "3 steps > 2 limit")
}

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestOrigin_Valid(t *testing.T) {
	for _, o := range []Origin{OriginExternal, OriginEffect, OriginFollowUp} {
		assert.True(t, o.Valid(), o)
	}
	assert.False(t, Origin("").Valid())
	assert.False(t, Origin("internal").Valid())
}
