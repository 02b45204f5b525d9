package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tally struct {
	N int `json:"n"`
}

func beginTestSession(t *testing.T, j *Journal, id string) Session {
	t.Helper()
	s, err := NewSession(id, "sequential", "", tally{})
	require.NoError(t, err)
	require.NoError(t, j.BeginSession(context.Background(), s))
	return s
}

func TestNewSession_CanonicalState(t *testing.T) {
	s, err := NewSession("s1", "random", "counter: initial: 2", tally{N: 2})
	require.NoError(t, err)

	assert.Equal(t, `{"n":2}`, s.State)
	assert.Len(t, s.Fingerprint, 16)
	assert.Equal(t, "counter: initial: 2", s.Config)
}

func TestNewEntry_StableID(t *testing.T) {
	a, err := NewEntry("s1", 1, "external", "counter.increment", tally{N: 1})
	require.NoError(t, err)
	b, err := NewEntry("s1", 1, "external", "counter.increment", tally{N: 1})
	require.NoError(t, err)
	c, err := NewEntry("s1", 2, "external", "counter.increment", tally{N: 2})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestAppend_Idempotent(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	beginTestSession(t, j, "s1")

	e, err := NewEntry("s1", 1, "external", "counter.increment", tally{N: 1})
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, e))
	require.NoError(t, j.Append(ctx, e))

	var count int
	require.NoError(t, j.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestAppend_SecondEntryForSeqIgnored(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	beginTestSession(t, j, "s1")

	first, err := NewEntry("s1", 1, "external", "counter.increment", tally{N: 1})
	require.NoError(t, err)
	second, err := NewEntry("s1", 1, "external", "counter.decrement", tally{N: -1})
	require.NoError(t, err)
	require.NoError(t, j.Append(ctx, first))
	require.NoError(t, j.Append(ctx, second))

	_, entries, err := j.ReadSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "counter.increment", entries[0].Action)
}

func TestAppend_RequiresSession(t *testing.T) {
	j := createTestJournal(t)

	e, err := NewEntry("missing", 1, "external", "counter.increment", tally{N: 1})
	require.NoError(t, err)
	assert.Error(t, j.Append(context.Background(), e))
}
