package cli

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcademo/internal/journal"
)

func TestReplay_Deterministic(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tcademo.db")
	recordDispatch(t, db, "counter.button.tap", "todos.draft milk", "todos.add", "--ids", "sequential")
	recordDispatch(t, db, "timer.start", "timer.tick", "timer.stop")

	out, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 session(s) replayed deterministically")
}

func TestReplay_RandomIDsAreNotFailures(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tcademo.db")
	id := recordDispatch(t, db, "todos.draft milk", "todos.add")

	out, _, err := execute(t, "--format", "json", "replay", "--db", db, "--session", id)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllMatch)
	require.Len(t, resp.Data.Sessions, 1)
	assert.False(t, resp.Data.Sessions[0].Deterministic)
	assert.False(t, resp.Data.Sessions[0].Match)
}

func TestReplay_Mismatch(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tcademo.db")
	id := recordDispatch(t, db, "counter.increment", "counter.increment", "--ids", "sequential")

	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`UPDATE entries SET fingerprint = 'tampered' WHERE session_id = ? AND seq = 2`, id)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, _, err := execute(t, "replay", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ "+id+"  1 mismatches")
	assert.Contains(t, out, "[2] counter.increment: want tampered")
}

func TestReplay_UnknownSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tcademo.db")
	recordDispatch(t, db, "counter.increment")

	_, _, err := execute(t, "replay", "--db", db, "--session", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown session")
}

func TestReplay_SessionWithoutEntries(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tcademo.db")
	out, _, err := execute(t, "run", "--db", db, "--script", writeFile(t, "empty.txt", "quit\n"))
	require.NoError(t, err)
	assert.Empty(t, out)

	out, _, err = execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "0 dispatched, 0 compared")
	assert.Contains(t, out, "✓ 1 session(s) replayed deterministically")
}

func TestReplay_NoSessions(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tcademo.db")
	j, err := journal.Open(db)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	out, _, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions recorded.")
}
