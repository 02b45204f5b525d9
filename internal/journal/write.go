package journal

import (
	"context"
	"fmt"

	"github.com/roach88/tcademo/internal/ir"
)

// Session is one store lifetime.
type Session struct {
	ID          string
	IDs         string // identifier mode: "random" or "sequential"
	Config      string // CUE source the session ran with; empty for defaults
	State       string // canonical JSON of the initial state
	Fingerprint string
}

// Entry is one recorded reduction.
type Entry struct {
	ID          string
	SessionID   string
	Seq         int64
	Origin      string
	Action      string
	State       string // canonical JSON
	Fingerprint string
}

// NewSession builds a session row for an initial state.
func NewSession(id, ids, config string, initial any) (Session, error) {
	state, err := ir.MarshalCanonical(initial)
	if err != nil {
		return Session{}, fmt.Errorf("new session: %w", err)
	}
	return Session{
		ID:          id,
		IDs:         ids,
		Config:      config,
		State:       string(state),
		Fingerprint: ir.FingerprintBytes(state),
	}, nil
}

// NewEntry builds an entry row. The id is derived from the session, seq and
// action, so recording the same reduction twice is a no-op.
func NewEntry(sessionID string, seq int64, origin, action string, state any) (Entry, error) {
	canonical, err := ir.MarshalCanonical(state)
	if err != nil {
		return Entry{}, fmt.Errorf("new entry: %w", err)
	}
	id, err := ir.EntryID(sessionID, seq, action)
	if err != nil {
		return Entry{}, fmt.Errorf("new entry: %w", err)
	}
	return Entry{
		ID:          id,
		SessionID:   sessionID,
		Seq:         seq,
		Origin:      origin,
		Action:      action,
		State:       string(canonical),
		Fingerprint: ir.FingerprintBytes(canonical),
	}, nil
}

// BeginSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (j *Journal) BeginSession(ctx context.Context, s Session) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, ids_mode, config, state, fingerprint)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, s.ID, s.IDs, s.Config, s.State, s.Fingerprint)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// Append inserts an entry record.
// Uses ON CONFLICT DO NOTHING for idempotency - a duplicate id or a second
// entry for the same (session, seq) is silently ignored.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (j *Journal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO entries (id, session_id, seq, origin, action, state, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, e.ID, e.SessionID, e.Seq, e.Origin, e.Action, e.State, e.Fingerprint)
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}
