package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SessionNotFoundError reports a session id with no journal row.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

// IsSessionNotFoundError reports whether err is a SessionNotFoundError.
func IsSessionNotFoundError(err error) bool {
	var target *SessionNotFoundError
	return errors.As(err, &target)
}

// ListSessions returns every session ordered by id. Session ids are UUIDv7,
// so the order is creation order.
//
// Returns an empty slice (not nil) if the journal is empty.
func (j *Journal) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, ids_mode, config, state, fingerprint
		FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.IDs, &s.Config, &s.State, &s.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the most recently created session.
func (j *Journal) LatestSession(ctx context.Context) (Session, error) {
	var s Session
	err := j.db.QueryRowContext(ctx, `
		SELECT id, ids_mode, config, state, fingerprint
		FROM sessions
		ORDER BY id COLLATE BINARY DESC
		LIMIT 1
	`).Scan(&s.ID, &s.IDs, &s.Config, &s.State, &s.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, &SessionNotFoundError{ID: "latest"}
	}
	if err != nil {
		return Session{}, fmt.Errorf("read latest session: %w", err)
	}
	return s, nil
}

// ReadSession returns a session and its entries ordered by
// seq ASC, id COLLATE BINARY ASC.
func (j *Journal) ReadSession(ctx context.Context, id string) (Session, []Entry, error) {
	var s Session
	err := j.db.QueryRowContext(ctx, `
		SELECT id, ids_mode, config, state, fingerprint
		FROM sessions
		WHERE id = ?
	`, id).Scan(&s.ID, &s.IDs, &s.Config, &s.State, &s.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil, &SessionNotFoundError{ID: id}
	}
	if err != nil {
		return Session{}, nil, fmt.Errorf("read session: %w", err)
	}

	entries, err := j.readEntries(ctx, id)
	if err != nil {
		return Session{}, nil, err
	}
	return s, entries, nil
}

func (j *Journal) readEntries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, seq, origin, action, state, fingerprint
		FROM entries
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Origin, &e.Action, &e.State, &e.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
