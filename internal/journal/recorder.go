package journal

import (
	"context"

	"github.com/roach88/tcademo/internal/metrics"
	"github.com/roach88/tcademo/internal/store"
)

// Recorder appends a store's reductions to one journal session.
type Recorder[S, A any] struct {
	ctx       context.Context
	journal   *Journal
	sessionID string
	format    func(A) string
}

var _ store.Recorder[struct{}, struct{}] = (*Recorder[struct{}, struct{}])(nil)

// NewRecorder returns a Recorder writing to sessionID. format renders
// actions in the form replay parses back.
func NewRecorder[S, A any](ctx context.Context, j *Journal, sessionID string, format func(A) string) *Recorder[S, A] {
	return &Recorder[S, A]{ctx: ctx, journal: j, sessionID: sessionID, format: format}
}

// Record implements store.Recorder.
func (r *Recorder[S, A]) Record(e store.Entry[S, A]) error {
	entry, err := NewEntry(r.sessionID, e.Seq, string(e.Origin), r.format(e.Action), e.State)
	if err != nil {
		metrics.JournalWrites.WithLabelValues("error").Inc()
		return err
	}
	if err := r.journal.Append(r.ctx, entry); err != nil {
		metrics.JournalWrites.WithLabelValues("error").Inc()
		return err
	}
	metrics.JournalWrites.WithLabelValues("ok").Inc()
	return nil
}
