package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tcademo/internal/journal"
	"github.com/roach88/tcademo/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // defaults to the latest session
	Origin   string // optional - filter to one origin
	Action   string // optional - filter to actions with this prefix
	List     bool
	States   bool
}

// TraceEntry is one reduction in the trace timeline.
type TraceEntry struct {
	Seq         int64           `json:"seq"`
	Origin      string          `json:"origin"`
	Action      string          `json:"action"`
	Fingerprint string          `json:"fingerprint"`
	State       json.RawMessage `json:"state,omitempty"`
}

// TraceStats holds per-origin counts for the whole session.
type TraceStats struct {
	Total    int `json:"total"`
	External int `json:"external"`
	FollowUp int `json:"follow_up"`
	Effect   int `json:"effect"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string       `json:"session"`
	IDs      string       `json:"ids"`
	Timeline []TraceEntry `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// SessionSummary is one row of trace --list.
type SessionSummary struct {
	ID          string `json:"id"`
	IDs         string `json:"ids"`
	Fingerprint string `json:"fingerprint"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled reductions of a session",
		Long: `Show the reductions a session recorded, in seq order.

Each line carries the seq, the origin (external, follow-up or effect), the
action and a fingerprint of the state it produced. Without --session the
most recent session is shown.

Examples:
  tcademo trace --db ./tcademo.db --list
  tcademo trace --db ./tcademo.db
  tcademo trace --db ./tcademo.db --session <id> --origin effect
  tcademo trace --db ./tcademo.db --action counter. --states --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to trace (default: latest)")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "filter to one origin (external|follow-up|effect)")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to actions starting with this prefix")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list sessions instead of tracing one")
	cmd.Flags().BoolVar(&opts.States, "states", false, "include the state after each reduction")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.Origin != "" && !store.Origin(opts.Origin).Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid origin %q", opts.Origin))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.List {
		return listSessions(ctx, j, formatter)
	}

	session, entries, err := readTraceSession(ctx, j, opts.Session)
	if err != nil {
		return err
	}

	result := TraceResult{
		Session:  session.ID,
		IDs:      session.IDs,
		Timeline: []TraceEntry{},
	}
	for _, e := range entries {
		result.Stats.Total++
		switch store.Origin(e.Origin) {
		case store.OriginExternal:
			result.Stats.External++
		case store.OriginFollowUp:
			result.Stats.FollowUp++
		case store.OriginEffect:
			result.Stats.Effect++
		}

		if opts.Origin != "" && e.Origin != opts.Origin {
			continue
		}
		if opts.Action != "" && !strings.HasPrefix(e.Action, opts.Action) {
			continue
		}
		te := TraceEntry{Seq: e.Seq, Origin: e.Origin, Action: e.Action, Fingerprint: e.Fingerprint}
		if opts.States {
			te.State = json.RawMessage(e.State)
		}
		result.Timeline = append(result.Timeline, te)
	}

	return formatter.Report(traceText(result), result, "", "")
}

// openExistingJournal opens path, refusing to create a new database.
func openExistingJournal(path string) (*journal.Journal, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return j, nil
}

func readTraceSession(ctx context.Context, j *journal.Journal, id string) (journal.Session, []journal.Entry, error) {
	if id == "" {
		latest, err := j.LatestSession(ctx)
		if err != nil {
			return journal.Session{}, nil, WrapExitError(ExitCommandError, "no sessions recorded", err)
		}
		id = latest.ID
	}
	session, entries, err := j.ReadSession(ctx, id)
	if err != nil {
		return journal.Session{}, nil, WrapExitError(ExitCommandError, "failed to read session", err)
	}
	return session, entries, nil
}

func listSessions(ctx context.Context, j *journal.Journal, formatter *OutputFormatter) error {
	sessions, err := j.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, len(sessions))
	var text strings.Builder
	for i, s := range sessions {
		summaries[i] = SessionSummary{ID: s.ID, IDs: s.IDs, Fingerprint: s.Fingerprint}
		fmt.Fprintf(&text, "%s  ids=%s\n", s.ID, s.IDs)
	}
	if len(sessions) == 0 {
		text.WriteString("No sessions recorded.\n")
	}
	return formatter.Report(text.String(), summaries, "", "")
}

func traceText(r TraceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s (ids=%s)\n\n", r.Session, r.IDs)
	if len(r.Timeline) == 0 {
		b.WriteString("No matching entries.\n")
	}
	for _, e := range r.Timeline {
		fmt.Fprintf(&b, "[%d] %-9s %s  %s\n", e.Seq, e.Origin, e.Action, shortFingerprint(e.Fingerprint))
		if len(e.State) > 0 {
			fmt.Fprintf(&b, "      %s\n", e.State)
		}
	}
	fmt.Fprintf(&b, "\nStats: %d reductions (%d external, %d follow-up, %d effect)\n",
		r.Stats.Total, r.Stats.External, r.Stats.FollowUp, r.Stats.Effect)
	return b.String()
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
