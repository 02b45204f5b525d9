package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tcademo/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string             `json:"session"`
	Dispatched    int                `json:"dispatched"`
	Compared      int                `json:"compared"`
	Deterministic bool               `json:"deterministic"`
	Match         bool               `json:"match"`
	Mismatches    []journal.Mismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllMatch      bool                  `json:"all_match"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Replay journaled sessions against a fresh store and compare every
state fingerprint with the recorded one.

External and effect actions are sent again in seq order; follow-ups are
derived by the reducers. A session recorded with random todo ids is
replayed but not expected to match once a todo was added.

Exit codes:
  0 - Every deterministic session matched
  1 - A deterministic session diverged
  2 - Command error (database not found, unknown session)

Examples:
  tcademo replay --db ./tcademo.db
  tcademo replay --db ./tcademo.db --session <id>
  tcademo replay --db ./tcademo.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := openExistingJournal(opts.Database)
	if err != nil {
		return err
	}
	defer j.Close()

	var ids []string
	if opts.Session != "" {
		ids = []string{opts.Session}
	} else {
		sessions, err := j.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	logger := newLogger(cmd.ErrOrStderr(), quietLevel, opts.Verbose)
	result := ReplayResult{
		Sessions:      make([]ReplaySessionResult, 0, len(ids)),
		TotalSessions: len(ids),
		AllMatch:      true,
	}
	for _, id := range ids {
		r, err := journal.Replay(ctx, j, id, logger)
		if err != nil {
			if journal.IsSessionNotFoundError(err) {
				return WrapExitError(ExitCommandError, "unknown session", err)
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		sr := ReplaySessionResult{
			Session:       r.SessionID,
			Dispatched:    r.Dispatched,
			Compared:      r.Compared,
			Deterministic: r.Deterministic,
			Match:         r.OK(),
			Mismatches:    r.Mismatches,
		}
		if !sr.Match && sr.Deterministic {
			result.AllMatch = false
		}
		result.Sessions = append(result.Sessions, sr)
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	text := replayText(result, opts.Verbose)
	if result.AllMatch {
		return formatter.Report(text, result, "", "")
	}
	const msg = "determinism verification failed"
	if err := formatter.Report(text, result, ErrCodeReplayMismatch, msg); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

func replayText(r ReplayResult, verbose bool) string {
	var b strings.Builder
	if r.TotalSessions == 0 {
		b.WriteString("No sessions recorded.\n")
		return b.String()
	}
	for _, s := range r.Sessions {
		switch {
		case s.Match:
			fmt.Fprintf(&b, "✓ %s  %d dispatched, %d compared\n", s.Session, s.Dispatched, s.Compared)
		case !s.Deterministic:
			fmt.Fprintf(&b, "~ %s  %d mismatches (random ids)\n", s.Session, len(s.Mismatches))
		default:
			fmt.Fprintf(&b, "✗ %s  %d mismatches\n", s.Session, len(s.Mismatches))
		}
		if s.Match || (!s.Deterministic && !verbose) {
			continue
		}
		for _, m := range s.Mismatches {
			fmt.Fprintf(&b, "  [%d] %s: want %s got %s\n", m.Seq, m.Action,
				orNone(shortFingerprint(m.Want)), orNone(shortFingerprint(m.Got)))
		}
	}
	if r.AllMatch {
		fmt.Fprintf(&b, "\n✓ %d session(s) replayed deterministically\n", r.TotalSessions)
	} else {
		b.WriteString("\n✗ Determinism verification failed\n")
	}
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// requireFile fails with a command error when path does not exist.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
		}
		return WrapExitError(ExitCommandError, "failed to stat database", err)
	}
	return nil
}
