package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tcademo/internal/app"
	"github.com/roach88/tcademo/internal/ir"
	"github.com/roach88/tcademo/internal/testutil"
)

// DispatchOptions holds flags for the dispatch command.
type DispatchOptions struct {
	*RootOptions
	Database string
	IDs      string
}

// DispatchResult is the outcome of a dispatch run.
type DispatchResult struct {
	Session string          `json:"session,omitempty"`
	Seq     int64           `json:"seq"`
	State   json.RawMessage `json:"state"`
}

// NewDispatchCommand creates the dispatch command.
func NewDispatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DispatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dispatch <action>...",
		Short: "Send actions to a fresh store and print the final state",
		Long: `Send each argument as one action to a fresh store, in order, and print
the final state as canonical JSON.

The clock does not move, so a started timer never ticks on its own; send
timer.tick to simulate one.

Examples:
  tcademo dispatch counter.increment counter.button.tap
  tcademo dispatch "todos.draft buy milk" todos.add --ids sequential
  tcademo dispatch timer.start timer.tick timer.tick --db ./tcademo.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal reductions to this SQLite database")
	cmd.Flags().StringVar(&opts.IDs, "ids", "", "todo identifier mode (random|sequential); overrides config")

	return cmd
}

func runDispatch(opts *DispatchOptions, lines []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Parse everything first so a typo sends nothing.
	actions := make([]app.Action, len(lines))
	for i, line := range lines {
		a, err := app.Parse(line)
		if err != nil {
			_ = formatter.Error(ErrCodeParse, err.Error(), map[string]any{"argument": i + 1})
			return WrapExitError(ExitCommandError, fmt.Sprintf("argument %d", i+1), err)
		}
		actions[i] = a
	}

	clock := testutil.NewManualClock(time.Unix(0, 0))
	env, err := buildEnvironment(opts.RootOptions, opts.IDs, clock, cmd.ErrOrStderr())
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := DispatchResult{}
	storeOpts := env.storeOptions(ctx, cmd.ErrOrStderr())
	if opts.Database != "" {
		j, id, rec, err := env.beginSession(ctx, opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return err
		}
		defer j.Close()
		storeOpts = append(storeOpts, rec)
		result.Session = id
	}

	st := env.Feature.NewStore(storeOpts...)
	defer st.Close()

	for _, a := range actions {
		st.Send(a)
	}

	state, err := ir.MarshalCanonical(st.State())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode state", err)
	}
	result.Seq = st.Seq()
	result.State = state

	var text strings.Builder
	if result.Session != "" {
		fmt.Fprintf(&text, "session %s\n", result.Session)
	}
	fmt.Fprintf(&text, "seq %d\n%s\n", result.Seq, state)
	return formatter.Report(text.String(), result, "", "")
}
