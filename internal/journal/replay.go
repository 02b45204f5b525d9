package journal

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/tcademo/internal/app"
	"github.com/roach88/tcademo/internal/config"
	"github.com/roach88/tcademo/internal/feature/todolist"
	"github.com/roach88/tcademo/internal/ir"
	"github.com/roach88/tcademo/internal/store"
	"github.com/roach88/tcademo/internal/testutil"
)

// Mismatch is a seq whose replayed snapshot differs from the journal.
type Mismatch struct {
	Seq    int64  `json:"seq"`
	Action string `json:"action"`
	Want   string `json:"want,omitempty"` // recorded fingerprint, empty if the replay produced an extra entry
	Got    string `json:"got,omitempty"`  // replayed fingerprint, empty if the replay produced no entry
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	SessionID string
	// Dispatched counts entries sent to the fresh store. Follow-up entries
	// are not dispatched; the reducers derive them again.
	Dispatched int
	Compared   int
	// Deterministic is false when the session generated random todo ids.
	// Fingerprints after the first added todo are then expected to differ.
	Deterministic bool
	Mismatches    []Mismatch
}

// OK reports whether every snapshot matched.
func (r ReplayResult) OK() bool {
	return len(r.Mismatches) == 0
}

// Replay re-dispatches a session's external and effect entries into a fresh
// application store and compares every snapshot fingerprint with the
// recorded one.
//
// The fresh store runs on a manual clock that never advances, so timer
// effects never fire on their own; the recorded ticks are dispatched from
// the journal instead.
func Replay(ctx context.Context, j *Journal, sessionID string, logger *slog.Logger) (ReplayResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	session, entries, err := j.ReadSession(ctx, sessionID)
	if err != nil {
		return ReplayResult{}, err
	}

	cfg := config.Default()
	if session.Config != "" {
		cfg, err = config.Parse([]byte(session.Config), "session "+session.ID)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay %s: %w", session.ID, err)
		}
	}

	deps := app.Dependencies{Clock: testutil.NewManualClock(time.Unix(0, 0))}
	deterministic := session.IDs == config.IDsSequential
	if deterministic {
		deps.IDs = testutil.NewIncrementingUUIDs()
	} else {
		deps.IDs = todolist.UUIDv7{}
	}

	feature, err := app.New(cfg, deps)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", session.ID, err)
	}

	result := ReplayResult{SessionID: session.ID, Deterministic: deterministic}

	initial, err := ir.Fingerprint(feature.InitialState())
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", session.ID, err)
	}
	if initial != session.Fingerprint {
		result.Mismatches = append(result.Mismatches, Mismatch{Seq: 0, Want: session.Fingerprint, Got: initial})
	}

	rec := &fingerprints{got: map[int64]string{}}
	st := feature.NewStore(
		store.WithContext[app.State, app.Action](ctx),
		store.WithLogger[app.State, app.Action](logger),
		store.WithRecorder[app.State, app.Action](rec),
	)
	defer st.Close()

	for _, e := range entries {
		if e.Origin == string(store.OriginFollowUp) {
			continue
		}
		action, err := app.Parse(e.Action)
		if err != nil {
			return result, fmt.Errorf("replay %s seq %d: %w", session.ID, e.Seq, err)
		}
		st.Send(action)
		result.Dispatched++
	}

	recorded := make(map[int64]bool, len(entries))
	for _, e := range entries {
		recorded[e.Seq] = true
		result.Compared++
		got, ok := rec.got[e.Seq]
		if !ok || got != e.Fingerprint {
			result.Mismatches = append(result.Mismatches, Mismatch{Seq: e.Seq, Action: e.Action, Want: e.Fingerprint, Got: got})
		}
	}
	var extra []Mismatch
	for seq, got := range rec.got {
		if !recorded[seq] {
			extra = append(extra, Mismatch{Seq: seq, Got: got})
		}
	}
	slices.SortFunc(extra, func(a, b Mismatch) int { return cmp.Compare(a.Seq, b.Seq) })
	result.Mismatches = append(result.Mismatches, extra...)

	logger.Debug("replay finished",
		"session", session.ID,
		"dispatched", result.Dispatched,
		"mismatches", len(result.Mismatches),
	)
	return result, nil
}

// fingerprints records the fingerprint of every replayed snapshot. It runs
// under the store's writer lock.
type fingerprints struct {
	got map[int64]string
}

func (f *fingerprints) Record(e store.Entry[app.State, app.Action]) error {
	fp, err := ir.Fingerprint(e.State)
	if err != nil {
		return err
	}
	f.got[e.Seq] = fp
	return nil
}
