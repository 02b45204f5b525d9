package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tcademo/internal/ir"
)

// TraceSnapshot captures the trace and final state of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	State        []byte // canonical JSON
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	trace := make(ir.Array, len(s.Trace))
	for i, event := range s.Trace {
		trace[i] = ir.Object{
			"seq":    ir.Int(event.Seq),
			"origin": ir.String(event.Origin),
			"action": ir.String(event.Action),
		}
	}
	obj := ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"trace":         trace,
	}
	if len(s.State) > 0 {
		state, err := ir.FromJSON(s.State)
		if err != nil {
			return nil, err
		}
		obj["state"] = state
	}
	return ir.MarshalCanonical(obj)
}

// RunWithGolden executes a scenario and compares its trace and final state
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		State:        result.State,
	}
	data, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
