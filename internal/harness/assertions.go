package harness

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/tcademo/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s (%s)\n", event.Seq, event.Action, event.Origin)
		}
	}

	return buf.String()
}

// matches reports whether event is action, optionally from origin.
func matches(event TraceEvent, action, origin string) bool {
	return event.Action == action && (origin == "" || event.Origin == origin)
}

func describe(action, origin string) string {
	if origin == "" {
		return action
	}
	return fmt.Sprintf("%s (%s)", action, origin)
}

// assertTraceContains checks if the trace contains the action.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if matches(event, assertion.Action, assertion.Origin) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(assertion.Action, assertion.Origin),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if actions appear in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed).
// Each action is matched at or after the previous match.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	for _, action := range assertion.Actions {
		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if matches(event, action, assertion.Origin) {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual:   fmt.Sprintf("%s not found after position %d", describe(action, assertion.Origin), pos),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks if the action appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if matches(event, assertion.Action, assertion.Origin) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, describe(assertion.Action, assertion.Origin)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertState checks dotted paths of state against expected values
// (subset semantics - only listed paths are checked). Paths are checked in
// sorted order so the first reported failure is deterministic.
func assertState(kind string, state ir.Value, expect map[string]any) error {
	paths := make([]string, 0, len(expect))
	for p := range expect {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		want, err := ir.FromGo(expect[path])
		if err != nil {
			return fmt.Errorf("%s: expected value at %q: %w", kind, path, err)
		}
		got, ok := ir.Lookup(state, path)
		if !ok {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s = %s", path, mustCanonical(want)),
				Actual:   fmt.Sprintf("%s not present in state", path),
			}
		}
		if !valuesEqual(got, want) {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprintf("%s = %s", path, mustCanonical(want)),
				Actual:   fmt.Sprintf("%s = %s", path, mustCanonical(got)),
			}
		}
	}
	return nil
}

// valuesEqual compares two values by their canonical encoding.
func valuesEqual(a, b ir.Value) bool {
	ab, err := ir.MarshalCanonical(a)
	if err != nil {
		return false
	}
	bb, err := ir.MarshalCanonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func mustCanonical(v ir.Value) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}

// EvaluateAssertions evaluates all assertions against the trace and final
// state. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(trace []TraceEvent, state ir.Value, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(trace, assertion)
		case AssertFinalState:
			err = assertState(AssertFinalState, state, assertion.Expect)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
