// Package harness runs YAML scenarios against the application store.
//
// A scenario is a list of steps executed against a fresh store built from
// the scenario's configuration, a manual clock and sequential todo ids:
//
//	name: counter_delegate
//	description: tapping the button bumps the counter through the delegate
//	config: |
//	  counter: initial: 3
//	steps:
//	  - send: counter.button.tap
//	  - expect:
//	      counter.count: 4
//	assertions:
//	  - type: trace_order
//	    actions: [counter.button.tap, counter.button.delegate count-changed]
//
// Steps:
//   - send: one action in the app codec's text form
//   - advance: a duration; the clock moves and every timer fire it causes is
//     reduced before the next step
//   - expect: dotted state paths and the values they must hold now
//
// Every reduction lands in the trace with its seq and origin. After the steps
// the assertions (trace_contains, trace_order, trace_count, final_state) are
// evaluated against the trace and the final state.
//
// Because ids and time are deterministic, the trace and final state are
// byte-stable and can be compared against golden files with RunWithGolden.
package harness
