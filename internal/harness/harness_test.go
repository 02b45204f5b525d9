package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"counter_delegate", "timer_ticks"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ExpectFailureIsReported(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_count
description: expects a count the counter never reaches
steps:
  - send: counter.increment
  - expect:
      counter.count: 2
  - send: counter.increment
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "after seq 1")
	// Execution continues past a failed expect.
	assert.Len(t, result.Trace, 2)
}

func TestRun_BadConfig(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad_config
description: configuration outside the schema
config: |
  counter: overflow: "explode"
steps:
  - send: counter.increment
`))
	require.NoError(t, err)

	_, err = Run(context.Background(), s)
	assert.Error(t, err)
}

func TestRun_AdvanceWithoutEffects(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: idle_clock
description: advancing with no timer running reduces nothing
steps:
  - advance: 1s
  - expect:
      timer.elapsed_ms: 0
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Trace)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "todos_keyed")

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, string(first.State), string(second.State))
}
