package timer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcademo/internal/effect"
	"github.com/roach88/tcademo/internal/store"
	"github.com/roach88/tcademo/internal/testutil"
)

func newFeature() Feature {
	return Feature{Clock: testutil.NewManualClock(time.Unix(0, 0)), Period: DefaultPeriod}
}

func reduceAll(f Feature, state State, actions ...Action) State {
	for _, a := range actions {
		state, _ = f.Reduce(state, a)
	}
	return state
}

func TestTimer_StartRequestsCancellableTicks(t *testing.T) {
	f := newFeature()
	next, e := f.Reduce(State{}, Start{})

	assert.True(t, next.Running)
	assert.Equal(t, []effect.ID{TimerID}, e.Started())
}

func TestTimer_StartWhileRunningIsNoop(t *testing.T) {
	f := newFeature()
	running := State{Elapsed: time.Second, Running: true}

	next, e := f.Reduce(running, Start{})
	assert.Equal(t, running, next)
	assert.True(t, e.IsNone())
}

func TestTimer_ScenarioFiveTicksStopReset(t *testing.T) {
	f := newFeature()

	state := reduceAll(f, State{}, Start{}, Tick{}, Tick{}, Tick{}, Tick{}, Tick{})
	assert.Equal(t, 500*time.Millisecond, state.Elapsed)
	assert.True(t, state.Running)

	state, e := f.Reduce(state, Stop{})
	assert.Equal(t, State{Elapsed: 500 * time.Millisecond}, state)
	assert.Equal(t, []effect.ID{TimerID}, e.Cancelled())

	state, e = f.Reduce(state, Reset{})
	assert.Equal(t, State{}, state)
	assert.Equal(t, []effect.ID{TimerID}, e.Cancelled())
}

func TestTimer_TickWhileStoppedIsNoop(t *testing.T) {
	f := newFeature()
	for _, stopped := range []State{{}, {Elapsed: 300 * time.Millisecond}} {
		next, e := f.Reduce(stopped, Tick{})
		assert.Equal(t, stopped, next)
		assert.True(t, e.IsNone())
	}
}

func TestTimer_StopTwiceIsIdempotent(t *testing.T) {
	f := newFeature()
	running := State{Elapsed: 200 * time.Millisecond, Running: true}

	once := reduceAll(f, running, Stop{})
	twice := reduceAll(f, once, Stop{})
	assert.Equal(t, once, twice)
}

func TestTimer_StartThenStopKeepsElapsed(t *testing.T) {
	f := newFeature()
	before := State{Elapsed: 700 * time.Millisecond}

	after := reduceAll(f, before, Start{}, Stop{})
	assert.Equal(t, before, after)
}

func TestTimer_ResetFromAnyState(t *testing.T) {
	f := newFeature()
	for _, s := range []State{{}, {Elapsed: time.Second}, {Elapsed: time.Second, Running: true}} {
		next, e := f.Reduce(s, Reset{})
		assert.Equal(t, State{}, next)
		assert.Equal(t, []effect.ID{TimerID}, e.Cancelled())
	}
}

func TestTimer_DefaultPeriod(t *testing.T) {
	f := Feature{Clock: effect.RealClock{}}
	next := reduceAll(f, State{Running: true}, Tick{})
	assert.Equal(t, DefaultPeriod, next.Elapsed)
}

func TestTimer_ThroughStoreWithManualClock(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(0, 0))
	f := Feature{Clock: clock, Period: DefaultPeriod}
	s := store.New[State, Action](State{}, f)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.Send(Start{})
	require.NoError(t, clock.BlockUntil(ctx, 1))

	fired := clock.Advance(500 * time.Millisecond)
	require.Equal(t, 5, fired)
	require.NoError(t, s.AwaitSeq(ctx, 1+int64(fired)))
	assert.Equal(t, State{Elapsed: 500 * time.Millisecond, Running: true}, s.State())

	s.Send(Stop{})
	assert.False(t, s.Effects().Active(TimerID))
	assert.Equal(t, 0, clock.Advance(time.Second))
	assert.Equal(t, State{Elapsed: 500 * time.Millisecond}, s.State())

	s.Send(Reset{})
	assert.Equal(t, State{}, s.State())
}

func TestState_JSONAndFormatted(t *testing.T) {
	s := State{Elapsed: 61*time.Second + 500*time.Millisecond, Running: true}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"elapsed_ms":61500,"running":true}`, string(data))
	assert.Equal(t, "01:01.5", s.Formatted())
	assert.Equal(t, "00:00.0", State{}.Formatted())
}
