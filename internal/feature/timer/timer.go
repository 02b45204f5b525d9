// Package timer is a stopwatch driven by a repeating effect.
package timer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/tcademo/internal/effect"
)

// DefaultPeriod is the tick interval when none is configured.
const DefaultPeriod = 100 * time.Millisecond

// TimerID identifies the running tick effect. It is scoped by the parent
// that mounts the feature, so separate timers cancel independently.
var TimerID = effect.NewID("timer")

// State is the elapsed time and whether ticks are counted.
type State struct {
	Elapsed time.Duration
	Running bool
}

// MarshalJSON renders Elapsed as whole milliseconds.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ElapsedMS int64 `json:"elapsed_ms"`
		Running   bool  `json:"running"`
	}{s.Elapsed.Milliseconds(), s.Running})
}

// Formatted renders Elapsed as mm:ss.t (tenths of a second).
func (s State) Formatted() string {
	tenths := int64(s.Elapsed / (100 * time.Millisecond))
	return fmt.Sprintf("%02d:%02d.%d", tenths/600, tenths/10%60, tenths%10)
}

// Action is the closed set of timer actions.
type Action interface {
	timerAction()
}

// Start begins counting ticks.
type Start struct{}

// Stop stops counting and cancels the tick effect.
type Stop struct{}

// Reset clears elapsed time, stops, and cancels the tick effect.
type Reset struct{}

// Tick is one period elapsing. It is sent by the tick effect.
type Tick struct{}

func (Start) timerAction() {}
func (Stop) timerAction()  {}
func (Reset) timerAction() {}
func (Tick) timerAction()  {}

// Feature configures the timer.
type Feature struct {
	Clock  effect.Clock
	Period time.Duration
}

func (f Feature) period() time.Duration {
	if f.Period <= 0 {
		return DefaultPeriod
	}
	return f.Period
}

// Reduce implements reducer.Reducer.
//
// Start while running is ignored so the running tick effect keeps its
// phase. Tick while stopped is ignored: a tick already in flight when Stop
// was reduced may still arrive once.
func (f Feature) Reduce(state State, action Action) (State, effect.Effect[Action]) {
	switch action.(type) {
	case Start:
		if state.Running {
			return state, effect.None[Action]()
		}
		state.Running = true
		tick := effect.Timer[Action](f.Clock, f.period(), Tick{})
		return state, effect.Run(tick).Cancellable(TimerID)

	case Stop:
		state.Running = false
		return state, effect.Cancel[Action](TimerID)

	case Reset:
		state.Elapsed = 0
		state.Running = false
		return state, effect.Cancel[Action](TimerID)

	case Tick:
		if state.Running {
			state.Elapsed += f.period()
		}
	}
	return state, effect.None[Action]()
}
