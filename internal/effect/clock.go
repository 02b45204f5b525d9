package effect

import (
	"context"
	"time"
)

// Clock creates tickers. Production code uses RealClock; tests use a manual
// clock that only moves when told to.
type Clock interface {
	// Ticker returns a ticker firing every d. ctx is the lifetime of the
	// consumer; implementations may use it to stop delivering early.
	Ticker(ctx context.Context, d time.Duration) Ticker
}

// Ticker delivers fire times on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is a Clock backed by package time.
type RealClock struct{}

// Ticker implements Clock.
func (RealClock) Ticker(_ context.Context, d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
