package effect

import (
	"context"
	"time"
)

// Timer returns a producer that sends tick once per period until cancelled.
//
// A fire that is received after cancellation is not sent. Ticks from one
// timer are sent in the order they fire.
func Timer[A any](clock Clock, period time.Duration, tick A) Producer[A] {
	return func(ctx context.Context, send func(A)) error {
		t := clock.Ticker(ctx, period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C():
				if ctx.Err() != nil {
					return nil
				}
				send(tick)
			}
		}
	}
}
