// Package schedule provides the suspension points used by every control
// loop. Production code sleeps on a real clock; tests substitute a mock clock
// or a recording fake so rates and cancellation latency are deterministic.
package schedule

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Sleeper suspends the caller for d or until ctx is done, whichever comes
// first. It returns ctx.Err() when interrupted.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ClockSleeper is a Sleeper driven by a clock.Clock.
type ClockSleeper struct {
	clk clock.Clock
}

func New(clk clock.Clock) *ClockSleeper {
	return &ClockSleeper{clk: clk}
}

func (s *ClockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := s.clk.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Period converts an update rate in Hz into the interval between updates.
func Period(rateHz float64) time.Duration {
	return time.Duration(float64(time.Second) / rateHz)
}

