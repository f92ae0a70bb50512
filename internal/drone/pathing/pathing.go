// Package pathing turns a pair of setpoints into a time-sampled straight-line
// trajectory and streams it to the shared command channel.
package pathing

import (
	"context"
	"fmt"
	"math"
	"time"

	"TagDock/internal/common"
	"TagDock/internal/drone"
	errs "TagDock/internal/errors"
	"TagDock/internal/schedule"
	"TagDock/internal/state"

	"go.uber.org/zap"
)

// DefaultRate is the setpoint update rate in Hz.
const DefaultRate = 10.0

// Result is how a Follow call ended.
type Result int

const (
	Completed Result = iota + 1
	Cancelled
)

func (r Result) String() string {
	switch r {
	case Completed:
		return "COMPLETED"
	case Cancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// SampleCount is the number of setpoints emitted for a leg of length meters
// flown at speed m/s with rate updates per second.
//
// A zero-length leg gets a single sample. Any other leg gets at least two so
// that both endpoints are always emitted.
func SampleCount(length, speed, rate float64) int {
	if length == 0 {
		return 1
	}
	n := int(math.Round(length / speed * rate))
	if n < 2 {
		return 2
	}
	return n
}

// Samples linearly interpolates from start to end, inclusive of both.
func Samples(start, end drone.Setpoint, speed, rate float64) ([]drone.Setpoint, error) {
	if !common.IsFinite(speed) || speed <= 0 {
		return nil, fmt.Errorf("speed %v: %w", speed, errs.ErrInvalidSpeed)
	}
	if !common.IsFinite(start.X, start.Y, end.X, end.Y) {
		return nil, fmt.Errorf("leg %v -> %v: %w", start, end, errs.ErrInvalidSetpoint)
	}

	leg := Leg{Start: start, End: end}
	n := SampleCount(leg.Length(), speed, rate)
	if n == 1 {
		return []drone.Setpoint{start}, nil
	}

	out := make([]drone.Setpoint, n)
	for i := range out {
		t := float64(i) / float64(n-1)
		out[i] = drone.Setpoint{
			X: common.Lerp(start.X, end.X, t),
			Y: common.Lerp(start.Y, end.Y, t),
		}
	}
	// exact endpoint regardless of rounding in Lerp
	out[n-1] = end
	return out, nil
}

// Planner streams interpolated setpoints at a fixed rate, checking the
// detection flag before every sample.
type Planner struct {
	ch      *state.Channel
	sleeper schedule.Sleeper
	rate    float64
	logger  *zap.SugaredLogger
}

func NewPlanner(ch *state.Channel, sleeper schedule.Sleeper, rate float64, logger *zap.SugaredLogger) *Planner {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Planner{ch: ch, sleeper: sleeper, rate: rate, logger: logger}
}

// Period is the time between two emitted setpoints.
func (p *Planner) Period() time.Duration {
	return schedule.Period(p.rate)
}

// Follow flies the straight line from start to end at speed. It returns
// Cancelled as soon as a detection is seen, before emitting the next sample.
//
// ctx cancellation does not cut the per-sample sleeps short; a leg ends only
// by completion or detection.
func (p *Planner) Follow(ctx context.Context, start, end drone.Setpoint, speed float64) (Result, error) {
	samples, err := Samples(start, end, speed, p.rate)
	if err != nil {
		return 0, err
	}

	legCtx := context.WithoutCancel(ctx)
	period := p.Period()

	for i, sp := range samples {
		if p.ch.Detected() {
			p.logger.Debugw("leg cancelled by detection", "sample", i, "of", len(samples))
			return Cancelled, nil
		}
		if err := p.ch.SetRelSetpoint(sp.X, sp.Y); err != nil {
			return 0, err
		}
		if err := p.sleeper.Sleep(legCtx, period); err != nil {
			return 0, err
		}
	}
	return Completed, nil
}
