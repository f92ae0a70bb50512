// Package maneuver sequences the search-and-dock maneuver: a search sweep
// interrupted by marker detection, corrective docking pulses, landing and a
// terminal hold that keeps correcting until shutdown.
package maneuver

import (
	"context"
	"errors"
	"time"

	"TagDock/internal/schedule"
	"TagDock/internal/state"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// SupervisorConfig holds the phase timings.
type SupervisorConfig struct {
	OffboardPoll time.Duration
	PreDockPause time.Duration
	SettlePause  time.Duration
	// SettlePulses is how many docking corrections are issued before landing.
	SettlePulses int
	HoldPeriod   time.Duration
}

// DefaultSupervisorConfig returns the default phase timings.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		OffboardPoll: 500 * time.Millisecond,
		PreDockPause: 2 * time.Second,
		SettlePause:  2 * time.Second,
		SettlePulses: 2,
		HoldPeriod:   300 * time.Millisecond,
	}
}

// Supervisor runs the maneuver phases in order:
// WAIT_OFFBOARD, SEARCH, PRE_DOCK_PAUSE, DOCK_SETTLE, LAND, DOCK_HOLD.
type Supervisor struct {
	ch      *state.Channel
	search  *Search
	docking *Docking
	sleeper schedule.Sleeper
	cfg     SupervisorConfig
	logger  *zap.SugaredLogger

	phase atomic.Int32

	// OnTransition, when set, is called synchronously on every phase change.
	OnTransition func(from, to Phase)
}

func NewSupervisor(
	ch *state.Channel,
	search *Search,
	docking *Docking,
	sleeper schedule.Sleeper,
	cfg SupervisorConfig,
	logger *zap.SugaredLogger,
) *Supervisor {
	return &Supervisor{
		ch:      ch,
		search:  search,
		docking: docking,
		sleeper: sleeper,
		cfg:     cfg,
		logger:  logger,
	}
}

// Phase returns the current phase. Safe to call from any goroutine.
func (s *Supervisor) Phase() Phase {
	return Phase(s.phase.Load())
}

// Run drives the maneuver until ctx is cancelled. It returns nil on shutdown
// and an error only when the maneuver cannot proceed, such as a
// *errors.MissingStateError at startup.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.ch.Validate(); err != nil {
		s.logger.Errorw("shared state incomplete, refusing to start", "error", err)
		return err
	}

	s.enter(PhaseWaitOffboard)
	if err := s.waitOffboard(ctx); err != nil {
		return s.finish(ctx, err)
	}

	s.enter(PhaseSearch)
	if err := s.ch.ResetDetection(); err != nil {
		return err
	}
	s.logger.Infow("begin search", "pattern", s.search.cfg.Pattern.Name())
	report, err := s.search.Run(ctx)
	if err != nil {
		return s.finish(ctx, err)
	}
	s.logger.Infow("search finished", "legs", report.Legs, "cancelled", report.Cancelled)

	s.enter(PhasePreDockPause)
	if err := s.sleeper.Sleep(ctx, s.cfg.PreDockPause); err != nil {
		return s.finish(ctx, err)
	}

	s.enter(PhaseDockSettle)
	for i := 0; i < s.cfg.SettlePulses; i++ {
		s.dock()
		if err := s.sleeper.Sleep(ctx, s.cfg.SettlePause); err != nil {
			return s.finish(ctx, err)
		}
	}

	s.enter(PhaseLand)
	if err := s.ch.Land(); err != nil {
		return err
	}

	s.enter(PhaseDockHold)
	for {
		if err := s.sleeper.Sleep(ctx, s.cfg.HoldPeriod); err != nil {
			return s.finish(ctx, err)
		}
		s.dock()
	}
}

func (s *Supervisor) waitOffboard(ctx context.Context) error {
	for {
		if err := s.sleeper.Sleep(ctx, s.cfg.OffboardPoll); err != nil {
			return err
		}
		ready, err := s.ch.OffboardReady()
		if err != nil {
			s.logger.Warnw("offboard status unavailable", "error", err)
			continue
		}
		if ready {
			return nil
		}
		s.logger.Infow("still waiting for offboard")
	}
}

// dock issues one docking pulse. Read failures count as no detection.
func (s *Supervisor) dock() {
	c, applied, err := s.docking.Correct()
	if err != nil {
		s.logger.Warnw("docking correction skipped", "error", err)
		return
	}
	if applied {
		s.logger.Debugw("docking correction", "x", c.X, "y", c.Y, "yaw", c.Yaw)
	}
}

// finish maps a shutdown-induced error to a clean exit.
func (s *Supervisor) finish(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		s.enter(PhaseDone)
		s.logger.Infow("shutdown requested, supervisor stopping")
		return nil
	}
	return err
}

func (s *Supervisor) enter(next Phase) {
	prev := Phase(s.phase.Swap(int32(next)))
	if prev == next {
		return
	}
	s.logger.Infow("phase transition", "from", prev.String(), "to", next.String())
	if s.OnTransition != nil {
		s.OnTransition(prev, next)
	}
}
