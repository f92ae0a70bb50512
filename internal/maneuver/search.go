package maneuver

import (
	"context"
	"fmt"
	"time"

	"TagDock/internal/drone"
	"TagDock/internal/drone/pathing"
	"TagDock/internal/schedule"
	"TagDock/internal/state"

	"go.uber.org/zap"
)

// SearchConfig parameterizes the search sweep.
type SearchConfig struct {
	Pattern drone.Pattern
	// Speed along each leg, m/s.
	Speed float64
	// LegPause is the settle time between two legs.
	LegPause time.Duration
}

// DefaultSearchConfig sweeps the lawnmower pattern at 0.1 m/s with a 2 s
// settle between legs.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Pattern:  drone.LawnmowerPattern(drone.DefaultLateralScale),
		Speed:    0.1,
		LegPause: 2 * time.Second,
	}
}

// SearchReport summarizes a search run.
type SearchReport struct {
	// Legs is the number of legs flown to completion, in pattern order.
	Legs      int
	Cancelled bool
}

// Search flies a pattern leg by leg until it is exhausted or a detection
// cancels it.
type Search struct {
	planner *pathing.Planner
	ch      *state.Channel
	sleeper schedule.Sleeper
	cfg     SearchConfig
	legs    []pathing.Leg
	logger  *zap.SugaredLogger
}

func NewSearch(planner *pathing.Planner, ch *state.Channel, sleeper schedule.Sleeper, cfg SearchConfig, logger *zap.SugaredLogger) *Search {
	return &Search{
		planner: planner,
		ch:      ch,
		sleeper: sleeper,
		cfg:     cfg,
		legs:    pathing.Legs(cfg.Pattern),
		logger:  logger,
	}
}

// Run executes the pattern in order. A detection before or after a leg ends
// the search without the settle pause. Shutdown is honored only between legs
// and during the settle pause, in which case the context error is returned.
func (s *Search) Run(ctx context.Context) (SearchReport, error) {
	var report SearchReport

	for i, leg := range s.legs {
		if s.ch.Detected() {
			report.Cancelled = true
			return report, nil
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		s.logger.Infow("setting new waypoint", "leg", i+1, "x", leg.End.X, "y", leg.End.Y)
		res, err := s.planner.Follow(ctx, leg.Start, leg.End, s.cfg.Speed)
		if err != nil {
			return report, fmt.Errorf("leg %d %v -> %v: %w", i+1, leg.Start, leg.End, err)
		}
		if res == pathing.Completed {
			report.Legs++
		}

		if res == pathing.Cancelled || s.ch.Detected() {
			report.Cancelled = true
			return report, nil
		}
		if err := s.sleeper.Sleep(ctx, s.cfg.LegPause); err != nil {
			return report, err
		}
	}
	return report, nil
}
