package maneuver

import (
	"context"
	"testing"
	"time"

	"TagDock/internal/drone"
	"TagDock/internal/state"
	"TagDock/internal/state/statetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	samplePeriod = 100 * time.Millisecond
	legPause     = 2 * time.Second
)

func TestSearchFullSweep(t *testing.T) {
	r := newRig(t, statetest.NewStore(nil), nil)

	report, err := r.search.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchReport{Legs: 8, Cancelled: false}, report)

	want := expectedSetpoints(t, drone.LawnmowerPattern(0.6), 0.1)
	assert.Len(t, want, 50+60+100+60+100+60+100+60)
	assert.Equal(t, want, r.store.Setpoints())

	assert.Equal(t, len(want), r.sleeper.Count(samplePeriod))
	assert.Equal(t, 8, r.sleeper.Count(legPause))
}

func TestSearchVisitsWaypointsInOrder(t *testing.T) {
	r := newRig(t, statetest.NewStore(nil), nil)

	_, err := r.search.Run(context.Background())
	require.NoError(t, err)

	path := drone.LawnmowerPattern(0.6).Path()
	next := 1
	for _, sp := range r.store.Setpoints() {
		if next < len(path) && sp == [2]float64{path[next].X, path[next].Y} {
			next++
		}
	}
	assert.Equal(t, len(path), next, "every waypoint reached in pattern order")
}

func TestSearchDetectedBeforeFirstLeg(t *testing.T) {
	store := statetest.NewStore(map[state.Key]float64{state.KeyDetectionFlag: 1})
	r := newRig(t, store, nil)

	report, err := r.search.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchReport{Legs: 0, Cancelled: true}, report)
	assert.Empty(t, store.Writes())
	assert.Empty(t, r.sleeper.Calls())
}

func TestSearchCancelledMidLeg(t *testing.T) {
	store := statetest.NewStore(nil)
	r := newRig(t, store, nil)

	// legs 1 and 2 plus their pauses, then 20 samples into leg 3
	trigger := 50 + 1 + 60 + 1 + 20
	r.sleeper.OnSleep = func(call int, _ time.Duration) {
		if call == trigger {
			store.Seed(state.KeyDetectionFlag, 1)
		}
	}

	report, err := r.search.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchReport{Legs: 2, Cancelled: true}, report)

	got := store.Setpoints()
	require.Len(t, got, 50+60+20)
	assert.NotEqual(t, [2]float64{-0.5, 0.6}, got[len(got)-1], "leg 3 must not reach its end")
	// no settle pause after the interrupted leg and nothing from leg 4
	assert.Equal(t, 2, r.sleeper.Count(legPause))
	assert.Len(t, r.sleeper.Calls(), trigger)
}

func TestSearchDetectedAtEndOfLegSkipsPause(t *testing.T) {
	store := statetest.NewStore(nil)
	r := newRig(t, store, nil)
	r.sleeper.OnSleep = func(call int, _ time.Duration) {
		if call == 50 {
			store.Seed(state.KeyDetectionFlag, 1)
		}
	}

	report, err := r.search.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchReport{Legs: 1, Cancelled: true}, report)
	assert.Len(t, store.Setpoints(), 50)
	assert.Zero(t, r.sleeper.Count(legPause))
}

func TestSearchShutdownBetweenLegs(t *testing.T) {
	store := statetest.NewStore(nil)
	r := newRig(t, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.sleeper.OnSleep = func(_ int, d time.Duration) {
		if d == legPause {
			cancel()
		}
	}

	report, err := r.search.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Legs)
	assert.Len(t, store.Setpoints(), 50)
}

func TestSearchConePattern(t *testing.T) {
	store := statetest.NewStore(nil)
	r := newRig(t, store, nil)
	cfg := DefaultSearchConfig()
	cfg.Pattern = drone.ConePattern()
	r.search = NewSearch(r.search.planner, r.ch, r.sleeper, cfg, r.search.logger)

	report, err := r.search.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, report.Legs)
	assert.Equal(t, expectedSetpoints(t, drone.ConePattern(), 0.1), store.Setpoints())
}
