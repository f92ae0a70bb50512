package maneuver

import (
	"sync"
	"testing"

	"TagDock/internal/drone"
	"TagDock/internal/drone/pathing"
	"TagDock/internal/schedule/scheduletest"
	"TagDock/internal/state"
	"TagDock/internal/state/statetest"

	"go.uber.org/zap/zaptest"
)

type rig struct {
	store   *statetest.Store
	sleeper *scheduletest.Sleeper
	ch      *state.Channel
	search  *Search
	docking *Docking
	sup     *Supervisor

	mu     sync.Mutex
	phases []Phase
}

// newRig wires the full maneuver against store. backing, when non-nil,
// replaces store as what the channel talks to.
func newRig(t *testing.T, store *statetest.Store, backing state.Store) *rig {
	t.Helper()
	if backing == nil {
		backing = store
	}

	logger := zaptest.NewLogger(t).Sugar()
	r := &rig{store: store, sleeper: &scheduletest.Sleeper{}}
	r.ch = state.NewChannel(backing, logger)
	planner := pathing.NewPlanner(r.ch, r.sleeper, pathing.DefaultRate, logger)
	r.search = NewSearch(planner, r.ch, r.sleeper, DefaultSearchConfig(), logger)
	r.docking = NewDocking(r.ch, 0, logger)
	r.sup = NewSupervisor(r.ch, r.search, r.docking, r.sleeper, DefaultSupervisorConfig(), logger)
	r.sup.OnTransition = func(_, to Phase) {
		r.mu.Lock()
		r.phases = append(r.phases, to)
		r.mu.Unlock()
	}
	return r
}

func (r *rig) visited() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Phase(nil), r.phases...)
}

// expectedSetpoints is what an uninterrupted sweep of p at speed emits.
func expectedSetpoints(t *testing.T, p drone.Pattern, speed float64) [][2]float64 {
	t.Helper()
	var out [][2]float64
	for _, leg := range pathing.Legs(p) {
		samples, err := pathing.Samples(leg.Start, leg.End, speed, pathing.DefaultRate)
		if err != nil {
			t.Fatalf("samples: %v", err)
		}
		for _, s := range samples {
			out = append(out, [2]float64{s.X, s.Y})
		}
	}
	return out
}

// stickyDetection keeps the detection flag forced on, ignoring resets.
type stickyDetection struct {
	*statetest.Store
}

func (s stickyDetection) Set(key state.Key, value float64) error {
	if key == state.KeyDetectionFlag {
		value = 1
	}
	return s.Store.Set(key, value)
}
