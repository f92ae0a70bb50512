// Package scheduletest provides a Sleeper that returns immediately and
// records what it was asked to do.
package scheduletest

import (
	"context"
	"sync"
	"time"
)

// Sleeper records every requested duration. OnSleep, when set, runs after
// each request is recorded with the 1-based call number; tests use it to
// flip shared state or cancel a context at a precise point.
type Sleeper struct {
	OnSleep func(call int, d time.Duration)

	mu    sync.Mutex
	calls []time.Duration
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	n := len(s.calls)
	hook := s.OnSleep
	s.mu.Unlock()

	if hook != nil {
		hook(n, d)
	}
	return ctx.Err()
}

func (s *Sleeper) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

// Count returns how many sleeps of exactly d were requested.
func (s *Sleeper) Count(d time.Duration) int {
	n := 0
	for _, c := range s.Calls() {
		if c == d {
			n++
		}
	}
	return n
}

// Total is the simulated time spent sleeping.
func (s *Sleeper) Total() time.Duration {
	var total time.Duration
	for _, c := range s.Calls() {
		total += c
	}
	return total
}
