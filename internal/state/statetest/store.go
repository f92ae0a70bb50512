// Package statetest provides a recording Store for tests.
package statetest

import (
	"sync"

	"TagDock/internal/state"
)

// Write is one recorded Set call.
type Write struct {
	Key   state.Key
	Value float64
}

// Store is a state.Memory that records every write.
type Store struct {
	*state.Memory

	mu     sync.Mutex
	writes []Write
}

// NewStore returns a recording store holding every required key, zeroed,
// plus whatever seed overrides.
func NewStore(seed map[state.Key]float64) *Store {
	values := make(map[state.Key]float64, len(state.RequiredKeys)+len(seed))
	for _, k := range state.RequiredKeys {
		values[k] = 0
	}
	for k, v := range seed {
		values[k] = v
	}
	return &Store{Memory: state.NewMemoryFrom(values)}
}

func (s *Store) Set(key state.Key, value float64) error {
	s.mu.Lock()
	s.writes = append(s.writes, Write{Key: key, Value: value})
	s.mu.Unlock()
	return s.Memory.Set(key, value)
}

// Seed sets a value without recording it, the way an external node would.
func (s *Store) Seed(key state.Key, value float64) {
	_ = s.Memory.Set(key, value)
}

// Writes returns recorded writes, optionally filtered to keys.
func (s *Store) Writes(keys ...state.Key) []Write {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		return append([]Write(nil), s.writes...)
	}
	var out []Write
	for _, w := range s.writes {
		for _, k := range keys {
			if w.Key == k {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

// Setpoints pairs each recorded rel_setpoint x write with the y write that
// follows it.
func (s *Store) Setpoints() [][2]float64 {
	var (
		out  [][2]float64
		x    float64
		seen bool
	)
	for _, w := range s.Writes(state.KeyRelSetpointX, state.KeyRelSetpointY) {
		switch w.Key {
		case state.KeyRelSetpointX:
			x, seen = w.Value, true
		case state.KeyRelSetpointY:
			if seen {
				out = append(out, [2]float64{x, w.Value})
				seen = false
			}
		}
	}
	return out
}

// Reset forgets recorded writes.
func (s *Store) Reset() {
	s.mu.Lock()
	s.writes = nil
	s.mu.Unlock()
}
