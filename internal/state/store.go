package state

import (
	"sync"

	errs "TagDock/internal/errors"
)

// Store is the shared command channel. Implementations must be safe for
// concurrent use; last write wins.
type Store interface {
	// Get returns the value for key or a *errors.MissingStateError.
	Get(key Key) (float64, error)
	Set(key Key, value float64) error
}

// Memory is an in-process Store backed by a map.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]float64
}

func NewMemory() *Memory {
	return &Memory{values: make(map[Key]float64)}
}

// NewMemoryFrom returns a Memory pre-populated with seed.
func NewMemoryFrom(seed map[Key]float64) *Memory {
	m := NewMemory()
	for k, v := range seed {
		m.values[k] = v
	}
	return m
}

func (m *Memory) Get(key Key) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return 0, &errs.MissingStateError{Key: string(key)}
	}
	return v, nil
}

func (m *Memory) Set(key Key, value float64) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

// Delete removes key, simulating an external node tearing it down.
func (m *Memory) Delete(key Key) {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
}
