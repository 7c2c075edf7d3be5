package storage

import (
	"context"
	"sync"
)

var _ Storage = (*InMemory)(nil)

// InMemory is a process-local Storage, used in tests and with STORAGE_DRIVER=memory.
type InMemory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewInMemory() *InMemory {
	return &InMemory{values: make(map[string]string)}
}

func (m *InMemory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *InMemory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *InMemory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Len reports the number of stored keys.
func (m *InMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
