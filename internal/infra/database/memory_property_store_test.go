package database

import (
	"context"
	"sync"
)

// memoryPropertyStore is an in-process PropertyStore.
type memoryPropertyStore struct {
	mu    sync.Mutex
	props map[string]string
}

func newMemoryPropertyStore() *memoryPropertyStore {
	return &memoryPropertyStore{props: make(map[string]string)}
}

func (m *memoryPropertyStore) GetProperty(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.props[key]
	return v, ok, nil
}

func (m *memoryPropertyStore) SetProperty(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
	return nil
}
