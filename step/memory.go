package step

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store with no durability, used to unit
// test the runner and reference executors without a real transport.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func key(executionId, name string) string {
	return executionId + "\x00" + name
}

func (m *MemoryStore) Get(_ context.Context, executionId, name string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key(executionId, name)]
	return v, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, executionId, name string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key(executionId, name)] = value
	return nil
}
