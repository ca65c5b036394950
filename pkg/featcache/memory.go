package featcache

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-memory Store implementation.
// It is safe for concurrent use and intended primarily for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates a new in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([][]float32, error) {
	m.mu.RLock()
	v, ok := m.data[string(key.encode())]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	// Decoding allocates, so callers never alias stored data.
	return unmarshalMatrix(v)
}

func (m *Memory) Set(_ context.Context, key Key, mat [][]float32) error {
	val, err := marshalMatrix(mat)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[string(key.encode())] = val
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, string(key.encode()))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Count(_ context.Context, namespace string) (int, error) {
	prefix := namespacePrefix(namespace)
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Purge(_ context.Context, namespace string) error {
	prefix := namespacePrefix(namespace)
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Compile-time interface check.
var _ Store = (*Memory)(nil)
