// Package store provides the key-value persistence behind plans and settings.
package store

import (
	"context"
	"sync"
)

// Keys under which snapshots are persisted.
const (
	KeyPayments = "payments"
	KeySettings = "settings"
)

// KV is an atomic whole-value key-value store.
type KV interface {
	// Get returns the value stored under key; ok is false when it is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value under key.
	Put(ctx context.Context, key string, value []byte) error
}

// Memory is an in-process KV, used for tests and dry runs.
type Memory struct {
	mu     sync.Mutex
	values map[string][]byte
	// FailPut, when set, is returned from every Put.
	FailPut error
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return m.FailPut
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}
