package storage

import (
	"fmt"
	"sync"
)

// Memory is an in-memory KV used for tests and throwaway sessions. It is
// guarded by an RWMutex for concurrent reads/writes. An optional quota (in
// bytes of stored keys+values) makes quota-exceeded handling testable.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]string
	quota int
}

// NewMemory constructs an empty in-memory KV with no quota.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// NewMemoryWithQuota constructs an in-memory KV that rejects writes once the
// total stored bytes would exceed quota.
func NewMemoryWithQuota(quota int) *Memory {
	return &Memory{data: make(map[string]string), quota: quota}
}

// Get implements KV.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		used := 0
		for k, v := range m.data {
			if k == key {
				continue
			}
			used += len(k) + len(v)
		}
		if used+len(key)+len(value) > m.quota {
			return fmt.Errorf("%w: cannot store %d bytes under %q", ErrQuotaExceeded, len(value), key)
		}
	}
	m.data[key] = value
	return nil
}

// Remove implements KV.
func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Broken is a KV whose every operation fails with ErrUnavailable, standing in
// for a disabled storage medium in tests.
type Broken struct{}

// Get implements KV.
func (Broken) Get(string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: storage is disabled", ErrUnavailable)
}

// Set implements KV.
func (Broken) Set(string, string) error {
	return fmt.Errorf("%w: storage is disabled", ErrUnavailable)
}

// Remove implements KV.
func (Broken) Remove(string) error {
	return fmt.Errorf("%w: storage is disabled", ErrUnavailable)
}
