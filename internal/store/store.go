// Package store provides the in-process datastore backing the live
// dashboard. It is the source of truth for request handling; the durable
// mirror only trails it. The interface is deliberately narrow so tests can
// swap in a fake.
package store

import (
	"sort"
	"strings"
	"sync"
)

// Store is a concurrency-safe key-value store with append-only log keys.
// Record keys and log keys live in separate namespaces: Put/Get/Delete and
// ScanPrefix address records, Append/List/ListLen address logs. Values are
// opaque bytes; repositories own the encoding.
type Store interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte)
	// PutIfAbsent inserts only when the key is unused and reports whether it
	// did. Check-and-insert sequences (redirect code minting) rely on this
	// being atomic.
	PutIfAbsent(key string, value []byte) bool
	Delete(key string)
	// ScanPrefix returns the values of all record keys with the given
	// prefix, ordered by key.
	ScanPrefix(prefix string) [][]byte

	Append(key string, value []byte)
	List(key string) [][]byte
	ListLen(key string) int
	// LogKeys returns the log keys with the given prefix, ordered.
	LogKeys(prefix string) []string
}

// Memory is the mutex-guarded map implementation used in production.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
	logs    map[string][][]byte
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string][]byte),
		logs:    make(map[string][][]byte),
	}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	return v, ok
}

func (m *Memory) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = value
}

func (m *Memory) PutIfAbsent(key string, value []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[key]; exists {
		return false
	}
	m.records[key] = value
	return true
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
}

func (m *Memory) ScanPrefix(prefix string) [][]byte {
	m.mu.RLock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		values = append(values, m.records[k])
	}
	m.mu.RUnlock()
	return values
}

func (m *Memory) Append(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[key] = append(m.logs[key], value)
}

func (m *Memory) List(key string) [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.logs[key]
	out := make([][]byte, len(entries))
	copy(out, entries)
	return out
}

func (m *Memory) ListLen(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs[key])
}

func (m *Memory) LogKeys(prefix string) []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.logs))
	for k := range m.logs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
