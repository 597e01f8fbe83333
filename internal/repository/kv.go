package repository

import (
	"context"
	"sync"
)

// KVStore is the durable key-value substrate every collection is persisted in.
// Each key holds one JSON document.
type KVStore interface {
	// Get returns the value stored under key.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - key: collection key.
	// Returns:
	//   - []byte: stored value, nil when absent.
	//   - bool: true if the key exists.
	//   - error: non-nil if the backend cannot be read.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - key: collection key.
	//   - value: serialized document.
	// Returns:
	//   - error: non-nil if the backend cannot be written.
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryKV is an in-process KVStore.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.mu.Lock()
	m.data[key] = stored
	m.mu.Unlock()
	return nil
}
