package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps collections in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *MemoryBackend) PutMany(_ context.Context, values map[string][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, v := range values {
		cp := make([]byte, len(v))
		copy(cp, v)
		b.data[k] = cp
	}
	return nil
}
