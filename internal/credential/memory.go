package credential

import (
	"context"
	"sync"
)

// MemoryBackend keeps pairs in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu    sync.Mutex
	pairs map[string]Pair
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{pairs: make(map[string]Pair)}
}

func (b *MemoryBackend) Load(_ context.Context, profile string) (Pair, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pairs[profile], nil
}

func (b *MemoryBackend) Save(_ context.Context, profile string, pair Pair) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pairs[profile] = pair
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, profile string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pairs, profile)
	return nil
}
