package cogeotiff

import (
	"context"
	"sync"
)

// memoryBackingStore is an in-memory BackingStore used across this
// package's tests in place of a real HTTP server or file, counting
// ReadRange calls so fetch-coalescing can be verified.
type memoryBackingStore struct {
	data []byte

	mu    sync.Mutex
	reads int
}

func newMemoryBackingStore(data []byte) *memoryBackingStore {
	return &memoryBackingStore{data: data}
}

func (m *memoryBackingStore) Name() string { return "memory" }

func (m *memoryBackingStore) Size(ctx context.Context) (int64, error) {
	return int64(len(m.data)), nil
}

func (m *memoryBackingStore) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()

	if offset < 0 || offset > int64(len(m.data)) {
		return nil, &OffsetOutOfRangeError{Offset: offset}
	}
	end := offset + length
	if end > int64(len(m.data)) {
		end = int64(len(m.data))
	}
	out := make([]byte, end-offset)
	copy(out, m.data[offset:end])
	return out, nil
}

func (m *memoryBackingStore) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
