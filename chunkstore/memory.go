package chunkstore

import (
	"sync"

	"github.com/conjurernix/atomdb/hash"
)

// Memory is an in-process ChunkStore backed by a map, safe for concurrent
// put/get, grounded on graviton's files map[uint32]*file plus its
// commitsync sync.RWMutex (store.go).
type Memory struct {
	mu     sync.RWMutex
	chunks map[hash.Hash][]byte
}

// NewMemory returns an empty in-memory chunk store.
func NewMemory() *Memory {
	return &Memory{chunks: make(map[hash.Hash][]byte)}
}

func (m *Memory) Put(b []byte) (hash.Hash, error) {
	h := hash.Of(b)

	m.mu.RLock()
	_, exists := m.chunks[h]
	m.mu.RUnlock()
	if exists {
		return h, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.chunks[h]; !exists {
		cp := make([]byte, len(b))
		copy(cp, b)
		m.chunks[h] = cp
	}
	return h, nil
}

func (m *Memory) Get(h hash.Hash) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.chunks[h]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp, true, nil
}
