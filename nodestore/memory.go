package nodestore

import (
	"bytes"
	"sync"

	"github.com/datatrails/go-datatrails-mmr/mmr"
)

// MemoryStore is a map backed mmr.NodeStore. It is not durable and is
// intended for tests and short lived tooling.
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     map[uint64]mmr.Node
	size      uint64
	leafCount uint64
	root      []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nodes: make(map[uint64]mmr.Node)}
}

func (s *MemoryStore) Get(i uint64) (mmr.Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[i]
	return n, ok, nil
}

func (s *MemoryStore) Size() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *MemoryStore) LeafCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leafCount
}

func (s *MemoryStore) Root() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.root)
}

func (s *MemoryStore) Append(batch mmr.AppendBatch) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := s.size
	for _, n := range batch.Nodes {
		s.nodes[s.size] = n
		s.size++
	}
	s.leafCount = batch.LeafCount
	s.root = append([]byte(nil), batch.Root...)
	return first, nil
}
