package world

import (
	"sort"
	"sync"

	"dcterrain/internal/csg"
)

// ChunkStore indexes loaded chunks by centre and by operation bucket.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	byCell   map[csg.CellKey]*Chunk
	mu       sync.RWMutex
	modCount uint64 // bumped on every add and remove
}

// NewChunkStore creates a new chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
		byCell: make(map[csg.CellKey]*Chunk),
	}
}

// Get returns the chunk loaded at center, or nil.
func (cs *ChunkStore) Get(center ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[center]
}

// ByCell returns the chunk reading operations from key, or nil.
func (cs *ChunkStore) ByCell(key csg.CellKey) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.byCell[key]
}

// Add stores c under its current centre and key.
func (cs *ChunkStore) Add(c *Chunk) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.chunks[c.center] = c
	cs.byCell[c.key] = c
	cs.modCount++
}

// Remove drops the chunk at center and returns it.
func (cs *ChunkStore) Remove(center ChunkCoord) (*Chunk, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.chunks[center]
	if !ok {
		return nil, false
	}
	delete(cs.chunks, center)
	if cs.byCell[c.key] == c {
		delete(cs.byCell, c.key)
	}
	cs.modCount++
	return c, true
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// All returns the loaded chunks ordered by pool id.
func (cs *ChunkStore) All() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// GetModCount returns how many times chunks were added or removed.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}
