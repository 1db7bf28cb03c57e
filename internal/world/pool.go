package world

// ChunkPool hands out Chunk handles, reusing released ones in FIFO order.
type ChunkPool struct {
	free      []*Chunk
	allocated int
}

// NewChunkPool creates an empty pool. Handles are constructed lazily.
func NewChunkPool() *ChunkPool {
	return &ChunkPool{}
}

// Prealloc constructs n handles up front.
func (p *ChunkPool) Prealloc(n int) {
	for range n {
		p.free = append(p.free, p.construct())
	}
}

// Get returns a free handle, constructing one only if none is free.
func (p *ChunkPool) Get() *Chunk {
	if len(p.free) == 0 {
		return p.construct()
	}
	c := p.free[0]
	p.free[0] = nil
	p.free = p.free[1:]
	return c
}

// Put deactivates c and returns it to the pool.
func (p *ChunkPool) Put(c *Chunk) {
	c.deactivate()
	p.free = append(p.free, c)
}

func (p *ChunkPool) construct() *Chunk {
	p.allocated++
	return &Chunk{id: p.allocated}
}

// Allocated returns how many handles were ever constructed.
func (p *ChunkPool) Allocated() int { return p.allocated }

// Free returns how many handles are waiting for reuse.
func (p *ChunkPool) Free() int { return len(p.free) }
