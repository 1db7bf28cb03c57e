package world

import (
	"context"
	"log"
	"sort"

	"dcterrain/internal/csg"
	"dcterrain/internal/meshing"
	"dcterrain/internal/octree"
	"dcterrain/internal/profiling"
)

// Consumer receives finished meshes, e.g. a renderer or a collider builder.
// Calls happen on the goroutine running Tick.
type Consumer interface {
	MeshReady(c *Chunk, mesh *meshing.ContourMesh)
	ChunkHidden(c *Chunk)
}

// NopConsumer discards everything.
type NopConsumer struct{}

func (NopConsumer) MeshReady(*Chunk, *meshing.ContourMesh) {}
func (NopConsumer) ChunkHidden(*Chunk)                     {}

// StreamerOptions configures a ChunkStreamer.
type StreamerOptions struct {
	GridSize       int        // samples per chunk axis
	ChunksPerFrame func() int // remesh budget, read every Tick
	FadeFrames     int        // 0 hides evicted chunks at once
	OperationLimit int        // operations per remesh, 0 for csg.DefaultOperationLimit
}

// ChunkStreamer turns leaf set changes into loaded, meshed chunks.
type ChunkStreamer struct {
	opts     StreamerOptions
	store    *ChunkStore
	pool     *ChunkPool
	queue    *RemeshQueue
	index    *csg.Index
	backend  meshing.Backend
	consumer Consumer
	grid     *meshing.VoxelGrid

	fading map[ChunkCoord]*Chunk
	meshed int
}

// NewChunkStreamer creates a new chunk streamer.
func NewChunkStreamer(opts StreamerOptions, index *csg.Index, backend meshing.Backend, consumer Consumer) *ChunkStreamer {
	if opts.ChunksPerFrame == nil {
		opts.ChunksPerFrame = func() int { return 1 }
	}
	if opts.OperationLimit <= 0 {
		opts.OperationLimit = csg.DefaultOperationLimit
	}
	if consumer == nil {
		consumer = NopConsumer{}
	}
	return &ChunkStreamer{
		opts:     opts,
		store:    NewChunkStore(),
		pool:     NewChunkPool(),
		queue:    NewRemeshQueue(),
		index:    index,
		backend:  backend,
		consumer: consumer,
		grid:     meshing.NewVoxelGrid(opts.GridSize),
		fading:   make(map[ChunkCoord]*Chunk),
	}
}

func (cs *ChunkStreamer) Store() *ChunkStore       { return cs.store }
func (cs *ChunkStreamer) Pool() *ChunkPool         { return cs.pool }
func (cs *ChunkStreamer) Queue() *RemeshQueue      { return cs.queue }
func (cs *ChunkStreamer) Backend() meshing.Backend { return cs.backend }

// Fading returns the number of chunks fading out.
func (cs *ChunkStreamer) Fading() int { return len(cs.fading) }

// Meshed returns the number of remeshes completed.
func (cs *ChunkStreamer) Meshed() int { return cs.meshed }

// Apply releases removed leaves, then loads added ones.
func (cs *ChunkStreamer) Apply(ch octree.Change) {
	defer profiling.Track("world.Apply")()

	for _, l := range ch.Removed {
		c, ok := cs.store.Remove(l.Center)
		if !ok {
			log.Printf("world: unload of chunk %v that was never loaded", l.Center)
			profiling.Count("world.missing_unload", 1)
			continue
		}
		c.invalidate()
		if cs.opts.FadeFrames > 0 && c.active {
			c.fade = FadeState{Fading: true, FramesRemaining: cs.opts.FadeFrames}
			cs.fading[c.center] = c
			continue
		}
		cs.release(c)
	}

	for _, l := range ch.Added {
		cs.load(l)
	}
}

func (cs *ChunkStreamer) load(l octree.Leaf) {
	key := cs.index.KeyForNode(l.Center, l.SideLength)
	if c, ok := cs.fading[l.Center]; ok {
		delete(cs.fading, l.Center)
		if c.size == l.SideLength {
			// Requested again before it finished fading: keep the mesh.
			c.fade = FadeState{}
			cs.store.Add(c)
			cs.Enqueue(c, Deferred(l.SideLength))
			return
		}
		cs.release(c)
	}

	c := cs.pool.Get()
	c.refresh(l.Center, l.SideLength, cs.opts.GridSize, key)
	cs.store.Add(c)
	cs.Enqueue(c, Deferred(l.SideLength))
}

func (cs *ChunkStreamer) release(c *Chunk) {
	cs.consumer.ChunkHidden(c)
	cs.pool.Put(c)
}

// Enqueue queues a rebuild of c with the operations currently bucketed for it.
func (cs *ChunkStreamer) Enqueue(c *Chunk, p Priority) {
	cs.queue.Push(c, p, cs.index.OperationsFor(c.key))
}

// Touch queues an immediate rebuild of every loaded chunk in keys.
func (cs *ChunkStreamer) Touch(keys []csg.CellKey) int {
	n := 0
	for _, k := range keys {
		if c := cs.store.ByCell(k); c != nil {
			cs.Enqueue(c, Immediate)
			n++
		}
	}
	return n
}

// TouchAll queues an immediate rebuild of every loaded chunk.
func (cs *ChunkStreamer) TouchAll() int {
	all := cs.store.All()
	for _, c := range all {
		cs.Enqueue(c, Immediate)
	}
	return len(all)
}

// UpdateAll queues a rebuild of every loaded chunk.
func (cs *ChunkStreamer) UpdateAll() {
	for _, c := range cs.store.All() {
		cs.Enqueue(c, Deferred(c.size))
	}
}

// Tick advances fades and rebuilds up to ChunksPerFrame chunks. Backend
// errors are returned as is; meshing.ErrCapacityExceeded is not recoverable.
func (cs *ChunkStreamer) Tick(ctx context.Context) error {
	cs.advanceFades()
	if cs.queue.Len() == 0 {
		return nil
	}
	defer profiling.Track("world.Tick")()

	budget := max(1, cs.opts.ChunksPerFrame())
	for done := 0; done < budget; done++ {
		req, ok := cs.queue.Pop()
		if !ok {
			break
		}
		if err := cs.remesh(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (cs *ChunkStreamer) advanceFades() {
	if len(cs.fading) == 0 {
		return
	}
	var done []*Chunk
	for _, c := range cs.fading {
		c.fade.FramesRemaining--
		if c.fade.FramesRemaining <= 0 {
			done = append(done, c)
		}
	}
	sort.Slice(done, func(i, j int) bool { return done[i].id < done[j].id })
	for _, c := range done {
		delete(cs.fading, c.center)
		cs.release(c)
	}
}

func (cs *ChunkStreamer) remesh(ctx context.Context, req *RemeshRequest) error {
	c := req.Chunk
	ops := req.Ops
	if len(ops) > cs.opts.OperationLimit {
		log.Printf("world: chunk %v has %d operations, using the first %d", c.center, len(ops), cs.opts.OperationLimit)
		ops = ops[:cs.opts.OperationLimit]
	}

	freq := meshing.FieldRequest{
		Size:    cs.opts.GridSize,
		Origin:  c.origin,
		Scale:   c.scale,
		Records: csg.EncodeRecords(ops, cs.opts.OperationLimit),
	}
	if err := cs.backend.ComputeField(ctx, freq, cs.grid); err != nil {
		return err
	}
	mesh, _, err := cs.backend.ExtractMesh(ctx, cs.grid, c.scale)
	if err != nil {
		return err
	}

	c.mesh.Store(mesh)
	c.active = true
	cs.meshed++
	cs.consumer.MeshReady(c, mesh)
	return nil
}
