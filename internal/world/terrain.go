package world

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/csg"
	"dcterrain/internal/meshing"
	"dcterrain/internal/octree"
	"dcterrain/internal/profiling"
)

// Options configures a Terrain.
type Options struct {
	GridSize        int
	WorldCenter     ChunkCoord
	WorldSize       int
	MinNodeSize     int
	UpdateFrequency int // frames between octree evaluations, at least 1
	ChunksPerFrame  func() int
	FadeFrames      int
	PerLevelRadius  float32
	OperationLimit  int
}

// Terrain ties the octree, the operation index and the streamer together.
// It is driven by calling Tick once per frame from a single goroutine.
type Terrain struct {
	opts     Options
	tree     *octree.Tree
	index    *csg.Index
	streamer *ChunkStreamer
	leaves   octree.LeafSet
	frame    int
}

// NewTerrain creates an empty terrain. Nothing is loaded until the first Tick.
func NewTerrain(opts Options, backend meshing.Backend, consumer Consumer) *Terrain {
	if opts.UpdateFrequency < 1 {
		opts.UpdateFrequency = 1
	}
	tree := octree.New(opts.WorldCenter, opts.WorldSize, opts.MinNodeSize)
	index := csg.NewIndex(tree.Origin(), tree.MinNodeSize(), opts.PerLevelRadius, csg.GridOverlap(opts.GridSize))
	streamer := NewChunkStreamer(StreamerOptions{
		GridSize:       opts.GridSize,
		ChunksPerFrame: opts.ChunksPerFrame,
		FadeFrames:     opts.FadeFrames,
		OperationLimit: opts.OperationLimit,
	}, index, backend, consumer)
	return &Terrain{
		opts:     opts,
		tree:     tree,
		index:    index,
		streamer: streamer,
		leaves:   make(octree.LeafSet),
	}
}

func (t *Terrain) Tree() *octree.Tree       { return t.tree }
func (t *Terrain) Index() *csg.Index        { return t.index }
func (t *Terrain) Streamer() *ChunkStreamer { return t.streamer }
func (t *Terrain) Leaves() octree.LeafSet   { return t.leaves }
func (t *Terrain) Frame() int               { return t.frame }
func (t *Terrain) Chunks() []*Chunk         { return t.streamer.store.All() }

// Tick runs one frame: every UpdateFrequency frames the octree is
// re-evaluated for viewpoints and the leaf changes applied, then queued
// remeshes are drained within the per-frame budget.
func (t *Terrain) Tick(ctx context.Context, viewpoints []octree.Viewpoint) error {
	defer profiling.Track("terrain.Tick")()
	if t.frame%t.opts.UpdateFrequency == 0 {
		t.Refresh(viewpoints)
	}
	t.frame++
	return t.streamer.Tick(ctx)
}

// Refresh re-evaluates the octree immediately.
func (t *Terrain) Refresh(viewpoints []octree.Viewpoint) octree.Change {
	defer profiling.Track("terrain.Refresh")()
	for _, vp := range viewpoints {
		if vp.Importance > 0 {
			t.tree.Include(vp.Position)
		}
	}
	t.tree.Evaluate(viewpoints)
	next := t.tree.LeafNodes()
	ch := octree.Diff(t.leaves, next)
	t.streamer.Apply(ch)
	t.leaves = next
	return ch
}

// AddOperation records a user edit and queues loaded chunks it reaches for
// an immediate rebuild. It returns the touched cells, nil for a global edit,
// which rebuilds every loaded chunk.
func (t *Terrain) AddOperation(position mgl32.Vec3, radius float32, shape csg.Shape, kind csg.Kind) []csg.CellKey {
	op := csg.Operation{Position: position, Radius: radius, Shape: shape, Kind: kind}
	keys := t.index.AddOperation(op)
	if op.Global() {
		t.streamer.TouchAll()
		return nil
	}
	t.streamer.Touch(keys)
	return keys
}

// AddSphere adds solid.
func (t *Terrain) AddSphere(position mgl32.Vec3, radius float32) []csg.CellKey {
	return t.AddOperation(position, radius, csg.Sphere, csg.Union)
}

// RemoveSphere carves a hole.
func (t *Terrain) RemoveSphere(position mgl32.Vec3, radius float32) []csg.CellKey {
	return t.AddOperation(position, radius, csg.Sphere, csg.Subtraction)
}

// UpdateAll queues every loaded chunk for a rebuild.
func (t *Terrain) UpdateAll() {
	t.streamer.UpdateAll()
}

// Settle ticks without moving until no remesh work is left or maxFrames
// have run. It returns the number of frames run.
func (t *Terrain) Settle(ctx context.Context, viewpoints []octree.Viewpoint, maxFrames int) (int, error) {
	for i := 0; i < maxFrames; i++ {
		if err := t.Tick(ctx, viewpoints); err != nil {
			return i + 1, err
		}
		if t.streamer.queue.Len() == 0 && t.streamer.Fading() == 0 {
			return i + 1, nil
		}
	}
	return maxFrames, nil
}
