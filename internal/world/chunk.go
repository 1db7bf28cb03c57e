package world

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/csg"
	"dcterrain/internal/meshing"
	"dcterrain/internal/octree"
)

// ChunkCoord is the integer centre of a chunk, equal to its octree leaf centre.
type ChunkCoord = octree.Coord

// FadeState is the fade-out of an evicted chunk.
type FadeState struct {
	Fading          bool
	FramesRemaining int
}

// Chunk is a pooled handle for one meshed region. Handles are created by a
// ChunkPool and reused for the lifetime of the program.
type Chunk struct {
	id     int
	center ChunkCoord
	size   int
	origin mgl32.Vec3
	scale  float32
	key    csg.CellKey

	mesh   atomic.Pointer[meshing.ContourMesh]
	active bool
	fade   FadeState
	ticket uint64
}

// ID is the pool serial of the handle and never changes.
func (c *Chunk) ID() int { return c.id }

// GridPosition returns the chunk's centre.
func (c *Chunk) GridPosition() ChunkCoord { return c.center }

// WorldPosition returns the minimum corner, where mesh positions are relative to.
func (c *Chunk) WorldPosition() mgl32.Vec3 { return c.origin }

// Size returns the side length in world units.
func (c *Chunk) Size() int { return c.size }

// Scale returns the world distance between samples.
func (c *Chunk) Scale() float32 { return c.scale }

// CellKey returns the operation bucket the chunk reads edits from.
func (c *Chunk) CellKey() csg.CellKey { return c.key }

// Mesh returns the last published mesh, or nil before the first build.
// Safe to call from any goroutine.
func (c *Chunk) Mesh() *meshing.ContourMesh { return c.mesh.Load() }

// Active reports whether the chunk should be drawn.
func (c *Chunk) Active() bool { return c.active }

// Fade returns the current fade-out state.
func (c *Chunk) Fade() FadeState { return c.fade }

// FadeAlpha returns 1 for a solid chunk, falling towards 0 while fading.
func (c *Chunk) FadeAlpha(total int) float32 {
	if !c.fade.Fading || total <= 0 {
		return 1
	}
	return float32(c.fade.FramesRemaining) / float32(total)
}

// refresh repositions the handle for a new leaf. gridSize is the number of
// samples per axis; neighbouring chunks overlap by one cell.
func (c *Chunk) refresh(center ChunkCoord, size, gridSize int, key csg.CellKey) {
	c.center = center
	c.size = size
	h := float32(size) / 2
	c.origin = mgl32.Vec3{float32(center[0]) - h, float32(center[1]) - h, float32(center[2]) - h}
	c.scale = float32(size) / float32(gridSize-2)
	c.key = key
	c.fade = FadeState{}
	c.ticket++
}

// invalidate makes queued remesh requests for the chunk stale.
func (c *Chunk) invalidate() {
	c.ticket++
}

func (c *Chunk) deactivate() {
	c.active = false
	c.fade = FadeState{}
	c.mesh.Store(nil)
	c.ticket++
}
