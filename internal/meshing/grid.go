// Package meshing extracts dual contoured surfaces from sampled density grids.
package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"dcterrain/internal/density"
)

// VoxelGrid is an N×N×N block of samples indexed ((z*N)+y)*N+x.
type VoxelGrid struct {
	N       int
	Samples []density.IsoSample
}

// NewVoxelGrid allocates a grid of n points per axis.
func NewVoxelGrid(n int) *VoxelGrid {
	g := &VoxelGrid{}
	g.Reset(n)
	return g
}

// Reset resizes the grid, keeping the backing array when it is big enough.
func (g *VoxelGrid) Reset(n int) {
	total := n * n * n
	if cap(g.Samples) < total {
		g.Samples = make([]density.IsoSample, total)
	}
	g.Samples = g.Samples[:total]
	g.N = n
}

func (g *VoxelGrid) Index(x, y, z int) int {
	return ((z*g.N)+y)*g.N + x
}

func (g *VoxelGrid) At(x, y, z int) density.IsoSample {
	return g.Samples[g.Index(x, y, z)]
}

func (g *VoxelGrid) Set(x, y, z int, s density.IsoSample) {
	g.Samples[g.Index(x, y, z)] = s
}

// FillSlab samples f at origin + (x,y,z)*scale for z in [z0, z1).
func (g *VoxelGrid) FillSlab(f density.Field, origin mgl32.Vec3, scale float32, z0, z1 int) {
	for z := z0; z < z1; z++ {
		for y := 0; y < g.N; y++ {
			for x := 0; x < g.N; x++ {
				p := mgl32.Vec3{
					origin[0] + float32(x)*scale,
					origin[1] + float32(y)*scale,
					origin[2] + float32(z)*scale,
				}
				g.Samples[g.Index(x, y, z)] = f.Sample(p)
			}
		}
	}
}

// Fill samples the whole grid.
func (g *VoxelGrid) Fill(f density.Field, origin mgl32.Vec3, scale float32) {
	g.FillSlab(f, origin, scale, 0, g.N)
}

// VoxelIndexGrid maps each cell of a VoxelGrid to its vertex, or -1.
type VoxelIndexGrid struct {
	N     int // cells per axis, one less than the sample grid
	Cells []int32
}

func (g *VoxelIndexGrid) reset(n int) {
	total := n * n * n
	if cap(g.Cells) < total {
		g.Cells = make([]int32, total)
	}
	g.Cells = g.Cells[:total]
	g.N = n
	for i := range g.Cells {
		g.Cells[i] = -1
	}
}

func (g *VoxelIndexGrid) Index(x, y, z int) int {
	return ((z*g.N)+y)*g.N + x
}

func (g *VoxelIndexGrid) At(x, y, z int) int32 {
	return g.Cells[g.Index(x, y, z)]
}

// ContourMesh is the output of one extraction. Positions are relative to the
// chunk origin.
type ContourMesh struct {
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	Triangles []uint32
}

func (m *ContourMesh) VertexCount() int {
	return len(m.Vertices)
}

func (m *ContourMesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Empty reports whether the mesh has no triangles.
func (m *ContourMesh) Empty() bool {
	return m == nil || len(m.Triangles) == 0
}
