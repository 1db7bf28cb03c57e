package meshing

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"dcterrain/internal/profiling"
	"dcterrain/internal/solver"
)

// ErrCapacityExceeded means a grid is larger than the buffers sized for it.
// It is a configuration error and callers should not retry.
var ErrCapacityExceeded = errors.New("meshing: grid exceeds configured capacity")

// Params are the per-cell tunables of vertex placement.
type Params struct {
	// CenterBias weights the three axis constraints pulling the vertex to the
	// cell centre.
	CenterBias float32
	// MaxCornerDistance drops corners whose |distance|, in cells, exceeds it.
	MaxCornerDistance float32
	// Clamp keeps vertices inside their cell grown by ClampRange on each side.
	Clamp      bool
	ClampRange float32
}

// DefaultParams returns the settings used by the tools.
func DefaultParams() Params {
	return Params{
		CenterBias:        0.05,
		MaxCornerDistance: 1.5,
		Clamp:             true,
		ClampRange:        0,
	}
}

// Stats describes one extraction.
type Stats struct {
	Cells             int // cells that produced a vertex
	SingularCells     int // cells that fell back to the centre
	SkippedCorners    int // crossing corners dropped by MaxCornerDistance
	InconsistentQuads int // far edges whose neighbour cell had no vertex
}

// Mesher runs dual contouring. It keeps scratch buffers between calls and is
// not safe for concurrent use.
type Mesher struct {
	Params   Params
	Capacity int // largest accepted grid size, 0 for no limit

	index       VoxelIndexGrid
	constraints []solver.Constraint
	fallback    []mgl32.Vec3
}

// NewMesher creates a mesher for grids of at most capacity points per axis.
func NewMesher(params Params, capacity int) *Mesher {
	return &Mesher{Params: params, Capacity: capacity}
}

// Extract builds the mesh for grid. scale is the world distance between
// adjacent samples; distances in the grid are in world units and output
// positions are grid coordinates times scale.
func (m *Mesher) Extract(grid *VoxelGrid, scale float32) (*ContourMesh, Stats, error) {
	defer profiling.Track("meshing.extract")()

	var stats Stats
	if m.Capacity > 0 && grid.N > m.Capacity {
		return nil, stats, fmt.Errorf("%w: size %d, capacity %d", ErrCapacityExceeded, grid.N, m.Capacity)
	}
	if grid.N < 2 {
		return &ContourMesh{}, stats, nil
	}
	if scale <= 0 {
		scale = 1
	}

	mesh := &ContourMesh{}
	m.index.reset(grid.N - 1)
	m.fallback = m.fallback[:0]

	m.placeVertices(grid, scale, mesh, &stats)
	m.triangulate(grid, mesh, &stats)
	computeNormals(mesh, m.fallback)

	if stats.InconsistentQuads > 0 {
		log.Printf("meshing: %d inconsistent quads skipped", stats.InconsistentQuads)
		profiling.Count("meshing.inconsistent_quads", int64(stats.InconsistentQuads))
	}
	profiling.Count("meshing.singular_cells", int64(stats.SingularCells))
	return mesh, stats, nil
}

func (m *Mesher) placeVertices(grid *VoxelGrid, scale float32, mesh *ContourMesh, stats *Stats) {
	n := m.index.N
	bias := float64(m.Params.CenterBias)
	axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	var inside, crossing [8]bool
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				numInside := 0
				for ci, off := range cornerOffsets {
					inside[ci] = grid.At(x+off[0], y+off[1], z+off[2]).Inside()
					if inside[ci] {
						numInside++
					}
				}
				if numInside == 0 || numInside == 8 {
					continue
				}

				crossing = [8]bool{}
				for _, e := range cellEdges {
					if inside[e[0]] != inside[e[1]] {
						crossing[e[0]] = true
						crossing[e[1]] = true
					}
				}

				m.constraints = m.constraints[:0]
				var avgNormal mgl32.Vec3
				for ci, off := range cornerOffsets {
					if !crossing[ci] {
						continue
					}
					s := grid.At(x+off[0], y+off[1], z+off[2])
					avgNormal = avgNormal.Add(s.Normal)
					d := float64(s.Distance / scale)
					if abs64(d) > float64(m.Params.MaxCornerDistance) {
						stats.SkippedCorners++
						continue
					}
					normal := mgl64.Vec3{float64(s.Normal[0]), float64(s.Normal[1]), float64(s.Normal[2])}
					corner := mgl64.Vec3{float64(x + off[0]), float64(y + off[1]), float64(z + off[2])}
					m.constraints = append(m.constraints, solver.Constraint{Normal: normal, Offset: normal.Dot(corner) - d})
				}

				center := mgl64.Vec3{float64(x) + 0.5, float64(y) + 0.5, float64(z) + 0.5}
				for _, axis := range axes {
					nb := axis.Mul(bias)
					m.constraints = append(m.constraints, solver.Constraint{Normal: nb, Offset: nb.Dot(center)})
				}

				v, err := solver.LeastSquares(m.constraints)
				if err != nil {
					stats.SingularCells++
					v = center
				} else if m.Params.Clamp {
					r := float64(m.Params.ClampRange)
					v = mgl64.Vec3{
						mgl64.Clamp(v[0], float64(x)-r, float64(x)+1+r),
						mgl64.Clamp(v[1], float64(y)-r, float64(y)+1+r),
						mgl64.Clamp(v[2], float64(z)-r, float64(z)+1+r),
					}
				}

				m.index.Cells[m.index.Index(x, y, z)] = int32(len(mesh.Vertices))
				mesh.Vertices = append(mesh.Vertices, mgl32.Vec3{
					float32(v[0]) * scale,
					float32(v[1]) * scale,
					float32(v[2]) * scale,
				})
				m.fallback = append(m.fallback, avgNormal)
				stats.Cells++
			}
		}
	}
}

// triangulate covers cells [0, N-2) per axis so every far edge has all three
// neighbours in the index grid. Adjacent chunks overlap by one cell.
func (m *Mesher) triangulate(grid *VoxelGrid, mesh *ContourMesh, stats *Stats) {
	n := m.index.N - 1
	var inside [8]bool
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				v0 := m.index.At(x, y, z)
				if v0 < 0 {
					continue
				}
				for ci, off := range cornerOffsets {
					inside[ci] = grid.At(x+off[0], y+off[1], z+off[2]).Inside()
				}
				for axis, e := range farEdges {
					if inside[e[0]] == inside[e[1]] {
						continue
					}
					nb := farNeighbours[axis]
					v1 := m.index.At(x+nb[0][0], y+nb[0][1], z+nb[0][2])
					v2 := m.index.At(x+nb[1][0], y+nb[1][1], z+nb[1][2])
					v3 := m.index.At(x+nb[2][0], y+nb[2][1], z+nb[2][2])
					if v1 < 0 || v2 < 0 || v3 < 0 {
						stats.InconsistentQuads++
						continue
					}
					a, b, c, d := uint32(v0), uint32(v1), uint32(v2), uint32(v3)
					if inside[e[0]] == (axis == 1) {
						mesh.Triangles = append(mesh.Triangles, a, b, d, a, d, c)
					} else {
						mesh.Triangles = append(mesh.Triangles, a, d, b, a, c, d)
					}
				}
			}
		}
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
