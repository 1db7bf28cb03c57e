package csg

import (
	"math"
	"math/bits"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLevels bounds how many LOD levels one operation is bucketed into.
const MaxLevels = 16

// CellKey identifies one lattice cell at one LOD level. Cells at level L
// have side base<<L and are aligned to the index origin.
type CellKey struct {
	Level int
	Cell  [3]int
}

// Index buckets operations by the LOD cells they can reach. Global
// operations are kept apart and read by every cell.
type Index struct {
	mu             sync.RWMutex
	origin         mgl32.Vec3
	base           int
	perLevelRadius float32
	overlap        float32
	buckets        map[CellKey][]entry
	global         []entry
	total          int
}

type entry struct {
	seq int
	op  Operation
}

// NewIndex creates an index whose level 0 cells have side base and whose
// lattice starts at origin. perLevelRadius is the radius an operation needs
// to reach each further level. overlap is how far, as a fraction of the cell
// side, a cell's reader samples past its box.
func NewIndex(origin [3]int, base int, perLevelRadius, overlap float32) *Index {
	if base < 1 {
		base = 1
	}
	if perLevelRadius <= 0 {
		perLevelRadius = float32(base)
	}
	return &Index{
		origin:         mgl32.Vec3{float32(origin[0]), float32(origin[1]), float32(origin[2])},
		base:           base,
		perLevelRadius: perLevelRadius,
		overlap:        max(0, min(overlap, 1)),
		buckets:        make(map[CellKey][]entry),
	}
}

// GridOverlap is the overlap of chunks meshed on a gridSize sample grid:
// one sample spacing past the far faces.
func GridOverlap(gridSize int) float32 {
	if gridSize <= 2 {
		return 0
	}
	return 1 / float32(gridSize-2)
}

// Levels returns how many LOD levels an operation of radius r spans.
func (ix *Index) Levels(r float32) int {
	n := int(math.Ceil(float64(r / ix.perLevelRadius)))
	return max(1, min(n, MaxLevels))
}

// CellSize returns the side of cells at level.
func (ix *Index) CellSize(level int) int {
	return ix.base << level
}

// CellOf returns the key of the cell containing p at level.
func (ix *Index) CellOf(p mgl32.Vec3, level int) CellKey {
	size := float32(ix.CellSize(level))
	k := CellKey{Level: level}
	for a := 0; a < 3; a++ {
		k.Cell[a] = int(math.Floor(float64((p[a] - ix.origin[a]) / size)))
	}
	return k
}

// KeyForNode returns the key of an octree node of the given side centred at
// center.
func (ix *Index) KeyForNode(center [3]int, side int) CellKey {
	level := 0
	if side > ix.base {
		level = bits.Len(uint(side/ix.base)) - 1
	}
	c := mgl32.Vec3{float32(center[0]), float32(center[1]), float32(center[2])}
	return ix.CellOf(c, level)
}

// AddOperation inserts op into every cell it reaches and returns the
// touched keys, sorted. Global operations touch no bucket and return nil.
func (ix *Index) AddOperation(op Operation) []CellKey {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	e := entry{seq: ix.total, op: op}
	ix.total++
	if op.Global() {
		ix.global = append(ix.global, e)
		return nil
	}

	var touched []CellKey
	for level := 0; level < ix.Levels(op.Radius); level++ {
		home := ix.CellOf(op.Position, level)
		size := float32(ix.CellSize(level))
		reach := op.Radius + size*ix.overlap
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					k := CellKey{Level: level, Cell: [3]int{home.Cell[0] + dx, home.Cell[1] + dy, home.Cell[2] + dz}}
					if (dx != 0 || dy != 0 || dz != 0) && ix.distanceToCell(op.Position, k, size) > reach {
						continue
					}
					ix.buckets[k] = append(ix.buckets[k], e)
					touched = append(touched, k)
				}
			}
		}
	}
	sort.Slice(touched, func(i, j int) bool { return keyLess(touched[i], touched[j]) })
	return touched
}

// distanceToCell is the Chebyshev distance from p to the box of cell k.
func (ix *Index) distanceToCell(p mgl32.Vec3, k CellKey, size float32) float32 {
	var d float32
	for a := 0; a < 3; a++ {
		lo := ix.origin[a] + float32(k.Cell[a])*size
		hi := lo + size
		d = max(d, lo-p[a], p[a]-hi)
	}
	return d
}

// OperationsFor returns the operations bucketed at k merged with the global
// ones, in insertion order.
func (ix *Index) OperationsFor(k CellKey) []Operation {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	local := ix.buckets[k]
	out := make([]Operation, 0, len(local)+len(ix.global))
	i, j := 0, 0
	for i < len(local) || j < len(ix.global) {
		if j == len(ix.global) || (i < len(local) && local[i].seq < ix.global[j].seq) {
			out = append(out, local[i].op)
			i++
		} else {
			out = append(out, ix.global[j].op)
			j++
		}
	}
	return out
}

// Len returns the number of operations added.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.total
}

// Globals returns the number of global operations.
func (ix *Index) Globals() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.global)
}

// Buckets returns the number of non-empty cells.
func (ix *Index) Buckets() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.buckets)
}

func keyLess(a, b CellKey) bool {
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	for i := 0; i < 3; i++ {
		if a.Cell[i] != b.Cell[i] {
			return a.Cell[i] < b.Cell[i]
		}
	}
	return false
}
