// Package octree decides which regions of the world are meshed at which size.
//
// Each node is either a leaf or has exactly eight children of half its side.
// Nodes split when an importance-weighted viewpoint is closer to their centre
// than their side length, and merge back as soon as none is.
package octree

import (
	"log"
	"math"
	"math/bits"

	"github.com/go-gl/mathgl/mgl32"
)

// Coord is an integer world position.
type Coord [3]int

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{c[0] + o[0], c[1] + o[1], c[2] + o[2]}
}

// Vec returns c as a float vector.
func (c Coord) Vec() mgl32.Vec3 {
	return mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
}

// Viewpoint is something the terrain should be detailed around. Higher
// importance pulls detail further out; viewpoints with importance <= 0 are
// ignored.
type Viewpoint struct {
	Position   mgl32.Vec3
	Importance float32
}

// Node is one cube of the tree. The tree owns all nodes; callers must not
// keep pointers across Evaluate or Grow.
type Node struct {
	Center     Coord
	SideLength int
	children   []*Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Children returns the eight children of a split node, or nil.
func (n *Node) Children() []*Node {
	return n.children
}

// Min returns the node's minimum corner.
func (n *Node) Min() Coord {
	h := n.SideLength / 2
	return Coord{n.Center[0] - h, n.Center[1] - h, n.Center[2] - h}
}

// octant i has bit 0 set for +x, bit 1 for +y and bit 2 for +z.
func octantSign(i int) Coord {
	s := Coord{-1, -1, -1}
	for a := 0; a < 3; a++ {
		if i>>a&1 == 1 {
			s[a] = 1
		}
	}
	return s
}

func (n *Node) split() {
	half := n.SideLength / 2
	quarter := n.SideLength / 4
	n.children = make([]*Node, 8)
	for i := range n.children {
		s := octantSign(i)
		n.children[i] = &Node{
			Center:     n.Center.Add(Coord{s[0] * quarter, s[1] * quarter, s[2] * quarter}),
			SideLength: half,
		}
	}
}

func (n *Node) merge() {
	n.children = nil
}

// Tree is the LOD octree.
type Tree struct {
	root        *Node
	minNodeSize int
	initialSize int
	origin      Coord
}

// New creates a tree with a single leaf root. Sizes are rounded to powers of
// two so every split lands on integer centres; minNodeSize is clamped into
// [2, worldSize].
func New(center Coord, worldSize, minNodeSize int) *Tree {
	if worldSize < 4 {
		worldSize = 4
	}
	if p := ceilPow2(worldSize); p != worldSize {
		log.Printf("octree: world size %d rounded up to %d", worldSize, p)
		worldSize = p
	}
	if minNodeSize > worldSize {
		log.Printf("octree: min node size %d is larger than world size, adjusted to %d", minNodeSize, worldSize)
		minNodeSize = worldSize
	}
	if minNodeSize < 2 {
		minNodeSize = 2
	}
	minNodeSize = floorPow2(minNodeSize)

	root := &Node{Center: center, SideLength: worldSize}
	return &Tree{
		root:        root,
		minNodeSize: minNodeSize,
		initialSize: worldSize,
		origin:      root.Min(),
	}
}

func (t *Tree) Root() *Node      { return t.root }
func (t *Tree) MinNodeSize() int { return t.minNodeSize }
func (t *Tree) InitialSize() int { return t.initialSize }

// Origin is the minimum corner of the root as created. Growth never moves
// the lattice of the existing nodes.
func (t *Tree) Origin() Coord { return t.origin }

// Evaluate splits and merges nodes for the given viewpoints.
func (t *Tree) Evaluate(viewpoints []Viewpoint) {
	t.evaluate(t.root, viewpoints)
}

func (t *Tree) evaluate(n *Node, viewpoints []Viewpoint) {
	if minDistance(n.Center, viewpoints) < float64(n.SideLength) && n.SideLength > t.minNodeSize {
		if n.IsLeaf() {
			n.split()
		}
		for _, c := range n.children {
			t.evaluate(c, viewpoints)
		}
		return
	}
	if !n.IsLeaf() {
		n.merge()
	}
}

func minDistance(center Coord, viewpoints []Viewpoint) float64 {
	best := math.Inf(1)
	c := center.Vec()
	for _, vp := range viewpoints {
		if vp.Importance <= 0 {
			continue
		}
		d := float64(vp.Position.Sub(c).Len() / vp.Importance)
		if d < best {
			best = d
		}
	}
	return best
}

// Grow doubles the root toward direction. The old root becomes the child in
// the opposite octant of the new root.
func (t *Tree) Grow(direction mgl32.Vec3) {
	old := t.root
	half := old.SideLength / 2
	var dir Coord
	for a := 0; a < 3; a++ {
		dir[a] = 1
		if direction[a] < 0 {
			dir[a] = -1
		}
	}
	root := &Node{
		Center:     old.Center.Add(Coord{dir[0] * half, dir[1] * half, dir[2] * half}),
		SideLength: old.SideLength * 2,
		children:   make([]*Node, 8),
	}
	for i := range root.children {
		s := octantSign(i)
		c := root.Center.Add(Coord{s[0] * half, s[1] * half, s[2] * half})
		if c == old.Center {
			root.children[i] = old
			continue
		}
		root.children[i] = &Node{Center: c, SideLength: old.SideLength}
	}
	t.root = root
}

// maxGrowAttempts bounds Include against runaway growth.
const maxGrowAttempts = 20

// Include grows the root until it contains p. It reports false if p is
// still outside after maxGrowAttempts doublings.
func (t *Tree) Include(p mgl32.Vec3) bool {
	for i := 0; i <= maxGrowAttempts; i++ {
		if t.Contains(p) {
			return true
		}
		if i == maxGrowAttempts {
			break
		}
		t.Grow(p.Sub(t.root.Center.Vec()))
	}
	log.Printf("octree: gave up growing toward %v after %d attempts", p, maxGrowAttempts)
	return false
}

// Contains reports whether p lies inside the root.
func (t *Tree) Contains(p mgl32.Vec3) bool {
	h := float32(t.root.SideLength) / 2
	c := t.root.Center.Vec()
	for a := 0; a < 3; a++ {
		if p[a] < c[a]-h || p[a] > c[a]+h {
			return false
		}
	}
	return true
}

// Depth returns the number of levels below the root.
func (t *Tree) Depth() int {
	return depth(t.root)
}

func depth(n *Node) int {
	d := 0
	for _, c := range n.children {
		d = max(d, depth(c)+1)
	}
	return d
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int {
	return count(t.root)
}

func count(n *Node) int {
	total := 1
	for _, c := range n.children {
		total += count(c)
	}
	return total
}

func ceilPow2(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(v-1))
}

func floorPow2(v int) int {
	if v <= 1 {
		return 1
	}
	return 1 << (bits.Len(uint(v)) - 1)
}
