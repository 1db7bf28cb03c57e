package csg

import (
	"math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"dcterrain/internal/density"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestShapeDistance(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		p     mgl32.Vec3
		want  float32
	}{
		{"sphere surface", Sphere, mgl32.Vec3{2, 0, 0}, 0},
		{"sphere centre", Sphere, mgl32.Vec3{0, 0, 0}, -2},
		{"box face", Box, mgl32.Vec3{3, 0, 0}, 1},
		{"box corner", Box, mgl32.Vec3{3, 3, 0}, float32(math.Sqrt2)},
		{"box inside", Box, mgl32.Vec3{1.5, 0, 0}, -0.5},
		{"octahedron vertex", Octahedron, mgl32.Vec3{2, 0, 0}, 0},
		{"octahedron centre", Octahedron, mgl32.Vec3{0, 0, 0}, -2 * octahedronScale},
	}
	for _, tt := range tests {
		op := Operation{Radius: 2, Shape: tt.shape}
		if got := op.Distance(tt.p); !near(got, tt.want) {
			t.Errorf("%s: Distance(%v) = %v, want %v", tt.name, tt.p, got, tt.want)
		}
	}
}

func TestApplyKinds(t *testing.T) {
	air := density.Plane{Height: -100}
	p := mgl32.Vec3{0, 0, 0}

	union := Operation{Radius: 5, Shape: Sphere, Kind: Union}
	if s := (Field{Base: air, Ops: []Operation{union}}).Sample(p); !s.Inside() {
		t.Errorf("union over air should be solid, got %+v", s)
	}

	solid := density.Plane{Height: 100}
	carve := Operation{Radius: 5, Shape: Sphere, Kind: Subtraction}
	s := (Field{Base: solid, Ops: []Operation{carve}}).Sample(p)
	if s.Inside() || !near(s.Distance, 5) {
		t.Errorf("subtraction at centre = %+v, want distance 5", s)
	}
	far := mgl32.Vec3{50, 0, 0}
	if got := (Field{Base: solid, Ops: []Operation{carve}}).Sample(far); !got.Inside() {
		t.Errorf("subtraction opened %v: %+v", far, got)
	}

	keep := Operation{Radius: 5, Shape: Box, Kind: Difference}
	f := Field{Base: solid, Ops: []Operation{keep}}
	if !f.Sample(p).Inside() {
		t.Error("difference should keep solid inside the box")
	}
	if f.Sample(far).Inside() {
		t.Error("difference should remove solid outside the box")
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	ops := []Operation{
		{Position: mgl32.Vec3{1, -2, 3.5}, Radius: 4, Shape: Octahedron, Kind: Difference},
		{Position: mgl32.Vec3{0, 0, 0}, Radius: 0.25, Shape: Box, Kind: Subtraction},
	}
	buf := EncodeRecords(ops, DefaultOperationLimit)
	if len(buf) != 2*RecordSize {
		t.Fatalf("len = %d, want %d", len(buf), 2*RecordSize)
	}
	got, err := DecodeRecords(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range ops {
		if got[i] != ops[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], ops[i])
		}
	}
	if n := len(EncodeRecords(ops, 1)); n != RecordSize {
		t.Errorf("limited encode len = %d, want %d", n, RecordSize)
	}
	if _, err := DecodeRecords(buf[:5]); err == nil {
		t.Error("short buffer decoded without error")
	}
}

func TestOperationYAML(t *testing.T) {
	var op Operation
	src := "position: [1, 2, 3]\nradius: 4\nshape: octahedron\nkind: subtraction\n"
	if err := yaml.Unmarshal([]byte(src), &op); err != nil {
		t.Fatal(err)
	}
	want := Operation{Position: mgl32.Vec3{1, 2, 3}, Radius: 4, Shape: Octahedron, Kind: Subtraction}
	if op != want {
		t.Errorf("got %+v, want %+v", op, want)
	}
	if err := yaml.Unmarshal([]byte("shape: cone\n"), &op); err == nil {
		t.Error("unknown shape accepted")
	}
}

func TestIndexBoundaryStraddle(t *testing.T) {
	ix := NewIndex([3]int{0, 0, 0}, 16, 64, 0)
	// x = 16 sits exactly on the wall between cells 0 and 1.
	op := Operation{Position: mgl32.Vec3{16, 8, 8}, Radius: 4, Shape: Sphere, Kind: Subtraction}
	touched := ix.AddOperation(op)
	if len(touched) != 2 {
		t.Fatalf("touched %v, want two cells", touched)
	}
	for _, k := range []CellKey{{0, [3]int{0, 0, 0}}, {0, [3]int{1, 0, 0}}} {
		if ops := ix.OperationsFor(k); len(ops) != 1 || ops[0] != op {
			t.Errorf("OperationsFor(%v) = %v", k, ops)
		}
	}
	if ops := ix.OperationsFor(CellKey{0, [3]int{2, 0, 0}}); len(ops) != 0 {
		t.Errorf("far cell got %v", ops)
	}
}

func TestIndexInteriorOperationStaysHome(t *testing.T) {
	ix := NewIndex([3]int{0, 0, 0}, 16, 64, 0)
	touched := ix.AddOperation(Operation{Position: mgl32.Vec3{8, 8, 8}, Radius: 2, Shape: Box})
	if len(touched) != 1 || touched[0] != (CellKey{0, [3]int{0, 0, 0}}) {
		t.Errorf("touched = %v", touched)
	}
}

func TestIndexOverlapReachesLowerNeighbour(t *testing.T) {
	// Cells of side 8 meshed on a 10 sample grid read one unit past their
	// far faces.
	ix := NewIndex([3]int{0, 0, 0}, 8, 16, GridOverlap(10))
	op := Operation{Position: mgl32.Vec3{10.5, 5.5, 4}, Radius: 2, Shape: Sphere}
	touched := ix.AddOperation(op)
	for _, k := range []CellKey{{0, [3]int{0, 0, 0}}, {0, [3]int{1, 0, 0}}} {
		if !slices.Contains(touched, k) {
			t.Errorf("touched %v, missing %v", touched, k)
		}
	}
	if slices.Contains(touched, CellKey{0, [3]int{2, 0, 0}}) {
		t.Errorf("touched %v, want no cell past x = 16", touched)
	}

	plain := NewIndex([3]int{0, 0, 0}, 8, 16, 0)
	if slices.Contains(plain.AddOperation(op), CellKey{0, [3]int{0, 0, 0}}) {
		t.Error("edit reached the neighbour without any overlap")
	}
}

func TestGridOverlap(t *testing.T) {
	if got := GridOverlap(10); got != 0.125 {
		t.Errorf("GridOverlap(10) = %v", got)
	}
	if got := GridOverlap(2); got != 0 {
		t.Errorf("GridOverlap(2) = %v", got)
	}
}

func TestIndexGlobalOperationsKeepOrder(t *testing.T) {
	ix := NewIndex([3]int{0, 0, 0}, 16, 64, 0)
	first := Operation{Position: mgl32.Vec3{8, 8, 8}, Radius: 2, Shape: Sphere, Kind: Union}
	keep := Operation{Position: mgl32.Vec3{40, 8, 8}, Radius: 1, Shape: Box, Kind: Difference}
	last := Operation{Position: mgl32.Vec3{8, 8, 8}, Radius: 3, Shape: Box, Kind: Subtraction}

	ix.AddOperation(first)
	if touched := ix.AddOperation(keep); touched != nil {
		t.Errorf("difference touched %v", touched)
	}
	ix.AddOperation(last)

	home := ix.OperationsFor(CellKey{0, [3]int{0, 0, 0}})
	if want := []Operation{first, keep, last}; !slices.Equal(home, want) {
		t.Errorf("home ops = %v, want %v", home, want)
	}
	far := ix.OperationsFor(CellKey{3, [3]int{-9, 4, 100}})
	if len(far) != 1 || far[0] != keep {
		t.Errorf("far cell ops = %v", far)
	}
	if ix.Len() != 3 || ix.Globals() != 1 {
		t.Errorf("Len = %d Globals = %d", ix.Len(), ix.Globals())
	}
}

func TestIndexLevels(t *testing.T) {
	ix := NewIndex([3]int{-64, -64, -64}, 8, 10, 0)
	tests := []struct {
		r    float32
		want int
	}{{0, 1}, {5, 1}, {10, 1}, {10.5, 2}, {35, 4}, {1e6, MaxLevels}}
	for _, tt := range tests {
		if got := ix.Levels(tt.r); got != tt.want {
			t.Errorf("Levels(%v) = %d, want %d", tt.r, got, tt.want)
		}
	}
	op := Operation{Position: mgl32.Vec3{-60, -60, -60}, Radius: 25, Shape: Sphere}
	ix.AddOperation(op)
	for level := 0; level < 3; level++ {
		k := ix.CellOf(op.Position, level)
		if len(ix.OperationsFor(k)) != 1 {
			t.Errorf("level %d home cell %v missing op", level, k)
		}
	}
	if len(ix.OperationsFor(ix.CellOf(op.Position, 3))) != 0 {
		t.Error("op bucketed beyond its level span")
	}
}

func TestKeyForNode(t *testing.T) {
	ix := NewIndex([3]int{-32, -32, -32}, 4, 8, 0)
	tests := []struct {
		center [3]int
		side   int
		want   CellKey
	}{
		{[3]int{-30, -30, -30}, 4, CellKey{0, [3]int{0, 0, 0}}},
		{[3]int{2, -30, 6}, 4, CellKey{0, [3]int{8, 0, 9}}},
		{[3]int{-28, -28, -28}, 8, CellKey{1, [3]int{0, 0, 0}}},
		{[3]int{0, 0, 0}, 64, CellKey{4, [3]int{0, 0, 0}}},
	}
	for _, tt := range tests {
		if got := ix.KeyForNode(tt.center, tt.side); got != tt.want {
			t.Errorf("KeyForNode(%v, %d) = %v, want %v", tt.center, tt.side, got, tt.want)
		}
	}
}
